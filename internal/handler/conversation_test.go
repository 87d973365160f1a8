package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"mentora/internal/domain/models"
	"mentora/internal/httputil"
)

func TestConversationSaveAndGet(t *testing.T) {
	repo := newMemConversationRepo()
	h := NewConversationHandler(repo, discardLogger())
	userID := uuid.New().String()
	convID := uuid.New().String()

	body := `{"title": "Quadratics", "turns": [{"role": "user", "text": "hi"}, {"role": "model", "text": "hello"}]}`
	req := httptest.NewRequest(http.MethodPut, "/api/conversations/"+convID, strings.NewReader(body))
	req.SetPathValue("id", convID)
	req = httputil.WithUserID(req, userID)
	rec := httptest.NewRecorder()
	h.Save(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Save status = %d, body = %s", rec.Code, rec.Body.String())
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/conversations/"+convID, nil)
	getReq.SetPathValue("id", convID)
	getReq = httputil.WithUserID(getReq, userID)
	getRec := httptest.NewRecorder()
	h.Get(getRec, getReq)

	if getRec.Code != http.StatusOK {
		t.Fatalf("Get status = %d", getRec.Code)
	}
	var conv models.Conversation
	if err := json.Unmarshal(getRec.Body.Bytes(), &conv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if conv.Title != "Quadratics" || len(conv.Turns) != 2 {
		t.Errorf("conv = %+v", conv)
	}
}

func TestConversationGetNotFound(t *testing.T) {
	h := NewConversationHandler(newMemConversationRepo(), discardLogger())
	convID := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/"+convID, nil)
	req.SetPathValue("id", convID)
	req = httputil.WithUserID(req, uuid.New().String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestConversationOwnershipIsolation(t *testing.T) {
	repo := newMemConversationRepo()
	h := NewConversationHandler(repo, discardLogger())
	owner := uuid.New().String()
	intruder := uuid.New().String()
	convID := uuid.New().String()

	save := httptest.NewRequest(http.MethodPut, "/api/conversations/"+convID, strings.NewReader(`{"title": "t", "turns": []}`))
	save.SetPathValue("id", convID)
	save = httputil.WithUserID(save, owner)
	saveRec := httptest.NewRecorder()
	h.Save(saveRec, save)
	if saveRec.Code != http.StatusOK {
		t.Fatalf("Save status = %d", saveRec.Code)
	}

	// Another user cannot read it.
	get := httptest.NewRequest(http.MethodGet, "/api/conversations/"+convID, nil)
	get.SetPathValue("id", convID)
	get = httputil.WithUserID(get, intruder)
	getRec := httptest.NewRecorder()
	h.Get(getRec, get)
	if getRec.Code != http.StatusNotFound {
		t.Errorf("cross-user Get status = %d, want 404", getRec.Code)
	}

	// Nor delete it.
	del := httptest.NewRequest(http.MethodDelete, "/api/conversations/"+convID, nil)
	del.SetPathValue("id", convID)
	del = httputil.WithUserID(del, intruder)
	delRec := httptest.NewRecorder()
	h.Delete(delRec, del)
	if delRec.Code != http.StatusNotFound {
		t.Errorf("cross-user Delete status = %d, want 404", delRec.Code)
	}
}

func TestConversationDelete(t *testing.T) {
	repo := newMemConversationRepo()
	h := NewConversationHandler(repo, discardLogger())
	userID := uuid.New().String()
	convID := uuid.New().String()

	save := httptest.NewRequest(http.MethodPut, "/api/conversations/"+convID, strings.NewReader(`{"title": "t", "turns": []}`))
	save.SetPathValue("id", convID)
	save = httputil.WithUserID(save, userID)
	h.Save(httptest.NewRecorder(), save)

	del := httptest.NewRequest(http.MethodDelete, "/api/conversations/"+convID, nil)
	del.SetPathValue("id", convID)
	del = httputil.WithUserID(del, userID)
	delRec := httptest.NewRecorder()
	h.Delete(delRec, del)

	if delRec.Code != http.StatusNoContent {
		t.Errorf("Delete status = %d, want 204", delRec.Code)
	}
	if _, err := repo.GetByID(req0ctx(), convID, userID); err == nil {
		t.Errorf("conversation still present after delete")
	}
}

func TestConversationInvalidID(t *testing.T) {
	h := NewConversationHandler(newMemConversationRepo(), discardLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/conversations/abc", nil)
	req.SetPathValue("id", "abc")
	req = httputil.WithUserID(req, uuid.New().String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
