package llm

import (
	"context"
	"strings"
	"testing"

	"mentora/internal/domain/models"
)

type stubProvider struct {
	name   string
	prefix string
	images bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) SupportsModel(model string) bool {
	return strings.HasPrefix(model, s.prefix)
}

func (s *stubProvider) GenerateResponse(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return &GenerateResponse{}, nil
}

func (s *stubProvider) StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error) {
	ch := make(chan StreamEvent)
	close(ch)
	return ch, nil
}

type stubImageProvider struct{ stubProvider }

func (s *stubImageProvider) GenerateImage(ctx context.Context, req *ImageRequest) (*models.Attachment, error) {
	return &models.Attachment{}, nil
}

func TestRegistryForModel(t *testing.T) {
	gemini := &stubProvider{name: "gemini", prefix: "gemini-"}
	anthropic := &stubProvider{name: "anthropic", prefix: "claude-"}
	registry := NewRegistry(gemini, anthropic)

	tests := []struct {
		model    string
		wantName string
		wantErr  bool
	}{
		{model: "gemini-2.5-flash", wantName: "gemini"},
		{model: "claude-sonnet-4-20250514", wantName: "anthropic"},
		{model: "gpt-4o", wantErr: true},
		{model: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p, err := registry.ForModel(tt.model)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ForModel(%q) expected error", tt.model)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForModel(%q) error = %v", tt.model, err)
			}
			if p.Name() != tt.wantName {
				t.Errorf("ForModel(%q) = %s, want %s", tt.model, p.Name(), tt.wantName)
			}
		})
	}
}

func TestRegistryImages(t *testing.T) {
	textOnly := &stubProvider{name: "anthropic", prefix: "claude-"}

	registry := NewRegistry(textOnly)
	if registry.Images() != nil {
		t.Errorf("Images() found a generator among text-only providers")
	}

	imageCapable := &stubImageProvider{stubProvider{name: "gemini", prefix: "gemini-"}}
	registry.Register(imageCapable)
	if registry.Images() == nil {
		t.Errorf("Images() = nil after registering an image-capable provider")
	}
}
