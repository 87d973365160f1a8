package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxBodySize bounds request bodies. Attachments arrive base64-encoded
// inside JSON, so the cap also bounds attachment size (~15MB of raw bytes).
const maxBodySize = 20 << 20

// ParseJSON decodes JSON from the request body into the given destination.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
