// Package transport holds the HTTP handlers and their request/response
// shapes. Handlers decode and validate input, delegate to the service
// layer, and translate service errors into exactly one HTTP response per
// request.
package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// maxUploadMemory bounds in-memory multipart parsing; larger files spill
// to temp storage.
const maxUploadMemory = 32 << 20

// StatusResponse is the success/message envelope used by delete
// operations
type StatusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// objectIDParam parses a path parameter as a document identity.
// A malformed identifier is a request-level failure, distinct from a
// lookup miss.
func objectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}
