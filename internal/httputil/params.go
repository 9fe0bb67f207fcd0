package httputil

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// URLParamUUID parses the named chi route parameter as a UUID. On failure it
// writes a 400 invalid_id response and returns false.
func URLParamUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		RespondErrorWithCode(w, "invalid "+name, CodeInvalidID, http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUID parses an optional UUID query parameter. A missing parameter
// yields nil; a malformed one writes a 400 and returns false.
func QueryUUID(w http.ResponseWriter, r *http.Request, name string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		RespondErrorWithCode(w, "invalid "+name, CodeInvalidID, http.StatusBadRequest)
		return nil, false
	}
	return &id, true
}
