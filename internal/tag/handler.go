package tag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog-api/internal/httputil"
	"github.com/redmonkez12/go-blog-api/internal/logging"
)

const (
	minNameLength = 2
	maxNameLength = 30
	maxTags       = 10
)

// Store is the tag persistence used by Handler
type Store interface {
	List(ctx context.Context) ([]Tag, error)
	Create(ctx context.Context, names []string) ([]Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler contains HTTP handlers for tag endpoints
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// CreateTagsRequest lists tag names to ensure
type CreateTagsRequest struct {
	Names []string `json:"names"`
}

func (r CreateTagsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Names,
			validation.Required,
			validation.Length(1, maxTags),
			validation.By(validNames),
		),
	)
}

func validNames(value interface{}) error {
	names, _ := value.([]string)
	for i, name := range names {
		if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
			return fmt.Errorf("tag %d must be between %d and %d characters", i+1, minNameLength, maxNameLength)
		}
	}
	return nil
}

// List returns all tags
// @Summary      List tags
// @Tags         tags
// @Produce      json
// @Success      200 {array} Tag
// @Router       /tags [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.List(r.Context())
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to list tags", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list tags", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, tags, http.StatusOK)
}

// Create ensures the named tags exist
// @Summary      Create tags
// @Description  Creates the names that do not exist and returns all requested tags
// @Tags         tags
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateTagsRequest true "Tag names"
// @Success      201 {array} Tag
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /tags [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req CreateTagsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	for i := range req.Names {
		req.Names[i] = strings.TrimSpace(req.Names[i])
	}
	if httputil.RespondValidation(w, req.Validate()) {
		return
	}

	tags, err := h.store.Create(r.Context(), req.Names)
	if err != nil {
		logger.Error("failed to create tags", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create tags", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("tags created", "count", len(tags))
	httputil.RespondJSON(w, tags, http.StatusCreated)
}

// Delete removes a tag no post carries
// @Summary      Delete tag
// @Tags         tags
// @Security     BearerAuth
// @Param        id path string true "Tag ID"
// @Success      204
// @Failure      400 {object} httputil.ErrorResponse "Invalid tag ID"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Tag has posts"
// @Router       /tags/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.URLParamUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrHasPosts) {
			httputil.RespondErrorWithCode(w, "tag has posts associated with it", httputil.CodeTagHasPosts, http.StatusConflict)
			return
		}
		logging.GetLoggerFromContext(r.Context()).Error("failed to delete tag", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete tag", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondNoContent(w)
}
