package category

import (
	"context"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog-api/internal/httputil"
	"github.com/redmonkez12/go-blog-api/internal/logging"
)

// Store is the category persistence used by Handler
type Store interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, name string) (*Category, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler contains HTTP handlers for category endpoints
type Handler struct {
	store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// CategoryRequest is the body of create and update requests
type CategoryRequest struct {
	Name string `json:"name"`
}

func (r CategoryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(2, 50)),
	)
}

// List returns all categories
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Success      200 {array} Category
// @Router       /categories [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.List(r.Context())
	if err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to list categories", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list categories", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	httputil.RespondJSON(w, categories, http.StatusOK)
}

// Create adds a category
// @Summary      Create category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CategoryRequest true "Category"
// @Success      201 {object} Category
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Name already exists"
// @Router       /categories [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCategoryRequest(w, r)
	if !ok {
		return
	}

	created, err := h.store.Create(r.Context(), req.Name)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("category created", "category_id", created.ID)
	httputil.RespondJSON(w, created, http.StatusCreated)
}

// Update renames a category
// @Summary      Update category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Category ID"
// @Param        request body CategoryRequest true "Category"
// @Success      200 {object} Category
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Name already exists"
// @Router       /categories/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.URLParamUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodeCategoryRequest(w, r)
	if !ok {
		return
	}

	updated, err := h.store.Update(r.Context(), id, req.Name)
	if err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	httputil.RespondJSON(w, updated, http.StatusOK)
}

// Delete removes a category without posts
// @Summary      Delete category
// @Tags         categories
// @Security     BearerAuth
// @Param        id path string true "Category ID"
// @Success      204
// @Failure      400 {object} httputil.ErrorResponse "Invalid category ID"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Category has posts"
// @Router       /categories/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.URLParamUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.respondWriteError(w, r, err)
		return
	}
	httputil.RespondNoContent(w)
}

func (h *Handler) respondWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNameTaken):
		httputil.RespondErrorWithCode(w, "a category with this name already exists", httputil.CodeCategoryNameTaken, http.StatusConflict)
	case errors.Is(err, ErrHasPosts):
		httputil.RespondErrorWithCode(w, "category has posts associated with it", httputil.CodeCategoryHasPosts, http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "category not found", httputil.CodeNotFound, http.StatusNotFound)
	default:
		logging.GetLoggerFromContext(r.Context()).Error("category write failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

func decodeCategoryRequest(w http.ResponseWriter, r *http.Request) (CategoryRequest, bool) {
	var req CategoryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return req, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if httputil.RespondValidation(w, req.Validate()) {
		return req, false
	}
	return req, true
}
