package post

import (
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog-api/internal/auth"
	"github.com/redmonkez12/go-blog-api/internal/httputil"
	"github.com/redmonkez12/go-blog-api/internal/logging"
)

// Handler contains HTTP handlers for post endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// PostRequest is the body of create and update requests. ID is accepted on
// update and must match the path when present.
type PostRequest struct {
	ID         *uuid.UUID  `json:"id,omitempty"`
	Title      string      `json:"title"`
	Content    string      `json:"content"`
	CategoryID uuid.UUID   `json:"categoryId"`
	TagIDs     []uuid.UUID `json:"tagIds"`
	Status     Status      `json:"status"`
}

func (r PostRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(3, 200)),
		validation.Field(&r.Content, validation.Required, validation.RuneLength(10, 50000)),
		validation.Field(&r.CategoryID, validation.NotIn(uuid.Nil).Error("cannot be blank")),
		validation.Field(&r.TagIDs, validation.Length(0, 10)),
		validation.Field(&r.Status, validation.Required, validation.In(StatusDraft, StatusPublished)),
	)
}

func (r PostRequest) input() Input {
	return Input{
		Title:      r.Title,
		Content:    r.Content,
		CategoryID: r.CategoryID,
		TagIDs:     r.TagIDs,
		Status:     r.Status,
	}
}

// List returns published posts
// @Summary      List published posts
// @Tags         posts
// @Produce      json
// @Param        categoryId query string false "Filter by category"
// @Param        tagId      query string false "Filter by tag"
// @Success      200 {array} Post
// @Failure      400 {object} httputil.ErrorResponse "Invalid filter"
// @Router       /posts [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := httputil.QueryUUID(w, r, "categoryId")
	if !ok {
		return
	}
	tagID, ok := httputil.QueryUUID(w, r, "tagId")
	if !ok {
		return
	}

	posts, err := h.service.List(r.Context(), ListFilter{CategoryID: categoryID, TagID: tagID})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httputil.RespondJSON(w, posts, http.StatusOK)
}

// Drafts returns the caller's drafts
// @Summary      List my drafts
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} Post
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /posts/drafts [get]
func (h *Handler) Drafts(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	posts, err := h.service.Drafts(r.Context(), identity.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httputil.RespondJSON(w, posts, http.StatusOK)
}

// Get returns a single post
// @Summary      Get post
// @Tags         posts
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200 {object} Post
// @Failure      400 {object} httputil.ErrorResponse "Invalid post ID"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /posts/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.URLParamUUID(w, r, "id")
	if !ok {
		return
	}

	var viewer *uuid.UUID
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		viewer = &identity.ID
	}

	p, err := h.service.Get(r.Context(), id, viewer)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httputil.RespondJSON(w, p, http.StatusOK)
}

// Create writes a post authored by the caller
// @Summary      Create post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body PostRequest true "Post"
// @Success      201 {object} Post
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /posts [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, identity *auth.Identity) {
	req, ok := decodePostRequest(w, r)
	if !ok {
		return
	}

	p, err := h.service.Create(r.Context(), identity.ID, req.input())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	logging.GetLoggerFromContext(r.Context()).Info("post created", "post_id", p.ID, "status", p.Status)
	httputil.RespondJSON(w, p, http.StatusCreated)
}

// Update replaces a post
// @Summary      Update post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body PostRequest true "Post"
// @Success      200 {object} Post
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /posts/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.URLParamUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := decodePostRequest(w, r)
	if !ok {
		return
	}
	if req.ID != nil && *req.ID != id {
		httputil.RespondErrorWithCode(w, "body id does not match path", httputil.CodeInvalidID, http.StatusBadRequest)
		return
	}

	p, err := h.service.Update(r.Context(), id, req.input())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httputil.RespondJSON(w, p, http.StatusOK)
}

// Delete removes a post
// @Summary      Delete post
// @Tags         posts
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      204
// @Failure      400 {object} httputil.ErrorResponse "Invalid post ID"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /posts/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.URLParamUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}
	httputil.RespondNoContent(w)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, "post not found", httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrUnknownCategory), errors.Is(err, ErrUnknownTag):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeUnknownReference, http.StatusBadRequest)
	default:
		logging.GetLoggerFromContext(r.Context()).Error("post request failed", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

func decodePostRequest(w http.ResponseWriter, r *http.Request) (PostRequest, bool) {
	var req PostRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return req, false
	}
	req.Title = strings.TrimSpace(req.Title)
	if httputil.RespondValidation(w, req.Validate()) {
		return req, false
	}
	return req, true
}
