package post

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog-api/internal/category"
	"github.com/redmonkez12/go-blog-api/internal/database"
	"github.com/redmonkez12/go-blog-api/internal/tag"
)

var (
	ErrUnknownCategory = errors.New("category does not exist")
	ErrUnknownTag      = errors.New("one or more tags do not exist")
)

// Store is the post persistence used by Service
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]Post, error)
	Drafts(ctx context.Context, authorID uuid.UUID) ([]Post, error)
	Get(ctx context.Context, id uuid.UUID) (*Post, error)
	Create(ctx context.Context, p *database.Post, tagIDs []uuid.UUID) (*Post, error)
	Update(ctx context.Context, p *database.Post, tagIDs []uuid.UUID) (*Post, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*category.Category, error)
}

type TagLookup interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]tag.Tag, error)
}

// Input carries the editable fields of a post
type Input struct {
	Title      string
	Content    string
	CategoryID uuid.UUID
	TagIDs     []uuid.UUID
	Status     Status
}

// Service handles post business logic
type Service struct {
	posts      Store
	categories CategoryLookup
	tags       TagLookup
	now        func() time.Time
}

func NewService(posts Store, categories CategoryLookup, tags TagLookup) *Service {
	return &Service{
		posts:      posts,
		categories: categories,
		tags:       tags,
		now:        time.Now,
	}
}

// List returns published posts matching filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Post, error) {
	return s.posts.List(ctx, filter)
}

// Drafts returns the drafts written by authorID
func (s *Service) Drafts(ctx context.Context, authorID uuid.UUID) ([]Post, error) {
	return s.posts.Drafts(ctx, authorID)
}

// Get returns a post. Drafts are only visible to their author; for anyone
// else, including anonymous viewers, they do not exist.
func (s *Service) Get(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*Post, error) {
	p, err := s.posts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Status == StatusDraft && (viewer == nil || p.Author == nil || p.Author.ID != *viewer) {
		return nil, ErrNotFound
	}
	return p, nil
}

// Create writes a new post by authorID
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, in Input) (*Post, error) {
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	return s.posts.Create(ctx, &database.Post{
		ID:          uuid.New(),
		Title:       in.Title,
		Content:     in.Content,
		Status:      string(in.Status),
		ReadingTime: ReadingTime(in.Content),
		AuthorID:    authorID,
		CategoryID:  in.CategoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, in.TagIDs)
}

// Update replaces a post's editable fields. Author and creation time are kept.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Post, error) {
	if err := s.checkReferences(ctx, in); err != nil {
		return nil, err
	}

	return s.posts.Update(ctx, &database.Post{
		ID:          id,
		Title:       in.Title,
		Content:     in.Content,
		Status:      string(in.Status),
		ReadingTime: ReadingTime(in.Content),
		CategoryID:  in.CategoryID,
		UpdatedAt:   s.now().UTC(),
	}, in.TagIDs)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.posts.Delete(ctx, id)
}

func (s *Service) checkReferences(ctx context.Context, in Input) error {
	if _, err := s.categories.Get(ctx, in.CategoryID); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			return ErrUnknownCategory
		}
		return fmt.Errorf("failed to check category: %w", err)
	}

	if _, err := s.tags.GetByIDs(ctx, in.TagIDs); err != nil {
		if errors.Is(err, tag.ErrNotFound) {
			return ErrUnknownTag
		}
		return fmt.Errorf("failed to check tags: %w", err)
	}
	return nil
}
