package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog-api/internal/database"
)

var ErrNotFound = errors.New("post not found")

// Repository handles post persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) selectPosts(dest any) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(dest).
		Relation("Author").
		Relation("Category").
		Relation("Tags")
}

// List returns published posts, newest first
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Post, error) {
	var rows []database.Post
	q := r.selectPosts(&rows).
		Where("p.status = ?", database.PostStatusPublished).
		OrderExpr("p.created_at DESC")

	if filter.CategoryID != nil {
		q = q.Where("p.category_id = ?", *filter.CategoryID)
	}
	if filter.TagID != nil {
		q = q.Where("EXISTS (SELECT 1 FROM post_tags AS pt WHERE pt.post_id = p.id AND pt.tag_id = ?)", *filter.TagID)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return mapDBPostsToModels(rows), nil
}

// Drafts returns the author's draft posts, newest first
func (r *Repository) Drafts(ctx context.Context, authorID uuid.UUID) ([]Post, error) {
	var rows []database.Post
	err := r.selectPosts(&rows).
		Where("p.status = ?", database.PostStatusDraft).
		Where("p.author_id = ?", authorID).
		OrderExpr("p.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return mapDBPostsToModels(rows), nil
}

// Get retrieves a post with its relations
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Post, error) {
	dbPost := new(database.Post)
	err := r.selectPosts(dbPost).
		Where("p.id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return mapDBPostToModel(dbPost), nil
}

// Create inserts the post and its tag links
func (r *Repository) Create(ctx context.Context, p *database.Post, tagIDs []uuid.UUID) (*Post, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(p).Exec(ctx); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		return insertPostTags(ctx, tx, p.ID, tagIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

// Update overwrites the post's editable columns and replaces its tags
func (r *Repository) Update(ctx context.Context, p *database.Post, tagIDs []uuid.UUID) (*Post, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model(p).
			Column("title", "content", "status", "reading_time", "category_id", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to update post: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}

		if _, err := tx.NewDelete().
			Model((*database.PostTag)(nil)).
			Where("post_id = ?", p.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear post tags: %w", err)
		}
		return insertPostTags(ctx, tx, p.ID, tagIDs)
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, p.ID)
}

// Delete removes a post and its tag links
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*database.PostTag)(nil)).
			Where("post_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete post tags: %w", err)
		}

		result, err := tx.NewDelete().
			Model((*database.Post)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete post: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func insertPostTags(ctx context.Context, tx bun.Tx, postID uuid.UUID, tagIDs []uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{}, len(tagIDs))
	links := make([]database.PostTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		links = append(links, database.PostTag{PostID: postID, TagID: id})
	}
	if len(links) == 0 {
		return nil
	}

	if _, err := tx.NewInsert().Model(&links).Exec(ctx); err != nil {
		return fmt.Errorf("failed to link post tags: %w", err)
	}
	return nil
}

func mapDBPostsToModels(rows []database.Post) []Post {
	posts := make([]Post, 0, len(rows))
	for i := range rows {
		posts = append(posts, *mapDBPostToModel(&rows[i]))
	}
	return posts
}

// mapDBPostToModel converts database model to domain model
func mapDBPostToModel(dbp *database.Post) *Post {
	p := &Post{
		ID:          dbp.ID,
		Title:       dbp.Title,
		Content:     dbp.Content,
		Category:    Ref{ID: dbp.CategoryID},
		Tags:        make([]Ref, 0, len(dbp.Tags)),
		ReadingTime: dbp.ReadingTime,
		Status:      Status(dbp.Status),
		CreatedAt:   dbp.CreatedAt,
		UpdatedAt:   dbp.UpdatedAt,
	}
	if dbp.Author != nil {
		p.Author = &Ref{ID: dbp.Author.ID, Name: dbp.Author.Name}
	}
	if dbp.Category != nil {
		p.Category.Name = dbp.Category.Name
	}
	for _, t := range dbp.Tags {
		p.Tags = append(p.Tags, Ref{ID: t.ID, Name: t.Name})
	}
	sort.Slice(p.Tags, func(i, j int) bool { return p.Tags[i].Name < p.Tags[j].Name })
	return p
}
