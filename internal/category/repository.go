package category

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog-api/internal/database"
)

var (
	ErrNotFound  = errors.New("category not found")
	ErrNameTaken = errors.New("category name already exists")
	ErrHasPosts  = errors.New("category has posts")
)

// Repository handles category persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns every category ordered by name with its published post count
func (r *Repository) List(ctx context.Context) ([]Category, error) {
	var rows []database.Category
	err := r.db.NewSelect().
		Model(&rows).
		Column("id", "name").
		ColumnExpr("(SELECT COUNT(*) FROM posts AS p WHERE p.category_id = c.id AND p.status = ?) AS post_count", database.PostStatusPublished).
		OrderExpr("c.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]Category, 0, len(rows))
	for i := range rows {
		categories = append(categories, *mapDBCategoryToModel(&rows[i]))
	}
	return categories, nil
}

// Get retrieves a category by ID
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*Category, error) {
	dbCategory := new(database.Category)
	err := r.db.NewSelect().
		Model(dbCategory).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return mapDBCategoryToModel(dbCategory), nil
}

// Create inserts a category. Names are unique ignoring case.
func (r *Repository) Create(ctx context.Context, name string) (*Category, error) {
	taken, err := r.nameTaken(ctx, name, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	dbCategory := &database.Category{ID: uuid.New(), Name: name}
	if _, err := r.db.NewInsert().Model(dbCategory).Exec(ctx); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return mapDBCategoryToModel(dbCategory), nil
}

// Update renames a category
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name string) (*Category, error) {
	taken, err := r.nameTaken(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	result, err := r.db.NewUpdate().
		Model((*database.Category)(nil)).
		Set("name = ?", name).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, id)
}

// Delete removes a category that no post references, drafts included.
// Deleting an unknown id succeeds.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.Category)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	switch {
	case database.IsForeignKeyViolation(err):
		return ErrHasPosts
	case err != nil:
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// nameTaken reports whether another category than exclude uses name, ignoring case
func (r *Repository) nameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	q := r.db.NewSelect().
		Model((*database.Category)(nil)).
		Where("LOWER(name) = LOWER(?)", name)
	if exclude != uuid.Nil {
		q = q.Where("id != ?", exclude)
	}

	exists, err := q.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check category name: %w", err)
	}
	return exists, nil
}

func mapDBCategoryToModel(dbc *database.Category) *Category {
	return &Category{
		ID:        dbc.ID,
		Name:      dbc.Name,
		PostCount: dbc.PostCount,
	}
}
