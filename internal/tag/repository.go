package tag

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-blog-api/internal/database"
)

var (
	ErrNotFound = errors.New("tag not found")
	ErrHasPosts = errors.New("tag has posts")
)

// Repository handles tag persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns every tag ordered by name with its published post count
func (r *Repository) List(ctx context.Context) ([]Tag, error) {
	var rows []database.Tag
	err := r.db.NewSelect().
		Model(&rows).
		Column("id", "name").
		ColumnExpr(`(SELECT COUNT(*) FROM post_tags AS pt
			JOIN posts AS p ON p.id = pt.post_id
			WHERE pt.tag_id = t.id AND p.status = ?) AS post_count`, database.PostStatusPublished).
		OrderExpr("t.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return mapDBTagsToModels(rows), nil
}

// Create stores the names that do not exist yet and returns the tags for
// every requested name, ordered by name
func (r *Repository) Create(ctx context.Context, names []string) ([]Tag, error) {
	names = uniqueNames(names)
	if len(names) == 0 {
		return []Tag{}, nil
	}

	candidates := make([]database.Tag, len(names))
	for i, name := range names {
		candidates[i] = database.Tag{ID: uuid.New(), Name: name}
	}

	// A concurrent Create may insert the same name first; the conflicting
	// row is skipped and picked up by the select.
	var rows []database.Tag
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(&candidates).
			On("CONFLICT (name) DO NOTHING").
			Returning("NULL").
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to create tags: %w", err)
		}

		if err := tx.NewSelect().
			Model(&rows).
			Where("name IN (?)", bun.In(names)).
			Scan(ctx); err != nil {
			return fmt.Errorf("failed to load tags: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return mapDBTagsToModels(rows), nil
}

// GetByIDs returns the tags with the given ids. It fails with ErrNotFound
// unless every id exists.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	unique := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		unique[id] = struct{}{}
	}
	if len(unique) == 0 {
		return []Tag{}, nil
	}

	var rows []database.Tag
	if err := r.db.NewSelect().
		Model(&rows).
		Where("id IN (?)", bun.In(ids)).
		OrderExpr("t.name ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}

	if len(rows) != len(unique) {
		return nil, ErrNotFound
	}
	return mapDBTagsToModels(rows), nil
}

// Delete removes a tag that no post carries. Deleting an unknown id succeeds.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.Tag)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	switch {
	case database.IsForeignKeyViolation(err):
		return ErrHasPosts
	case err != nil:
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}

// uniqueNames drops duplicates while keeping the first occurrence order
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func mapDBTagsToModels(rows []database.Tag) []Tag {
	tags := make([]Tag, 0, len(rows))
	for _, t := range rows {
		tags = append(tags, Tag{ID: t.ID, Name: t.Name, PostCount: t.PostCount})
	}
	return tags
}
