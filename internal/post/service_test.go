package post

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog-api/internal/category"
	"github.com/redmonkez12/go-blog-api/internal/database/dbtest"
	"github.com/redmonkez12/go-blog-api/internal/tag"
	"github.com/redmonkez12/go-blog-api/internal/user"
)

type fixture struct {
	svc        *Service
	categories *category.Repository
	tags       *tag.Repository
	author     *user.User
	other      *user.User
	category   *category.Category
	tagGo      tag.Tag
	tagSQL     tag.Tag
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.NewDB(t)

	users := user.NewRepository(db)
	author, err := users.Create(ctx, "Author", "author@x.com", "h")
	require.NoError(t, err)
	other, err := users.Create(ctx, "Other", "other@x.com", "h")
	require.NoError(t, err)

	categories := category.NewRepository(db)
	c, err := categories.Create(ctx, "Go")
	require.NoError(t, err)

	tags := tag.NewRepository(db)
	created, err := tags.Create(ctx, []string{"go", "sql"})
	require.NoError(t, err)

	svc := NewService(NewRepository(db), categories, tags)
	clock := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	return &fixture{
		svc:        svc,
		categories: categories,
		tags:       tags,
		author:     author,
		other:      other,
		category:   c,
		tagGo:      created[0],
		tagSQL:     created[1],
	}
}

func (f *fixture) input(title string, status Status, tags ...uuid.UUID) Input {
	return Input{
		Title:      title,
		Content:    "a short body with several words",
		CategoryID: f.category.ID,
		TagIDs:     tags,
		Status:     status,
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 0},
		{1, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tc := range tests {
		content := strings.TrimSpace(strings.Repeat("word ", tc.words))
		assert.Equal(t, tc.want, ReadingTime(content), "%d words", tc.words)
	}
	assert.Equal(t, 1, ReadingTime("  spaced\n\tout\twords  "))
}

func TestService_CreateAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.author.ID, f.input("Hello Go", StatusPublished, f.tagSQL.ID, f.tagGo.ID))
	require.NoError(t, err)

	assert.Equal(t, "Hello Go", created.Title)
	assert.Equal(t, StatusPublished, created.Status)
	assert.Equal(t, 1, created.ReadingTime)
	require.NotNil(t, created.Author)
	assert.Equal(t, f.author.ID, created.Author.ID)
	assert.Equal(t, "Author", created.Author.Name)
	assert.Equal(t, Ref{ID: f.category.ID, Name: "Go"}, created.Category)
	assert.Equal(t, []Ref{{ID: f.tagGo.ID, Name: "go"}, {ID: f.tagSQL.ID, Name: "sql"}}, created.Tags)

	got, err := f.svc.Get(ctx, created.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestService_UnknownReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input("Hello", StatusDraft)
	in.CategoryID = uuid.New()
	_, err := f.svc.Create(ctx, f.author.ID, in)
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = f.svc.Create(ctx, f.author.ID, f.input("Hello", StatusDraft, f.tagGo.ID, uuid.New()))
	assert.ErrorIs(t, err, ErrUnknownTag)
}

func TestService_ListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other, err := f.categories.Create(ctx, "Databases")
	require.NoError(t, err)

	first, err := f.svc.Create(ctx, f.author.ID, f.input("First", StatusPublished, f.tagGo.ID))
	require.NoError(t, err)
	dbIn := f.input("Second", StatusPublished, f.tagSQL.ID)
	dbIn.CategoryID = other.ID
	second, err := f.svc.Create(ctx, f.author.ID, dbIn)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.author.ID, f.input("Draft", StatusDraft, f.tagGo.ID))
	require.NoError(t, err)

	all, err := f.svc.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")
	assert.Equal(t, first.ID, all[1].ID)

	byCategory, err := f.svc.List(ctx, ListFilter{CategoryID: &other.ID})
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, second.ID, byCategory[0].ID)

	byTag, err := f.svc.List(ctx, ListFilter{TagID: &f.tagGo.ID})
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, first.ID, byTag[0].ID)

	both, err := f.svc.List(ctx, ListFilter{CategoryID: &other.ID, TagID: &f.tagGo.ID})
	require.NoError(t, err)
	assert.Empty(t, both)
}

func TestService_DraftsVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	draft, err := f.svc.Create(ctx, f.author.ID, f.input("Secret", StatusDraft))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.other.ID, f.input("Someone else's", StatusDraft))
	require.NoError(t, err)

	drafts, err := f.svc.Drafts(ctx, f.author.ID)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, draft.ID, drafts[0].ID)

	_, err = f.svc.Get(ctx, draft.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Get(ctx, draft.ID, &f.other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := f.svc.Get(ctx, draft.ID, &f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDraft, got.Status)
}

func TestService_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.author.ID, f.input("Draft", StatusDraft, f.tagGo.ID))
	require.NoError(t, err)

	in := f.input("Published", StatusPublished, f.tagSQL.ID)
	in.Content = strings.Repeat("word ", 450)
	updated, err := f.svc.Update(ctx, created.ID, in)
	require.NoError(t, err)

	assert.Equal(t, "Published", updated.Title)
	assert.Equal(t, StatusPublished, updated.Status)
	assert.Equal(t, 3, updated.ReadingTime)
	assert.Equal(t, []Ref{{ID: f.tagSQL.ID, Name: "sql"}}, updated.Tags)
	assert.Equal(t, f.author.ID, updated.Author.ID, "author is kept")
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

	_, err = f.svc.Update(ctx, uuid.New(), in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.author.ID, f.input("Doomed", StatusPublished, f.tagGo.ID))
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, created.ID))
	_, err = f.svc.Get(ctx, created.ID, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, created.ID), ErrNotFound)

	assert.NoError(t, f.tags.Delete(ctx, f.tagGo.ID), "tag is free once the post is gone")
}
