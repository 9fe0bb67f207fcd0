// Package dbtest opens throwaway SQLite databases carrying the blog schema.
package dbtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/redmonkez12/go-blog-api/internal/database"
)

// NewDB returns an in-memory SQLite bun.DB with every table created and
// foreign keys enforced as in the Postgres schema.
// The database is private to the calling test and closed on cleanup.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	sqlDB, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	database.RegisterModels(db)

	ctx := context.Background()
	_, err = db.ExecContext(ctx, "PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	tables := []*bun.CreateTableQuery{
		db.NewCreateTable().Model((*database.User)(nil)),
		db.NewCreateTable().Model((*database.Category)(nil)),
		db.NewCreateTable().Model((*database.Tag)(nil)),
		db.NewCreateTable().Model((*database.Post)(nil)).
			ForeignKey(`("author_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
			ForeignKey(`("category_id") REFERENCES "categories" ("id")`),
		db.NewCreateTable().Model((*database.PostTag)(nil)).
			ForeignKey(`("post_id") REFERENCES "posts" ("id") ON DELETE CASCADE`).
			ForeignKey(`("tag_id") REFERENCES "tags" ("id")`),
	}
	for _, q := range tables {
		_, err := q.IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
