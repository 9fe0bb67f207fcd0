package database

import (
	"database/sql"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// NewBunDB creates a new Bun DB instance from an existing sql.DB connection
// and registers the blog's models
func NewBunDB(sqlDB *sql.DB) *bun.DB {
	db := bun.NewDB(sqlDB, pgdialect.New())
	RegisterModels(db)
	return db
}

// RegisterModels registers join models that bun needs for m2m relations.
// It must run before any query touches Post.Tags.
func RegisterModels(db *bun.DB) {
	db.RegisterModel((*PostTag)(nil))
}
