package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Post statuses as stored in posts.status
const (
	PostStatusDraft     = "DRAFT"
	PostStatusPublished = "PUBLISHED"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	Name         string    `bun:"name,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull,unique"`
	PostCount int       `bun:"post_count,scanonly"`
}

type Tag struct {
	bun.BaseModel `bun:"table:tags,alias:t"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Name      string    `bun:"name,notnull,unique"`
	PostCount int       `bun:"post_count,scanonly"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Title       string    `bun:"title,notnull"`
	Content     string    `bun:"content,notnull"`
	Status      string    `bun:"status,notnull"`
	ReadingTime int       `bun:"reading_time,notnull"`
	AuthorID    uuid.UUID `bun:"author_id,notnull,type:uuid"`
	CategoryID  uuid.UUID `bun:"category_id,notnull,type:uuid"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`

	Author   *User     `bun:"rel:belongs-to,join:author_id=id"`
	Category *Category `bun:"rel:belongs-to,join:category_id=id"`
	Tags     []Tag     `bun:"m2m:post_tags,join:Post=Tag"`
}

type PostTag struct {
	bun.BaseModel `bun:"table:post_tags,alias:pt"`

	PostID uuid.UUID `bun:"post_id,pk,type:uuid"`
	Post   *Post     `bun:"rel:belongs-to,join:post_id=id"`
	TagID  uuid.UUID `bun:"tag_id,pk,type:uuid"`
	Tag    *Tag      `bun:"rel:belongs-to,join:tag_id=id"`
}
