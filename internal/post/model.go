package post

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog-api/internal/database"
)

// Status is the publication state of a post
type Status string

const (
	StatusDraft     Status = database.PostStatusDraft
	StatusPublished Status = database.PostStatusPublished
)

// Ref names a related author, category or tag
type Ref struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Post struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Author      *Ref      `json:"author,omitempty"`
	Category    Ref       `json:"category"`
	Tags        []Ref     `json:"tags"`
	ReadingTime int       `json:"readingTime"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListFilter narrows List to a category and/or a tag
type ListFilter struct {
	CategoryID *uuid.UUID
	TagID      *uuid.UUID
}

const wordsPerMinute = 200

// ReadingTime estimates minutes to read content at 200 words per minute,
// rounded up
func ReadingTime(content string) int {
	words := len(strings.Fields(content))
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
