package category

import "github.com/google/uuid"

// Category groups posts; PostCount counts published posts only
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PostCount int       `json:"postCount"`
}
