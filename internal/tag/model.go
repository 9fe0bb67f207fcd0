package tag

import "github.com/google/uuid"

// Tag labels posts; PostCount counts published posts only
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PostCount int       `json:"postCount"`
}
