package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-blog-api/internal/user"
)

// Identity is the authenticated user behind a request.
// Every user has the same capabilities; route access is decided by Policy.
type Identity struct {
	ID        uuid.UUID
	Email     string
	Name      string
	CreatedAt time.Time
}

func newIdentity(u *user.User) *Identity {
	return &Identity{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}
