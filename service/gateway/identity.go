package gateway

import (
	"context"
	"time"
)

// Identity is the authenticated-user record attached to a connection for its
// lifetime. Secret fields (password hash) never enter this struct.
type Identity struct {
	ID         string    `json:"id"`
	FullName   string    `json:"fullName"`
	Email      string    `json:"email"`
	ProfilePic string    `json:"profilePic"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// IdentityStore resolves a token subject to an identity. A (nil, nil) return
// means no such identity exists (e.g. account deleted).
type IdentityStore interface {
	FindIdentityByID(ctx context.Context, id string) (*Identity, error)
}

// TokenChecker reports whether a token hash has been revoked (logout).
type TokenChecker interface {
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}
