package auth

import (
	"context"

	"github.com/rpupo63/portfolio-blog-backend/models"
)

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID string
	Role   models.Role
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
