package api

import (
	"context"

	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/errs"
)

// ctxWithIdentity attaches the authenticated caller to the context
func ctxWithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return auth.WithIdentity(ctx, id)
}

// ctxGetIdentity retrieves the caller set by the auth middleware
func ctxGetIdentity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(ctx)
	if !ok {
		return auth.Identity{}, errs.NewMissingTokenError()
	}
	return id, nil
}
