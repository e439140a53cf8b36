package auth

import (
	"context"

	"blogserver/internal/domain"
)

type principalContextKey struct{}

// ContextWithPrincipal attaches the authenticated user to the context.
func ContextWithPrincipal(ctx context.Context, user *domain.User) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, principalContextKey{}, user)
}

// PrincipalFromContext extracts the authenticated user from the context.
// The second return is false when the request is unauthenticated.
func PrincipalFromContext(ctx context.Context) (*domain.User, bool) {
	if ctx == nil {
		return nil, false
	}
	user, ok := ctx.Value(principalContextKey{}).(*domain.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
