package service

import (
	"context"

	domainauth "github.com/studytrack/studytrack-client/internal/domain/auth"
)

// viewKey is an unexported context key type to avoid collisions across packages.
type viewKey struct{}

// ContextWithView returns a child context that carries a session snapshot for read-only consumers.
func ContextWithView(ctx context.Context, v domainauth.View) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

// ViewFromContext returns the session snapshot from context and a boolean indicating presence.
func ViewFromContext(ctx context.Context) (domainauth.View, bool) {
	v, ok := ctx.Value(viewKey{}).(domainauth.View)
	return v, ok
}
