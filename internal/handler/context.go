package handler

import (
	"context"

	"github.com/dukerupert/clipchat/internal/model"
)

type contextKey struct{}

// WithSession stores the authenticated session in the context.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// SessionFromContext retrieves the authenticated session, or nil.
func SessionFromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(contextKey{}).(*model.Session)
	return sess
}
