package auth

import "context"

type ctxKey int

const sessionKey ctxKey = iota

// WithSession attaches a session to a request context.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the context's session, or nil for none.
func SessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}
