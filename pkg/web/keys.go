package web

type contextKey string

// UserIDKey is the context key under which AuthMiddleware stores the
// authenticated user ID.
const UserIDKey contextKey = "userID"

type requestIDKey struct{}
