package auth

import "context"

// ScopeSource records how the scope of a request was resolved
type ScopeSource string

const (
	ScopeFromToken   ScopeSource = "token"
	ScopeFromHeader  ScopeSource = "header"
	ScopeFromDefault ScopeSource = "default"
)

// RequestScope is the workbook scope a request operates on
type RequestScope struct {
	ID     string
	Source ScopeSource
}

type contextKey string

const scopeContextKey contextKey = "requestScope"

// WithScope adds the request scope to the context
func WithScope(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, scopeContextKey, scope)
}

// FromContext extracts the request scope from the context
func FromContext(ctx context.Context) (*RequestScope, bool) {
	scope, ok := ctx.Value(scopeContextKey).(*RequestScope)
	return scope, ok
}

// ReserveScope places an empty scope in the context that the scope middleware
// fills in once it resolved the request scope
func ReserveScope(ctx context.Context) (context.Context, *RequestScope) {
	scope := &RequestScope{}
	return WithScope(ctx, scope), scope
}

// ScopeID returns the scope id stored in the context, or "" when there is none
func ScopeID(ctx context.Context) string {
	if scope, ok := FromContext(ctx); ok {
		return scope.ID
	}
	return ""
}
