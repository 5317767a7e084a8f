// Package requestctx carries the authenticated account through a request's
// context.Context.
package requestctx

import "context"

type accountIDContextKey struct{}

// WithAccountID stores the authenticated account identifier in ctx.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, accountIDContextKey{}, accountID)
}

// AccountIDFromContext returns the account stored by WithAccountID, or "".
func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(accountIDContextKey{}).(string)
	return value
}
