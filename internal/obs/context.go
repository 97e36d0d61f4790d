package obs

import "context"

type ctxKey int

const routePatternCtxKey ctxKey = iota

// WithRoutePattern records the matched chi route pattern on the context so
// metrics and logs can label by route instead of raw path.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routePatternCtxKey, pattern)
}

// RoutePatternFromContext returns the matched route pattern, or "".
func RoutePatternFromContext(ctx context.Context) string {
	v, _ := ctx.Value(routePatternCtxKey).(string)
	return v
}
