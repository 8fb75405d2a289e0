package telemetry

import "context"

type requestIDKey struct{}

type userIDKey struct{}

// WithRequestID attaches a request ID to the context for logging.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID stored by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey{})
}

// WithUserID attaches the authenticated local user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil || userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id stored by WithUserID, if any.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, userIDKey{})
}

// ContextFields returns the request-scoped log fields merged over extra.
// extra is modified in place and may be nil.
func ContextFields(ctx context.Context, extra map[string]any) map[string]any {
	if extra == nil {
		extra = map[string]any{}
	}
	if id := RequestIDFromContext(ctx); id != "" {
		extra["request_id"] = id
	}
	if id := UserIDFromContext(ctx); id != "" {
		extra["user_id"] = id
	}
	return extra
}

func stringValue(ctx context.Context, key any) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
