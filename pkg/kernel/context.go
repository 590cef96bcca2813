package kernel

import "context"

type ContextKey string

// RequestIDKey carries the HTTP request id into service calls and jobs.
const RequestIDKey ContextKey = "request_id"

func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
