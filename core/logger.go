package core

import (
	"context"
	"log/slog"
)

// RequestIDKey is the context key for the identifier of the HTTP request,
// used to correlate the SQL logs with the requests.
type RequestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey{}, id)
}

func logAttrs(ctx context.Context, attrs ...slog.Attr) []slog.Attr {
	attrs = append(attrs, slog.String("nspace", "pokemon"))
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok {
		attrs = append(attrs, slog.String("req_id", id))
	}
	return attrs
}
