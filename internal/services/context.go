package services

import "context"

type contextKey string

const (
	rowIDKey     contextKey = "row_id"
	jobIDKey     contextKey = "job_id"
	requestIDKey contextKey = "request_id"
)

// WithRowID annotates context with the table row identifier.
func WithRowID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, rowIDKey, id)
}

// RowIDFromContext extracts the row identifier if present.
func RowIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(rowIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithJobID annotates context with the ingestion job identifier.
func WithJobID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, jobIDKey, id)
}

// JobIDFromContext returns the job identifier if present.
func JobIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(jobIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
