package moana

import (
	"context"
	"net/http"
	"time"

	"github.com/google/martian"
	"github.com/google/uuid"
)

type contextKey string

const (
	// RequestIDKey is the context key for the request ID (uuid.UUID)
	RequestIDKey contextKey = "RequestID"
	// MetadataKey is the context key for the request metadata (Metadata)
	MetadataKey contextKey = "Metadata"
	// RequestTimeKey is the context key for the request timestamp (time.Time)
	RequestTimeKey contextKey = "RequestTime"
	// MartianSessionKey is the context key to store the martian session (*martian.Session)
	MartianSessionKey contextKey = "SessionKey"
)

// Metadata represents a flexible key-value store for additional data associated with requests and cached assets.
type Metadata map[string]any

// ContextWithSession returns a new request with a martian session in the context
func ContextWithSession(req *http.Request, session *martian.Session) *http.Request {
	ctx := context.WithValue(req.Context(), MartianSessionKey, session)
	return req.WithContext(ctx)
}

// SessionFromContext returns the martian session from the context if it exists
func SessionFromContext(ctx context.Context) (*martian.Session, bool) {
	session, ok := ctx.Value(MartianSessionKey).(*martian.Session)
	return session, ok
}

// ContextWithRequestID returns a new request with a request ID in the context
func ContextWithRequestID(req *http.Request, requestId uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), RequestIDKey, requestId)
	return req.WithContext(ctx)
}

// RequestIDFromContext returns the request ID from the context if it exists
func RequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(RequestIDKey).(uuid.UUID)
	return id, ok
}

// ContextWithMetadata returns a new request with metadata in the context
func ContextWithMetadata(req *http.Request, metadata Metadata) *http.Request {
	ctx := context.WithValue(req.Context(), MetadataKey, metadata)
	return req.WithContext(ctx)
}

// MetadataFromContext returns the metadata from the context if it exists
func MetadataFromContext(ctx context.Context) (Metadata, bool) {
	metadata, ok := ctx.Value(MetadataKey).(Metadata)
	return metadata, ok
}

// ContextWithRequestTime returns a new request with the request time in the context
func ContextWithRequestTime(req *http.Request, requestTime time.Time) *http.Request {
	ctx := context.WithValue(req.Context(), RequestTimeKey, requestTime)
	return req.WithContext(ctx)
}

// RequestTimeFromContext returns the request time from the context if it exists
func RequestTimeFromContext(ctx context.Context) (time.Time, bool) {
	timestamp, ok := ctx.Value(RequestTimeKey).(time.Time)
	return timestamp, ok
}
