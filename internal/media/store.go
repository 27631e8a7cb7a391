package media

import (
	"context"
	"io"
)

// Object is a blob handed to a Store.
type Object struct {
	Key         string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Store persists blobs and reports the public URL they are reachable at.
// Implementations must be safe for concurrent use.
type Store interface {
	Backend() string
	Put(ctx context.Context, obj Object) (string, error)
	Delete(ctx context.Context, key string) error
}
