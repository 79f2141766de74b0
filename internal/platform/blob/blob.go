// Package blob abstracts binary storage for claim documents and archive
// artifacts. Keys are hierarchical paths; Put returns the stable reference
// callers persist.
package blob

import "context"

type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
