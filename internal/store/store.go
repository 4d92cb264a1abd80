// Package store provides the key-value blob store the ledger persists
// through, with SQLite and in-memory implementations.
package store

import "context"

// BlobStore is the persistence port for serialized ledger blobs. Get
// reports absence through its boolean, not an error.
type BlobStore interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
