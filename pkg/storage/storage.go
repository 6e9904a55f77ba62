// Package storage defines the blob storage boundary for deployed wasm
// artifacts and a local-filesystem implementation. The polymorphic
// boundary is kept deliberately narrow (store/fetch only) so a future S3
// or GCS medium is a second implementation of the same interface.
package storage

import "context"

// Storage stores and retrieves wasm artifact bytes by URI.
type Storage interface {
	// Store writes data under a name-derived key and returns the URI the
	// function record should persist.
	Store(ctx context.Context, name string, data []byte) (uri string, err error)
	// Fetch reads back the bytes previously written under uri.
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
