// Package store maps named collections to durable storage. The in-memory
// collection is the source of truth within a process lifetime; this layer is
// the durability side-channel.
package store

import "context"

// Persister loads and saves one document per collection per tenant.
type Persister interface {
	// Load returns the raw document and whether it exists.
	Load(ctx context.Context, tenantID, collection string) ([]byte, bool, error)
	// Save replaces the document. Implementations must not leave a
	// partially written file behind on failure.
	Save(ctx context.Context, tenantID, collection string, data []byte) error
	// Archive writes data to a timestamped cold-storage location and
	// returns its path. Archives are never read by the running system.
	Archive(ctx context.Context, tenantID, collection string, data []byte) (string, error)
	// Tenants lists every tenant namespace with persisted data.
	Tenants(ctx context.Context) ([]string, error)
}
