// Package vault implements the delta-sync engine: it pulls full or
// incremental changes from the content delivery API and applies them to
// a local SQLite cache in a single transaction per cycle. Resource
// rows, the entry type index, the link graph, and the continuation
// token all move together or not at all.
package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/contentvault/vault-go/internal/cda"
)

// Fetcher is the remote collaborator the engine pulls changes from.
// An empty token requests a full space sync. Implemented by
// *cda.Client; tests inject mocks.
type Fetcher interface {
	Sync(ctx context.Context, token string) (*cda.SyncSpace, error)
}

// ErrSyncInProgress is returned when a sync is requested while another
// cycle is still running against the same vault. Cycles are never
// interleaved; callers retry after the in-flight cycle completes.
var ErrSyncInProgress = errors.New("vault: sync already in progress")

// SyncResult is the outcome of one sync cycle, delivered to every
// subscriber and to the tag callback regardless of success.
type SyncResult struct {
	CycleID string
	Err     error // nil on success; otherwise a *SyncFailure
}

// Success reports whether the cycle committed.
func (r SyncResult) Success() bool { return r.Err == nil }

// SyncFailure wraps the error that aborted a cycle. The cycle's
// transaction is rolled back in full; no partial application is ever
// visible. Use errors.As to recover the underlying FetchError,
// EncodingError, or StorageError.
type SyncFailure struct {
	Err error
}

func (e *SyncFailure) Error() string { return fmt.Sprintf("vault: sync failed: %v", e.Err) }

func (e *SyncFailure) Unwrap() error { return e.Err }

// FetchError indicates the remote fetch failed before any local write.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("vault: fetch: %v", e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// EncodingError indicates a field value could not be serialized to its
// storage form. Fatal for the enclosing cycle.
type EncodingError struct {
	ResourceID string
	Field      string
	Err        error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("vault: encoding field %q of resource %q: %v", e.Field, e.ResourceID, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// StorageError indicates a write or transaction failure in the local
// store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("vault: storage %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }
