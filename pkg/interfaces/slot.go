package interfaces

import "context"

// Slot is a single named persisted blob. It is the only persistence the
// journal needs, so any key-value backend can serve it.
type Slot interface {
	// Load returns the stored blob. It returns nil and no error when the
	// slot has never been written or was cleared.
	Load(ctx context.Context) ([]byte, error)

	// Save replaces the stored blob
	Save(ctx context.Context, data []byte) error

	// Clear removes the stored blob. Clearing an absent slot is not an error.
	Clear(ctx context.Context) error
}
