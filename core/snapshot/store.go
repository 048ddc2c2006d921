package snapshot

import "context"

// Store persists one snapshot per label. Labels are calendar dates in
// the form 2006-01-02; picking the latest label is the caller's job.
type Store interface {
	// Save writes snap under label, replacing any previous snapshot
	// for that label.
	Save(ctx context.Context, label string, snap Snapshot) error
	// Load returns the snapshot stored under label. A missing label
	// yields a PersistenceError wrapping ErrNotFound.
	Load(ctx context.Context, label string) (Snapshot, error)
	// Labels lists the stored labels in ascending order.
	Labels(ctx context.Context) ([]string, error)
}
