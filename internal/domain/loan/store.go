package loan

import "context"

// Store persists the whole collection as one unit.
type Store interface {
	// LoadAll never fails: a missing file is an empty collection, and
	// a corrupt one degrades through the backup to empty.
	LoadAll(ctx context.Context) *Collection

	// SaveAll atomically replaces the persisted document. It returns
	// ErrConflict if the on-disk revision advanced past c.Revision
	// since the collection was loaded; on success c.Revision is
	// advanced to the newly persisted revision.
	SaveAll(ctx context.Context, c *Collection) error
}
