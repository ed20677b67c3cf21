package record

import "context"

// Repository is the persistence contract for level partitions.
// Implementations live in infrastructure/persistence.
type Repository interface {
	// ReadPartition returns the full partition for a level. A partition
	// that does not exist yet, or whose persisted data is unparseable,
	// reads as an empty sequence - never as an error.
	ReadPartition(ctx context.Context, level Level) ([]Record, error)

	// WritePartition replaces the entire partition. The write is a full
	// overwrite, creating the partition on first use.
	WritePartition(ctx context.Context, level Level, records []Record) error
}
