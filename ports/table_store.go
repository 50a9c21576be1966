package ports

import (
	"context"

	"tablesense/domain/table"
)

// TableStore is the backing store a table is read through. Every FetchRange
// is capped at PageSize rows regardless of the requested range.
type TableStore interface {
	// PageSize is the per-request row cap imposed by the store
	PageSize() int

	// Count returns the number of rows matching the query predicates
	Count(ctx context.Context, q table.Query) (int, error)

	// FetchRange returns rows for the inclusive offset range [from, to]
	FetchRange(ctx context.Context, q table.Query, from, to int) ([]table.Record, error)

	// HasColumn reports whether the relation exposes the column
	HasColumn(ctx context.Context, tableName, column string) (bool, error)
}
