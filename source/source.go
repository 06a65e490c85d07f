package source

import (
	"context"
	"errors"

	"github.com/goliatone/go-store-coordinator/query"
)

// MutationKind enumerates the write operations a data source understands.
type MutationKind string

const (
	MutationCreate MutationKind = "create"
	MutationUpdate MutationKind = "update"
	MutationDelete MutationKind = "delete"
)

// Sentinel errors shared by all data source implementations.
var (
	// ErrNotFound reports that no record exists under the requested ID.
	ErrNotFound = errors.New("source: record not found")

	// ErrInvalidPayload reports a mutation payload of the wrong type.
	ErrInvalidPayload = errors.New("source: invalid mutation payload")

	// ErrUnknownField reports a filter or sort field the source has no
	// mapping for. This is a caller contract violation, not an outage.
	ErrUnknownField = errors.New("source: unknown field")

	// ErrUnsupportedMutation reports a mutation kind the source does not
	// implement.
	ErrUnsupportedMutation = errors.New("source: unsupported mutation")
)

// QueryResult is one page of records plus the total match count.
type QueryResult[T any] struct {
	Items      []T
	TotalCount int
}

// DataSource is the persistence collaborator the coordinator consumes. The
// coordinator never talks to a backend directly; everything goes through this
// contract so live, repository-backed, and fallback sources are
// interchangeable, selected once at construction.
type DataSource[T any] interface {
	// Query returns the page of records selected by the descriptor.
	Query(ctx context.Context, d query.Descriptor) (QueryResult[T], error)

	// GetByID returns a single record, or ErrNotFound.
	GetByID(ctx context.Context, id string) (T, error)

	// Mutate applies a write operation and returns the resulting record.
	// Delete returns the zero value.
	Mutate(ctx context.Context, kind MutationKind, id string, payload any) (T, error)
}
