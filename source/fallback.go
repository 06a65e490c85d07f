package source

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-store-coordinator/query"
	"github.com/google/uuid"
)

// FallbackConfig describes how to query and mutate a record type in memory.
type FallbackConfig[T any] struct {
	// ID extracts a record's identifier. Required.
	ID func(T) string

	// WithID returns a copy of the record with the given identifier, used on
	// create when the payload carries none. Optional.
	WithID func(T, string) T

	// NewID generates identifiers for created records. Default: uuid.
	NewID func() string

	// FieldValue extracts the value a filter field matches against. A field
	// it does not recognize rejects the query with ErrUnknownField.
	FieldValue func(T, string) (string, bool)

	// SearchText is the haystack the search term is matched against,
	// case-insensitively.
	SearchText func(T) string

	// Less holds the comparison per sortable field.
	Less map[string]func(a, b T) bool

	// Latency simulates collaborator round-trip time. Queries wait this long
	// before answering, honoring context cancellation.
	Latency time.Duration
}

// FallbackSource is the demo-data DataSource variant: a seeded in-memory
// collaborator used when no live backend is reachable, and by tests. It is
// selected once at construction time, never as a runtime branch inside the
// coordinator.
type FallbackSource[T any] struct {
	mu      sync.RWMutex
	cfg     FallbackConfig[T]
	records []T
}

// NewFallbackSource creates a fallback source seeded with the given records.
func NewFallbackSource[T any](cfg FallbackConfig[T], seed []T) *FallbackSource[T] {
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &FallbackSource[T]{
		cfg:     cfg,
		records: append([]T(nil), seed...),
	}
}

// Query filters, sorts, and pages the seeded records.
func (s *FallbackSource[T]) Query(ctx context.Context, d query.Descriptor) (QueryResult[T], error) {
	if err := s.wait(ctx); err != nil {
		return QueryResult[T]{}, err
	}

	s.mu.RLock()
	matched := make([]T, 0, len(s.records))
	for _, record := range s.records {
		ok, err := s.matches(record, d)
		if err != nil {
			s.mu.RUnlock()
			return QueryResult[T]{}, err
		}
		if ok {
			matched = append(matched, record)
		}
	}
	s.mu.RUnlock()

	if d.Sort.Field != "" {
		less, ok := s.cfg.Less[d.Sort.Field]
		if !ok {
			return QueryResult[T]{}, fmt.Errorf("%w: sort %q", ErrUnknownField, d.Sort.Field)
		}
		sort.SliceStable(matched, func(i, j int) bool {
			if d.Sort.Order == query.SortDesc {
				return less(matched[j], matched[i])
			}
			return less(matched[i], matched[j])
		})
	}

	total := len(matched)
	start := d.Pagination.Offset()
	// an un-normalized descriptor (page zero) yields a negative offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := start + d.Pagination.PerPage
	if d.Pagination.PerPage <= 0 || end > total {
		end = total
	}

	return QueryResult[T]{Items: matched[start:end], TotalCount: total}, nil
}

// GetByID returns the seeded record with the given identifier.
func (s *FallbackSource[T]) GetByID(ctx context.Context, id string) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, record := range s.records {
		if s.cfg.ID(record) == id {
			return record, nil
		}
	}
	return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Mutate applies a write against the in-memory records.
func (s *FallbackSource[T]) Mutate(ctx context.Context, kind MutationKind, id string, payload any) (T, error) {
	var zero T
	if err := s.wait(ctx); err != nil {
		return zero, err
	}

	switch kind {
	case MutationCreate:
		record, ok := payload.(T)
		if !ok {
			return zero, fmt.Errorf("%w: want %T, got %T", ErrInvalidPayload, zero, payload)
		}
		if s.cfg.ID(record) == "" && s.cfg.WithID != nil {
			record = s.cfg.WithID(record, s.cfg.NewID())
		}
		s.mu.Lock()
		s.records = append(s.records, record)
		s.mu.Unlock()
		return record, nil

	case MutationUpdate:
		record, ok := payload.(T)
		if !ok {
			return zero, fmt.Errorf("%w: want %T, got %T", ErrInvalidPayload, zero, payload)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.records {
			if s.cfg.ID(existing) == id {
				s.records[i] = record
				return record, nil
			}
		}
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)

	case MutationDelete:
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.records {
			if s.cfg.ID(existing) == id {
				s.records = append(s.records[:i], s.records[i+1:]...)
				return zero, nil
			}
		}
		return zero, fmt.Errorf("%w: %s", ErrNotFound, id)

	default:
		return zero, fmt.Errorf("%w: %s", ErrUnsupportedMutation, kind)
	}
}

// Len reports the number of records currently held.
func (s *FallbackSource[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *FallbackSource[T]) matches(record T, d query.Descriptor) (bool, error) {
	for field, values := range d.Filters {
		if s.cfg.FieldValue == nil {
			return false, fmt.Errorf("%w: filter %q", ErrUnknownField, field)
		}
		got, ok := s.cfg.FieldValue(record, field)
		if !ok {
			return false, fmt.Errorf("%w: filter %q", ErrUnknownField, field)
		}
		if !contains(values, got) {
			return false, nil
		}
	}

	if d.Search != "" {
		if s.cfg.SearchText == nil {
			return false, nil
		}
		haystack := strings.ToLower(s.cfg.SearchText(record))
		if !strings.Contains(haystack, strings.ToLower(d.Search)) {
			return false, nil
		}
	}

	return true, nil
}

func (s *FallbackSource[T]) wait(ctx context.Context) error {
	if s.cfg.Latency <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(s.cfg.Latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
