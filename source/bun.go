package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/goliatone/go-store-coordinator/query"
	"github.com/uptrace/bun"
)

// BunConfig maps descriptor fields onto table columns. Only mapped fields are
// queryable; an unmapped field in a descriptor is rejected with
// ErrUnknownField rather than interpolated into SQL.
type BunConfig struct {
	// FilterColumns maps filter field names to columns.
	FilterColumns map[string]string

	// SortColumns maps sort field names to columns.
	SortColumns map[string]string

	// SearchColumns are matched with LIKE against the search term.
	SearchColumns []string

	// IDColumn is the primary key column. Default: "id".
	IDColumn string
}

func (c BunConfig) idColumn() string {
	if c.IDColumn == "" {
		return "id"
	}
	return c.IDColumn
}

// BunSource is the live DataSource implementation backed by a bun database.
// T must be a struct type carrying bun model tags.
type BunSource[T any] struct {
	db  *bun.DB
	cfg BunConfig
}

// NewBunSource creates a live data source over the given database handle.
func NewBunSource[T any](db *bun.DB, cfg BunConfig) *BunSource[T] {
	return &BunSource[T]{db: db, cfg: cfg}
}

// Query selects one page of records per the descriptor.
func (s *BunSource[T]) Query(ctx context.Context, d query.Descriptor) (QueryResult[T], error) {
	var items []T
	q := s.db.NewSelect().Model(&items)

	for field, values := range d.Filters {
		column, ok := s.cfg.FilterColumns[field]
		if !ok {
			return QueryResult[T]{}, fmt.Errorf("%w: filter %q", ErrUnknownField, field)
		}
		q = q.Where("? IN (?)", bun.Ident(column), bun.In(values))
	}

	if d.Search != "" && len(s.cfg.SearchColumns) > 0 {
		term := "%" + d.Search + "%"
		columns := s.cfg.SearchColumns
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, column := range columns {
				q = q.WhereOr("? LIKE ?", bun.Ident(column), term)
			}
			return q
		})
	}

	if d.Sort.Field != "" {
		column, ok := s.cfg.SortColumns[d.Sort.Field]
		if !ok {
			return QueryResult[T]{}, fmt.Errorf("%w: sort %q", ErrUnknownField, d.Sort.Field)
		}
		if d.Sort.Order == query.SortDesc {
			q = q.OrderExpr("? DESC", bun.Ident(column))
		} else {
			q = q.OrderExpr("? ASC", bun.Ident(column))
		}
	}

	total, err := q.
		Limit(d.Pagination.PerPage).
		Offset(d.Pagination.Offset()).
		ScanAndCount(ctx)
	if err != nil {
		return QueryResult[T]{}, fmt.Errorf("source: query: %w", err)
	}

	return QueryResult[T]{Items: items, TotalCount: total}, nil
}

// GetByID fetches a single record by primary key.
func (s *BunSource[T]) GetByID(ctx context.Context, id string) (T, error) {
	var record T
	err := s.db.NewSelect().
		Model(&record).
		Where("? = ?", bun.Ident(s.cfg.idColumn()), id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return zero, fmt.Errorf("source: get %s: %w", id, err)
	}
	return record, nil
}

// Mutate applies a create, update, or delete. Create and update expect the
// payload to be a T.
func (s *BunSource[T]) Mutate(ctx context.Context, kind MutationKind, id string, payload any) (T, error) {
	var zero T

	switch kind {
	case MutationCreate:
		record, ok := payload.(T)
		if !ok {
			return zero, fmt.Errorf("%w: want %T, got %T", ErrInvalidPayload, zero, payload)
		}
		if _, err := s.db.NewInsert().Model(&record).Exec(ctx); err != nil {
			return zero, fmt.Errorf("source: create: %w", err)
		}
		return record, nil

	case MutationUpdate:
		record, ok := payload.(T)
		if !ok {
			return zero, fmt.Errorf("%w: want %T, got %T", ErrInvalidPayload, zero, payload)
		}
		if _, err := s.db.NewUpdate().Model(&record).WherePK().Exec(ctx); err != nil {
			return zero, fmt.Errorf("source: update %s: %w", id, err)
		}
		return record, nil

	case MutationDelete:
		var record T
		_, err := s.db.NewDelete().
			Model(&record).
			Where("? = ?", bun.Ident(s.cfg.idColumn()), id).
			Exec(ctx)
		if err != nil {
			return zero, fmt.Errorf("source: delete %s: %w", id, err)
		}
		return zero, nil

	default:
		return zero, fmt.Errorf("%w: %s", ErrUnsupportedMutation, kind)
	}
}
