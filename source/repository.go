package source

import (
	"context"
	"fmt"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-store-coordinator/query"
	"github.com/uptrace/bun"
)

// RepositorySource adapts a go-repository-bun repository to the DataSource
// contract, translating descriptors into select criteria. Use it when an
// application already manages its entities through repositories and wants the
// coordinator on top without a second query layer.
type RepositorySource[T any] struct {
	repo repository.Repository[T]
	cfg  BunConfig
}

// NewRepositorySource wraps an existing repository. Column mapping follows
// the same rules as BunSource.
func NewRepositorySource[T any](repo repository.Repository[T], cfg BunConfig) *RepositorySource[T] {
	return &RepositorySource[T]{repo: repo, cfg: cfg}
}

// Query lists records through the repository using criteria built from the
// descriptor.
func (s *RepositorySource[T]) Query(ctx context.Context, d query.Descriptor) (QueryResult[T], error) {
	criteria, err := s.criteria(d)
	if err != nil {
		return QueryResult[T]{}, err
	}

	items, total, err := s.repo.List(ctx, criteria...)
	if err != nil {
		return QueryResult[T]{}, fmt.Errorf("source: list: %w", err)
	}
	return QueryResult[T]{Items: items, TotalCount: total}, nil
}

// GetByID fetches a single record through the repository.
func (s *RepositorySource[T]) GetByID(ctx context.Context, id string) (T, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("source: get %s: %w", id, err)
	}
	return record, nil
}

// Mutate applies a write through the repository. Delete fetches the record
// first because the repository deletes by record, not by ID.
func (s *RepositorySource[T]) Mutate(ctx context.Context, kind MutationKind, id string, payload any) (T, error) {
	var zero T

	switch kind {
	case MutationCreate:
		record, ok := payload.(T)
		if !ok {
			return zero, fmt.Errorf("%w: want %T, got %T", ErrInvalidPayload, zero, payload)
		}
		created, err := s.repo.Create(ctx, record)
		if err != nil {
			return zero, fmt.Errorf("source: create: %w", err)
		}
		return created, nil

	case MutationUpdate:
		record, ok := payload.(T)
		if !ok {
			return zero, fmt.Errorf("%w: want %T, got %T", ErrInvalidPayload, zero, payload)
		}
		updated, err := s.repo.Update(ctx, record)
		if err != nil {
			return zero, fmt.Errorf("source: update %s: %w", id, err)
		}
		return updated, nil

	case MutationDelete:
		record, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return zero, fmt.Errorf("source: delete %s: %w", id, err)
		}
		if err := s.repo.Delete(ctx, record); err != nil {
			return zero, fmt.Errorf("source: delete %s: %w", id, err)
		}
		return zero, nil

	default:
		return zero, fmt.Errorf("%w: %s", ErrUnsupportedMutation, kind)
	}
}

func (s *RepositorySource[T]) criteria(d query.Descriptor) ([]repository.SelectCriteria, error) {
	var criteria []repository.SelectCriteria

	for field, values := range d.Filters {
		column, ok := s.cfg.FilterColumns[field]
		if !ok {
			return nil, fmt.Errorf("%w: filter %q", ErrUnknownField, field)
		}
		values := values
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("? IN (?)", bun.Ident(column), bun.In(values))
		})
	}

	if d.Search != "" && len(s.cfg.SearchColumns) > 0 {
		term := "%" + d.Search + "%"
		columns := s.cfg.SearchColumns
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				for _, column := range columns {
					q = q.WhereOr("? LIKE ?", bun.Ident(column), term)
				}
				return q
			})
		})
	}

	if d.Sort.Field != "" {
		column, ok := s.cfg.SortColumns[d.Sort.Field]
		if !ok {
			return nil, fmt.Errorf("%w: sort %q", ErrUnknownField, d.Sort.Field)
		}
		desc := d.Sort.Order == query.SortDesc
		criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
			if desc {
				return q.OrderExpr("? DESC", bun.Ident(column))
			}
			return q.OrderExpr("? ASC", bun.Ident(column))
		})
	}

	pagination := d.Pagination
	criteria = append(criteria, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(pagination.PerPage).Offset(pagination.Offset())
	})

	return criteria, nil
}
