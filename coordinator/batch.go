package coordinator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// OperationKind names the operation a batch applies to each target.
type OperationKind string

const (
	BatchUpdate OperationKind = "update"
	BatchDelete OperationKind = "delete"
)

// BatchOperation is a single-use request to apply one operation to an
// ordered list of targets. It is consumed once and never retried
// automatically.
type BatchOperation struct {
	Kind       OperationKind
	TargetIDs  []string
	Parameters any
}

// ItemError records one target's failure.
type ItemError struct {
	TargetID string
	Message  string
}

// BatchResult reports the outcome of a batch: Succeeded + Failed == Total
// always holds. With sequential execution Errors follow input order; with
// bounded-parallel execution they follow encounter order.
type BatchResult struct {
	Total     int
	Succeeded int
	Failed    int
	Errors    []ItemError
}

// Success reports whether every target succeeded.
func (r BatchResult) Success() bool {
	return r.Failed == 0
}

// ApplyFunc applies the batch's operation to one target.
type ApplyFunc func(ctx context.Context, id string, params any) error

// BatchExecutor applies an operation to many targets, collecting per-item
// failures without ever aborting the rest of the batch. One failing target,
// even a panicking one, never stops the others.
type BatchExecutor struct {
	concurrency int
}

// NewBatchExecutor creates an executor. Concurrency <= 1 runs targets
// sequentially; higher values run up to that many targets at once.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency < 1 {
		concurrency = 1
	}
	return &BatchExecutor{concurrency: concurrency}
}

// Execute applies op to every target and reports the aggregate outcome.
func (e *BatchExecutor) Execute(ctx context.Context, op BatchOperation, apply ApplyFunc) BatchResult {
	result := BatchResult{Total: len(op.TargetIDs)}
	if result.Total == 0 {
		return result
	}

	if e.concurrency <= 1 {
		for _, id := range op.TargetIDs {
			if err := applyOne(ctx, apply, id, op.Parameters); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, ItemError{TargetID: id, Message: err.Error()})
				continue
			}
			result.Succeeded++
		}
		return result
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(e.concurrency)

	for _, id := range op.TargetIDs {
		id := id
		g.Go(func() error {
			err := applyOne(ctx, apply, id, op.Parameters)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, ItemError{TargetID: id, Message: err.Error()})
				return nil
			}
			result.Succeeded++
			return nil
		})
	}

	g.Wait()
	return result
}

// applyOne shields the batch from a panicking apply function.
func applyOne(ctx context.Context, apply ApplyFunc, id string, params any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return apply(ctx, id, params)
}
