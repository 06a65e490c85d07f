package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCollect_AllSucceed(t *testing.T) {
	fetchers := map[SourceID]Fetcher{
		"organizations": func(ctx context.Context) (any, error) { return 5, nil },
		"opportunities": func(ctx context.Context) (any, error) { return 3, nil },
	}

	vals, errs := Collect(context.Background(), fetchers, time.Second)

	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(vals) != 2 {
		t.Fatalf("expected 2 values, got %d", len(vals))
	}
	if vals["organizations"] != 5 || vals["opportunities"] != 3 {
		t.Errorf("unexpected values: %v", vals)
	}
}

func TestCollect_FailureIsolated(t *testing.T) {
	boom := errors.New("connection refused")
	fetchers := map[SourceID]Fetcher{
		"organizations": func(ctx context.Context) (any, error) { return 5, nil },
		"opportunities": func(ctx context.Context) (any, error) { return nil, boom },
	}

	vals, errs := Collect(context.Background(), fetchers, time.Second)

	if vals["organizations"] != 5 {
		t.Error("expected the healthy source to still deliver")
	}
	if _, ok := vals["opportunities"]; ok {
		t.Error("expected the failed source to be absent from values")
	}
	if !errors.Is(errs["opportunities"], boom) {
		t.Errorf("expected the failure recorded, got %v", errs["opportunities"])
	}
}

func TestCollect_TimeoutIsolated(t *testing.T) {
	fetchers := map[SourceID]Fetcher{
		"fast": func(ctx context.Context) (any, error) { return "ok", nil },
		"slow": func(ctx context.Context) (any, error) {
			select {
			case <-time.After(time.Second):
				return "late", nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}

	vals, errs := Collect(context.Background(), fetchers, 10*time.Millisecond)

	if vals["fast"] != "ok" {
		t.Error("expected the fast source to deliver")
	}
	if !errors.Is(errs["slow"], context.DeadlineExceeded) {
		t.Errorf("expected the slow source to time out, got %v", errs["slow"])
	}
}

func TestCollect_PanicIsolated(t *testing.T) {
	fetchers := map[SourceID]Fetcher{
		"healthy": func(ctx context.Context) (any, error) { return 1, nil },
		"broken":  func(ctx context.Context) (any, error) { panic("nil map write") },
	}

	vals, errs := Collect(context.Background(), fetchers, time.Second)

	if vals["healthy"] != 1 {
		t.Error("expected the healthy source to survive a sibling panic")
	}
	if errs["broken"] == nil {
		t.Fatal("expected the panic converted into a source error")
	}
}

func TestCollect_Empty(t *testing.T) {
	vals, errs := Collect(context.Background(), nil, time.Second)
	if len(vals) != 0 || len(errs) != 0 {
		t.Errorf("expected empty results, got %v / %v", vals, errs)
	}
}
