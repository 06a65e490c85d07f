package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-store-coordinator/query"
)

type vendor struct {
	ID     string
	Name   string
	Status string
	City   string
}

func vendorConfig() FallbackConfig[vendor] {
	return FallbackConfig[vendor]{
		ID:     func(v vendor) string { return v.ID },
		WithID: func(v vendor, id string) vendor { v.ID = id; return v },
		FieldValue: func(v vendor, field string) (string, bool) {
			switch field {
			case "status":
				return v.Status, true
			case "city":
				return v.City, true
			default:
				return "", false
			}
		},
		SearchText: func(v vendor) string { return v.Name + " " + v.City },
		Less: map[string]func(a, b vendor) bool{
			"name": func(a, b vendor) bool { return a.Name < b.Name },
		},
	}
}

func seedVendors() []vendor {
	return []vendor{
		{ID: "v-1", Name: "Acme Foods", Status: "active", City: "Portland"},
		{ID: "v-2", Name: "Blue Harbor", Status: "active", City: "Seattle"},
		{ID: "v-3", Name: "Cascade Provisions", Status: "prospect", City: "Portland"},
		{ID: "v-4", Name: "Drift Coffee", Status: "inactive", City: "Eugene"},
	}
}

func TestFallbackSource_QueryFilters(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())
	ctx := context.Background()

	result, err := src.Query(ctx, query.Descriptor{
		Filters: map[string][]string{"status": {"active"}},
	}.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 2 || len(result.Items) != 2 {
		t.Fatalf("expected 2 active vendors, got %d/%d", len(result.Items), result.TotalCount)
	}

	// multi-value filters match any value
	result, err = src.Query(ctx, query.Descriptor{
		Filters: map[string][]string{"status": {"active", "prospect"}},
	}.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 3 {
		t.Errorf("expected 3 matches for multi-value filter, got %d", result.TotalCount)
	}

	// filters combine conjunctively
	result, err = src.Query(ctx, query.Descriptor{
		Filters: map[string][]string{
			"status": {"active", "prospect"},
			"city":   {"Portland"},
		},
	}.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 2 {
		t.Errorf("expected 2 Portland matches, got %d", result.TotalCount)
	}
}

func TestFallbackSource_QueryUnknownField(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())

	_, err := src.Query(context.Background(), query.Descriptor{
		Filters: map[string][]string{"segment": {"retail"}},
	}.Normalize())
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	_, err = src.Query(context.Background(), query.Descriptor{
		Sort: query.Sort{Field: "value", Order: query.SortAsc},
	}.Normalize())
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField for unknown sort, got %v", err)
	}
}

func TestFallbackSource_QuerySearch(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())

	result, err := src.Query(context.Background(), query.Descriptor{Search: "harbor"}.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 1 || result.Items[0].ID != "v-2" {
		t.Errorf("expected case-insensitive match on v-2, got %+v", result)
	}
}

func TestFallbackSource_QuerySort(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())

	result, err := src.Query(context.Background(), query.Descriptor{
		Sort: query.Sort{Field: "name", Order: query.SortDesc},
	}.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Items[0].ID != "v-4" {
		t.Errorf("expected descending order by name, got %+v", result.Items)
	}
}

func TestFallbackSource_QueryPagination(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())
	ctx := context.Background()

	d := query.Descriptor{
		Sort:       query.Sort{Field: "name", Order: query.SortAsc},
		Pagination: query.Pagination{Page: 2, PerPage: 3},
	}.Normalize()

	result, err := src.Query(ctx, d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 4 {
		t.Errorf("expected TotalCount to span all matches, got %d", result.TotalCount)
	}
	if len(result.Items) != 1 || result.Items[0].ID != "v-4" {
		t.Errorf("expected the last vendor on page 2, got %+v", result.Items)
	}

	// a page past the end is empty, not an error
	result, err = src.Query(ctx, query.Descriptor{
		Pagination: query.Pagination{Page: 99, PerPage: 25},
	}.Normalize())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 0 || result.TotalCount != 4 {
		t.Errorf("expected an empty page with the true total, got %+v", result)
	}

	// an un-normalized descriptor with page zero degrades to the first page
	result, err = src.Query(ctx, query.Descriptor{
		Pagination: query.Pagination{Page: 0, PerPage: 2},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 2 || result.TotalCount != 4 {
		t.Errorf("expected the first page for a zero page number, got %+v", result)
	}
}

func TestFallbackSource_GetByID(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())
	ctx := context.Background()

	record, err := src.GetByID(ctx, "v-3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Name != "Cascade Provisions" {
		t.Errorf("unexpected record %+v", record)
	}

	_, err = src.GetByID(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFallbackSource_MutateCreate(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())
	ctx := context.Background()

	created, err := src.Mutate(ctx, MutationCreate, "", vendor{Name: "Evergreen Dairy", Status: "active"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("expected an identifier assigned on create")
	}
	if src.Len() != 5 {
		t.Errorf("expected 5 records, got %d", src.Len())
	}

	// a payload of the wrong type is a contract violation
	if _, err := src.Mutate(ctx, MutationCreate, "", "not a vendor"); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestFallbackSource_MutateUpdate(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())
	ctx := context.Background()

	updated, err := src.Mutate(ctx, MutationUpdate, "v-1", vendor{ID: "v-1", Name: "Acme Organic", Status: "active", City: "Portland"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Acme Organic" {
		t.Errorf("unexpected record %+v", updated)
	}

	record, err := src.GetByID(ctx, "v-1")
	if err != nil {
		t.Fatal(err)
	}
	if record.Name != "Acme Organic" {
		t.Error("expected the update persisted")
	}

	if _, err := src.Mutate(ctx, MutationUpdate, "missing", vendor{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFallbackSource_MutateDelete(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())
	ctx := context.Background()

	if _, err := src.Mutate(ctx, MutationDelete, "v-2", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.Len() != 3 {
		t.Errorf("expected 3 records, got %d", src.Len())
	}
	if _, err := src.GetByID(ctx, "v-2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected the record gone, got %v", err)
	}

	if _, err := src.Mutate(ctx, MutationDelete, "v-2", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected a second delete to report ErrNotFound, got %v", err)
	}
}

func TestFallbackSource_MutateUnsupportedKind(t *testing.T) {
	src := NewFallbackSource(vendorConfig(), seedVendors())

	_, err := src.Mutate(context.Background(), MutationKind("merge"), "v-1", nil)
	if !errors.Is(err, ErrUnsupportedMutation) {
		t.Errorf("expected ErrUnsupportedMutation, got %v", err)
	}
}

func TestFallbackSource_LatencyHonorsCancellation(t *testing.T) {
	cfg := vendorConfig()
	cfg.Latency = time.Second
	src := NewFallbackSource(cfg, seedVendors())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := src.Query(ctx, query.Descriptor{}.Normalize())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected the simulated latency to honor the context, got %v", err)
	}
}
