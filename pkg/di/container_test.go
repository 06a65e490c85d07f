package di

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-store-coordinator/aggregate"
	"github.com/goliatone/go-store-coordinator/cache"
	"github.com/goliatone/go-store-coordinator/coordinator"
	"github.com/goliatone/go-store-coordinator/pkg/testsupport"
	"github.com/goliatone/go-store-coordinator/query"
)

func queryAll() query.Descriptor {
	return query.Descriptor{Pagination: query.Pagination{Page: 1, PerPage: 100}}.Normalize()
}

func TestNewContainer_RejectsInvalidConfig(t *testing.T) {
	cfg := cache.DefaultConfig()
	cfg.RecordTTL = 0

	if _, err := NewContainer(cfg); err == nil {
		t.Fatal("expected invalid configuration rejected")
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if container.Store() == nil {
		t.Error("expected a shared store")
	}
	if container.Records() == nil {
		t.Error("expected a shared record cache")
	}
	if container.Config().ListTTL != 5*time.Minute {
		t.Errorf("unexpected list TTL %v", container.Config().ListTTL)
	}
}

func TestNewCoordinator_WiresSharedCaches(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	src := testsupport.OrganizationSource(0)
	coord := NewCoordinator(container, "", src, coordinator.Config{})
	defer coord.Close()

	ctx := context.Background()
	if err := coord.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snap := coord.Snapshot()
	if snap.Total != 5 {
		t.Fatalf("expected the seeded organizations, got total %d", snap.Total)
	}

	// the namespace was derived from the entity type
	if got := container.Store().Len(); got != 1 {
		t.Fatalf("expected one cached list entry, got %d", got)
	}

	// a second coordinator over the same container shares the cache
	other := NewCoordinator(container, "", testsupport.OrganizationSource(0), coordinator.Config{})
	defer other.Close()
	if err := other.Load(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := container.Store().Len(); got != 1 {
		t.Errorf("expected the shared entry reused, got %d entries", got)
	}
}

func TestNewCoordinator_FilterRoundTrip(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	coord := NewCoordinator(container, "organizations", testsupport.OrganizationSource(0), coordinator.Config{})
	defer coord.Close()

	ctx := context.Background()
	if err := coord.ApplyFilters(ctx, map[string][]string{"status": {"active"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := coord.Snapshot(); snap.Total != 3 {
		t.Errorf("expected 3 active organizations, got %d", snap.Total)
	}

	if err := coord.Search(ctx, "portland"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap := coord.Snapshot(); snap.Total != 1 {
		t.Errorf("expected 1 active Portland organization, got %d", snap.Total)
	}
}

func TestNewMetricsCoordinator(t *testing.T) {
	container, err := NewContainerWithDefaults()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	orgs := testsupport.OrganizationSource(0)
	opps := testsupport.OpportunitySource(now, 0)

	composer, err := aggregate.NewComposer(
		aggregate.Field{
			Name:      "total_organizations",
			DependsOn: []aggregate.SourceID{"organizations"},
			Policy:    aggregate.CarryPrevious,
			Compute: func(in aggregate.Inputs, now time.Time) any {
				return in.Value("organizations").(int)
			},
		},
		aggregate.Field{
			Name:      "pipeline_value",
			DependsOn: []aggregate.SourceID{"opportunities"},
			Policy:    aggregate.CarryPrevious,
			Compute: func(in aggregate.Inputs, now time.Time) any {
				total := 0.0
				for _, opp := range in.Value("opportunities").([]testsupport.Opportunity) {
					if opp.Stage == "open" {
						total += opp.Value
					}
				}
				return total
			},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fetchers := map[aggregate.SourceID]aggregate.Fetcher{
		"organizations": func(ctx context.Context) (any, error) {
			return orgs.Len(), nil
		},
		"opportunities": func(ctx context.Context) (any, error) {
			result, err := opps.Query(ctx, queryAll())
			if err != nil {
				return nil, err
			}
			return result.Items, nil
		},
	}

	metrics := NewMetricsCoordinator(container, "dashboard", composer, fetchers, coordinator.MetricsConfig{})
	defer metrics.Close()

	if err := metrics.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	view := metrics.View()
	if view == nil || view.Partial {
		t.Fatalf("expected a complete view, got %+v", view)
	}
	if got, _ := view.Int("total_organizations"); got != 5 {
		t.Errorf("expected 5 organizations, got %d", got)
	}
	if got, _ := view.Float64("pipeline_value"); got != 60000 {
		t.Errorf("expected open pipeline of 60000, got %v", got)
	}
}
