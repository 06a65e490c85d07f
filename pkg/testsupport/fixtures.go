// Package testsupport provides seeded demo entities and data sources used by
// tests across the module. The entity shapes mirror a small brokerage CRM:
// organizations, principals, products, opportunities, and interactions.
package testsupport

import (
	"strings"
	"time"

	"github.com/goliatone/go-store-coordinator/source"
	"github.com/google/uuid"
)

// Organization is a customer account in the directory.
type Organization struct {
	ID      string `json:"id" bun:"id,pk"`
	Name    string `json:"name" bun:"name"`
	Status  string `json:"status" bun:"status"`
	Segment string `json:"segment" bun:"segment"`
	City    string `json:"city" bun:"city"`
}

// Principal is a contact person attached to an organization.
type Principal struct {
	ID             string `json:"id" bun:"id,pk"`
	Name           string `json:"name" bun:"name"`
	OrganizationID string `json:"organization_id" bun:"organization_id"`
	Status         string `json:"status" bun:"status"`
}

// Product is a catalog item.
type Product struct {
	ID       string `json:"id" bun:"id,pk"`
	Name     string `json:"name" bun:"name"`
	Category string `json:"category" bun:"category"`
	Active   bool   `json:"active" bun:"active"`
}

// Opportunity is a potential deal in some pipeline stage.
type Opportunity struct {
	ID             string    `json:"id" bun:"id,pk"`
	Name           string    `json:"name" bun:"name"`
	Stage          string    `json:"stage" bun:"stage"`
	Value          float64   `json:"value" bun:"value"`
	OrganizationID string    `json:"organization_id" bun:"organization_id"`
	CreatedAt      time.Time `json:"created_at" bun:"created_at"`
}

// Interaction is a logged touchpoint with an organization.
type Interaction struct {
	ID             string    `json:"id" bun:"id,pk"`
	Kind           string    `json:"kind" bun:"kind"`
	OrganizationID string    `json:"organization_id" bun:"organization_id"`
	OccurredAt     time.Time `json:"occurred_at" bun:"occurred_at"`
}

// SeedOrganizations returns a deterministic demo dataset.
func SeedOrganizations() []Organization {
	return []Organization{
		{ID: "org-1", Name: "Acme Foods", Status: "active", Segment: "retail", City: "Portland"},
		{ID: "org-2", Name: "Blue Harbor Seafood", Status: "active", Segment: "wholesale", City: "Seattle"},
		{ID: "org-3", Name: "Cascade Provisions", Status: "prospect", Segment: "retail", City: "Portland"},
		{ID: "org-4", Name: "Drift Coffee Co", Status: "inactive", Segment: "hospitality", City: "Eugene"},
		{ID: "org-5", Name: "Evergreen Dairy", Status: "active", Segment: "wholesale", City: "Tacoma"},
	}
}

// SeedOpportunities returns a deterministic demo dataset anchored at the
// given reference instant.
func SeedOpportunities(now time.Time) []Opportunity {
	return []Opportunity{
		{ID: "opp-1", Name: "Acme spring order", Stage: "open", Value: 12000, OrganizationID: "org-1", CreatedAt: now.AddDate(0, 0, -3)},
		{ID: "opp-2", Name: "Harbor freezer line", Stage: "open", Value: 48000, OrganizationID: "org-2", CreatedAt: now.AddDate(0, 0, -10)},
		{ID: "opp-3", Name: "Cascade trial", Stage: "won", Value: 8000, OrganizationID: "org-3", CreatedAt: now.AddDate(0, -1, 0)},
		{ID: "opp-4", Name: "Drift espresso refresh", Stage: "lost", Value: 5000, OrganizationID: "org-4", CreatedAt: now.AddDate(0, -2, 0)},
	}
}

// SeedInteractions returns a deterministic demo dataset anchored at the
// given reference instant.
func SeedInteractions(now time.Time) []Interaction {
	return []Interaction{
		{ID: "int-1", Kind: "call", OrganizationID: "org-1", OccurredAt: now.AddDate(0, 0, -1)},
		{ID: "int-2", Kind: "visit", OrganizationID: "org-2", OccurredAt: now.AddDate(0, 0, -4)},
		{ID: "int-3", Kind: "email", OrganizationID: "org-1", OccurredAt: now.AddDate(0, 0, -6)},
	}
}

// OrganizationSource builds a seeded in-memory organization collaborator.
func OrganizationSource(latency time.Duration) *source.FallbackSource[Organization] {
	return source.NewFallbackSource(source.FallbackConfig[Organization]{
		ID:     func(o Organization) string { return o.ID },
		WithID: func(o Organization, id string) Organization { o.ID = id; return o },
		NewID:  uuid.NewString,
		FieldValue: func(o Organization, field string) (string, bool) {
			switch field {
			case "status":
				return o.Status, true
			case "segment":
				return o.Segment, true
			case "city":
				return o.City, true
			default:
				return "", false
			}
		},
		SearchText: func(o Organization) string {
			return strings.Join([]string{o.Name, o.City}, " ")
		},
		Less: map[string]func(a, b Organization) bool{
			"name": func(a, b Organization) bool { return a.Name < b.Name },
			"city": func(a, b Organization) bool { return a.City < b.City },
		},
		Latency: latency,
	}, SeedOrganizations())
}

// OpportunitySource builds a seeded in-memory opportunity collaborator.
func OpportunitySource(now time.Time, latency time.Duration) *source.FallbackSource[Opportunity] {
	return source.NewFallbackSource(source.FallbackConfig[Opportunity]{
		ID:     func(o Opportunity) string { return o.ID },
		WithID: func(o Opportunity, id string) Opportunity { o.ID = id; return o },
		FieldValue: func(o Opportunity, field string) (string, bool) {
			switch field {
			case "stage":
				return o.Stage, true
			case "organization_id":
				return o.OrganizationID, true
			default:
				return "", false
			}
		},
		SearchText: func(o Opportunity) string { return o.Name },
		Less: map[string]func(a, b Opportunity) bool{
			"name":  func(a, b Opportunity) bool { return a.Name < b.Name },
			"value": func(a, b Opportunity) bool { return a.Value < b.Value },
		},
		Latency: latency,
	}, SeedOpportunities(now))
}

// InteractionSource builds a seeded in-memory interaction collaborator.
func InteractionSource(now time.Time, latency time.Duration) *source.FallbackSource[Interaction] {
	return source.NewFallbackSource(source.FallbackConfig[Interaction]{
		ID:     func(i Interaction) string { return i.ID },
		WithID: func(i Interaction, id string) Interaction { i.ID = id; return i },
		FieldValue: func(i Interaction, field string) (string, bool) {
			switch field {
			case "kind":
				return i.Kind, true
			case "organization_id":
				return i.OrganizationID, true
			default:
				return "", false
			}
		},
		SearchText: func(i Interaction) string { return i.Kind },
		Less: map[string]func(a, b Interaction) bool{
			"occurred_at": func(a, b Interaction) bool { return a.OccurredAt.Before(b.OccurredAt) },
		},
		Latency: latency,
	}, SeedInteractions(now))
}
