package query

import (
	"reflect"
	"testing"
)

func TestDescriptor_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Descriptor
		expected Descriptor
	}{
		{
			name:  "zero descriptor gets default pagination",
			input: Descriptor{},
			expected: Descriptor{
				Pagination: Pagination{Page: 1, PerPage: DefaultPerPage},
			},
		},
		{
			name: "empty filter fields dropped",
			input: Descriptor{
				Filters: map[string][]string{
					"status": nil,
					"city":   {"", "  "},
					"stage":  {"open"},
				},
			},
			expected: Descriptor{
				Filters:    map[string][]string{"stage": {"open"}},
				Pagination: Pagination{Page: 1, PerPage: DefaultPerPage},
			},
		},
		{
			name: "multi-value filters sorted",
			input: Descriptor{
				Filters: map[string][]string{"status": {"b", "a"}},
			},
			expected: Descriptor{
				Filters:    map[string][]string{"status": {"a", "b"}},
				Pagination: Pagination{Page: 1, PerPage: DefaultPerPage},
			},
		},
		{
			name:  "sort field without order defaults to asc",
			input: Descriptor{Sort: Sort{Field: "name"}},
			expected: Descriptor{
				Sort:       Sort{Field: "name", Order: SortAsc},
				Pagination: Pagination{Page: 1, PerPage: DefaultPerPage},
			},
		},
		{
			name:  "order without field cleared",
			input: Descriptor{Sort: Sort{Order: SortDesc}},
			expected: Descriptor{
				Pagination: Pagination{Page: 1, PerPage: DefaultPerPage},
			},
		},
		{
			name:  "search trimmed",
			input: Descriptor{Search: "  acme  "},
			expected: Descriptor{
				Search:     "acme",
				Pagination: Pagination{Page: 1, PerPage: DefaultPerPage},
			},
		},
		{
			name:  "explicit pagination kept",
			input: Descriptor{Pagination: Pagination{Page: 3, PerPage: 50}},
			expected: Descriptor{
				Pagination: Pagination{Page: 3, PerPage: 50},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.input.Normalize()
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestDescriptor_NormalizeOrderIndependent(t *testing.T) {
	a := Descriptor{Filters: map[string][]string{"status": {"active", "prospect"}}}
	b := Descriptor{Filters: map[string][]string{"status": {"prospect", "active"}}}

	if !reflect.DeepEqual(a.Normalize(), b.Normalize()) {
		t.Error("expected reordered multi-value filters to normalize identically")
	}
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		input   Descriptor
		wantErr bool
	}{
		{"normalized zero descriptor", Descriptor{}.Normalize(), false},
		{"per_page above cap", Descriptor{Pagination: Pagination{Page: 1, PerPage: MaxPerPage + 1}}, true},
		{"page below one", Descriptor{Pagination: Pagination{Page: -1, PerPage: 10}}, true},
		{"bad sort order", Descriptor{Sort: Sort{Field: "name", Order: "sideways"}, Pagination: Pagination{Page: 1, PerPage: 10}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDescriptor_Merge(t *testing.T) {
	base := Descriptor{
		Filters:    map[string][]string{"status": {"active"}, "city": {"Portland"}},
		Sort:       Sort{Field: "name", Order: SortAsc},
		Search:     "acme",
		Pagination: Pagination{Page: 4, PerPage: 25},
	}

	merged := base.Merge(map[string][]string{
		"status":  {"prospect"},
		"city":    nil,
		"segment": {"retail"},
	})

	if got := merged.Filters["status"]; !reflect.DeepEqual(got, []string{"prospect"}) {
		t.Errorf("expected status overlaid, got %v", got)
	}
	if _, ok := merged.Filters["city"]; ok {
		t.Error("expected nil value slice to remove the field")
	}
	if got := merged.Filters["segment"]; !reflect.DeepEqual(got, []string{"retail"}) {
		t.Errorf("expected segment added, got %v", got)
	}
	if merged.Pagination.Page != 1 {
		t.Errorf("expected filter change to reset to page 1, got %d", merged.Pagination.Page)
	}
	if merged.Sort.Field != "name" || merged.Search != "acme" {
		t.Error("expected sort and search untouched by filter changes")
	}

	// base must not be mutated
	if !reflect.DeepEqual(base.Filters["status"], []string{"active"}) {
		t.Error("expected Merge to leave the receiver unchanged")
	}
}

func TestDescriptor_WithPage(t *testing.T) {
	base := Descriptor{
		Filters:    map[string][]string{"status": {"active"}},
		Sort:       Sort{Field: "name", Order: SortDesc},
		Search:     "harbor",
		Pagination: Pagination{Page: 1, PerPage: 25},
	}

	paged := base.WithPage(3)
	if paged.Pagination.Page != 3 {
		t.Errorf("expected page 3, got %d", paged.Pagination.Page)
	}
	if !reflect.DeepEqual(paged.Filters, base.Filters) || paged.Sort != base.Sort || paged.Search != base.Search {
		t.Error("expected pagination change to preserve filters, sort, and search")
	}
}

func TestDescriptor_WithSortResetsPage(t *testing.T) {
	base := Descriptor{Pagination: Pagination{Page: 5, PerPage: 25}}

	sorted := base.WithSort("value", SortDesc)
	if sorted.Sort != (Sort{Field: "value", Order: SortDesc}) {
		t.Errorf("unexpected sort: %+v", sorted.Sort)
	}
	if sorted.Pagination.Page != 1 {
		t.Errorf("expected sort change to reset to page 1, got %d", sorted.Pagination.Page)
	}
}

func TestDescriptor_WithoutFilters(t *testing.T) {
	base := Descriptor{
		Filters:    map[string][]string{"status": {"active"}},
		Sort:       Sort{Field: "name", Order: SortAsc},
		Search:     "acme",
		Pagination: Pagination{Page: 2, PerPage: 25},
	}

	cleared := base.WithoutFilters()
	if cleared.Filters != nil {
		t.Errorf("expected filters cleared, got %v", cleared.Filters)
	}
	if cleared.Search != "" {
		t.Errorf("expected search cleared, got %q", cleared.Search)
	}
	if cleared.Sort.Field != "name" {
		t.Error("expected sort preserved")
	}
	if cleared.Pagination.Page != 1 {
		t.Errorf("expected page reset, got %d", cleared.Pagination.Page)
	}
}

func TestPagination_Offset(t *testing.T) {
	tests := []struct {
		page, perPage, expected int
	}{
		{1, 25, 0},
		{2, 25, 25},
		{4, 10, 30},
	}
	for _, tt := range tests {
		p := Pagination{Page: tt.page, PerPage: tt.perPage}
		if got := p.Offset(); got != tt.expected {
			t.Errorf("Offset(page=%d, perPage=%d) = %d, expected %d", tt.page, tt.perPage, got, tt.expected)
		}
	}
}
