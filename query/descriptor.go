package query

import (
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SortOrder is the direction of a sort clause.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// DefaultPerPage is the page size applied when a descriptor does not set one.
const DefaultPerPage = 25

// MaxPerPage caps the page size a descriptor may request.
const MaxPerPage = 500

// Sort describes a single ordering clause. A zero Sort means source order.
type Sort struct {
	Field string
	Order SortOrder
}

// Validate checks the sort clause. An empty field is valid (no sorting).
func (s Sort) Validate() error {
	if s.Field == "" {
		return nil
	}
	return validation.ValidateStruct(&s,
		validation.Field(&s.Order, validation.Required, validation.In(SortAsc, SortDesc)),
	)
}

// Pagination selects one page of a result set. Pages are 1-based.
type Pagination struct {
	Page    int
	PerPage int
}

// Validate checks the pagination bounds.
func (p Pagination) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Page, validation.Required, validation.Min(1)),
		validation.Field(&p.PerPage, validation.Required, validation.Min(1), validation.Max(MaxPerPage)),
	)
}

// Offset returns the row offset for this page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Descriptor is the canonical, order-independent representation of a query:
// filters, sort, pagination, and a free-text search term. It is both the seed
// for cache keys and the request handed to data sources.
//
// Multi-value filters are order-independent: {status: [A, B]} and
// {status: [B, A]} normalize to the same descriptor. Call sites that need an
// order-sensitive filter must encode the order into the values themselves.
type Descriptor struct {
	Filters    map[string][]string
	Sort       Sort
	Pagination Pagination
	Search     string
}

// Validate checks the descriptor after normalization. A descriptor that
// fails validation is a caller contract violation, not a cache miss.
func (d Descriptor) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Sort),
		validation.Field(&d.Pagination),
	)
}

// Normalize returns a copy with empty filter fields dropped, multi-value
// filters sorted, the search term trimmed, and pagination defaulted. Two
// logically-equal descriptors normalize to identical values, which is what
// makes key derivation deterministic.
func (d Descriptor) Normalize() Descriptor {
	out := Descriptor{
		Sort:       d.Sort,
		Pagination: d.Pagination,
		Search:     strings.TrimSpace(d.Search),
	}

	if out.Sort.Field != "" && out.Sort.Order == "" {
		out.Sort.Order = SortAsc
	}
	if out.Sort.Field == "" {
		out.Sort.Order = ""
	}

	if out.Pagination.Page < 1 {
		out.Pagination.Page = 1
	}
	if out.Pagination.PerPage < 1 {
		out.Pagination.PerPage = DefaultPerPage
	}

	for field, values := range d.Filters {
		kept := make([]string, 0, len(values))
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				continue
			}
			kept = append(kept, v)
		}
		if field == "" || len(kept) == 0 {
			continue
		}
		sort.Strings(kept)
		if out.Filters == nil {
			out.Filters = make(map[string][]string)
		}
		out.Filters[field] = kept
	}

	return out
}

// Merge overlays partial filters onto the descriptor and resets pagination to
// the first page; a nil value slice removes the field. Sort and search are
// untouched, so filter changes never reset them.
func (d Descriptor) Merge(partial map[string][]string) Descriptor {
	out := d.clone()
	if out.Filters == nil {
		out.Filters = make(map[string][]string)
	}
	for field, values := range partial {
		if values == nil {
			delete(out.Filters, field)
			continue
		}
		out.Filters[field] = append([]string(nil), values...)
	}
	out.Pagination.Page = 1
	return out
}

// WithPage returns a copy positioned on page n. Filters, sort, and search are
// preserved; pagination changes never reset them.
func (d Descriptor) WithPage(n int) Descriptor {
	out := d.clone()
	out.Pagination.Page = n
	return out
}

// WithSort returns a copy ordered by the given field and direction, reset to
// the first page.
func (d Descriptor) WithSort(field string, order SortOrder) Descriptor {
	out := d.clone()
	out.Sort = Sort{Field: field, Order: order}
	out.Pagination.Page = 1
	return out
}

// WithSearch returns a copy with the search term replaced, reset to the first
// page.
func (d Descriptor) WithSearch(term string) Descriptor {
	out := d.clone()
	out.Search = term
	out.Pagination.Page = 1
	return out
}

// WithoutFilters returns a copy with all filters and the search term cleared.
func (d Descriptor) WithoutFilters() Descriptor {
	out := d.clone()
	out.Filters = nil
	out.Search = ""
	out.Pagination.Page = 1
	return out
}

func (d Descriptor) clone() Descriptor {
	out := d
	if d.Filters != nil {
		out.Filters = make(map[string][]string, len(d.Filters))
		for field, values := range d.Filters {
			out.Filters[field] = append([]string(nil), values...)
		}
	}
	return out
}
