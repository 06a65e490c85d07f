// Package query defines the canonical query descriptor and cache key
// derivation.
//
// A Descriptor captures filters, sort, pagination, and a search term in a
// form that is order-independent: normalizing it drops empty fields and sorts
// multi-value filters, so {status: [A, B]} and {status: [B, A]}, or a filter
// set built in a different map order, always serialize identically.
//
// The Composer is the single place keys come from:
//
//	composer := query.NewComposer("organizations")
//	key, normalized, err := composer.Canonicalize(query.Descriptor{
//		Filters:    map[string][]string{"status": {"active"}},
//		Pagination: query.Pagination{Page: 2, PerPage: 25},
//	})
//
// Pagination is part of the key (different pages cache separately), while the
// WithPage helper guarantees paging never resets filters. Keys are the
// xxhash of the canonical serialization, namespaced per entity kind, so a
// whole namespace can be invalidated by prefix.
package query
