package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Composer turns descriptors into canonical cache keys under a namespace,
// typically one namespace per entity kind. Key derivation happens in exactly
// one place so equivalent filter objects can never diverge at call sites.
type Composer struct {
	namespace string
}

// NewComposer creates a Composer for the given namespace.
func NewComposer(namespace string) Composer {
	return Composer{namespace: ToSnake(namespace)}
}

// Namespace returns the normalized namespace this composer keys under.
func (c Composer) Namespace() string {
	return c.namespace
}

// Canonicalize normalizes and validates the descriptor, then derives its
// cache key. Reordered-but-equal parameter sets collapse to the same key;
// different pages are different keys.
func (c Composer) Canonicalize(d Descriptor) (string, Descriptor, error) {
	normalized := d.Normalize()
	if err := normalized.Validate(); err != nil {
		return "", Descriptor{}, err
	}

	sum := xxhash.Sum64String(CanonicalString(normalized))
	key := c.namespace + KeySeparator + "list" + KeySeparator + strconv.FormatUint(sum, 16)
	return key, normalized, nil
}

// RecordKey derives the cache key for a single-record lookup.
func (c Composer) RecordKey(id string) string {
	return c.namespace + KeySeparator + "get" + KeySeparator + id
}

// MetricsKey derives the cache key for this namespace's aggregate view.
func (c Composer) MetricsKey() string {
	return c.namespace + KeySeparator + "metrics"
}

// Prefix returns the key prefix shared by every key this composer derives,
// used to invalidate a whole namespace at once.
func (c Composer) Prefix() string {
	return c.namespace + KeySeparator
}

// ListPrefix returns the key prefix shared by every list key.
func (c Composer) ListPrefix() string {
	return c.namespace + KeySeparator + "list" + KeySeparator
}

// CanonicalString renders a normalized descriptor as a deterministic string.
// Filter fields are emitted in sorted order so that map iteration order never
// leaks into the key, and each value is quoted so a value containing the
// separator cannot masquerade as a value list. Exposed for tests and
// debugging; cache keys hash it.
func CanonicalString(d Descriptor) string {
	var b strings.Builder

	fields := make([]string, 0, len(d.Filters))
	for field := range d.Filters {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	b.WriteString("filters{")
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(field)
		b.WriteString("=[")
		for j, value := range d.Filters[field] {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Quote(value))
		}
		b.WriteString("]")
	}
	b.WriteString("}")

	b.WriteString(";sort=")
	if d.Sort.Field != "" {
		b.WriteString(d.Sort.Field)
		b.WriteByte(':')
		b.WriteString(string(d.Sort.Order))
	}

	b.WriteString(";page=")
	b.WriteString(strconv.Itoa(d.Pagination.Page))
	b.WriteString(";per_page=")
	b.WriteString(strconv.Itoa(d.Pagination.PerPage))

	b.WriteString(";search=")
	b.WriteString(d.Search)

	return b.String()
}
