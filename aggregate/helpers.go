package aggregate

import "sort"

// Rate returns num/den as a ratio, or 0 when the denominator is zero. A rate
// over an empty population is 0, not NaN.
func Rate(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Average returns sum/count, or 0 when count is zero.
func Average(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// CountBy builds a distribution of occurrences per value.
func CountBy(values []string) map[string]int {
	dist := make(map[string]int, len(values))
	for _, v := range values {
		dist[v]++
	}
	return dist
}

// TopN returns the n highest-ranked items without mutating the input. The
// less function reports whether a ranks below b; ties keep input order.
func TopN[T any](items []T, n int, less func(a, b T) bool) []T {
	if n <= 0 || len(items) == 0 {
		return nil
	}

	ranked := append([]T(nil), items...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[j], ranked[i])
	})

	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
