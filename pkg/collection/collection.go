// Package collection provides the generic slice helpers the app layer
// projects and orders with.
package collection

import "sort"

// Map applies fn to every element and returns the results. The result is
// never nil, so callers can JSON-encode it directly.
func Map[T, R any](s []T, fn func(T) R) []R {
	out := make([]R, 0, len(s))
	for _, item := range s {
		out = append(out, fn(item))
	}
	return out
}

// SortBy returns a sorted copy; the input is left untouched.
func SortBy[T any](s []T, less func(a, b T) bool) []T {
	out := make([]T, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
