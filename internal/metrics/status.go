package metrics

import (
	"cmp"
	"slices"
)

// StatusBucket is the count of responses for one status code.
type StatusBucket struct {
	Code  int
	Class Class
	Count int
}

// FlattenStatusCodes lists codes most frequent first; equal counts keep
// ascending code order.
func FlattenStatusCodes(codes map[int]int) []StatusBucket {
	if len(codes) == 0 {
		return nil
	}
	rows := make([]StatusBucket, 0, len(codes))
	for code, n := range codes {
		rows = append(rows, StatusBucket{Code: code, Class: Classify(OK(code, 0)), Count: n})
	}
	slices.SortFunc(rows, func(a, b StatusBucket) int {
		return cmp.Or(cmp.Compare(b.Count, a.Count), cmp.Compare(a.Code, b.Code))
	})
	return rows
}
