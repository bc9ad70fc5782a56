// Package chkconfig manages boolean configuration flags backed by plain
// files.
//
// Each flag is one regular file named after the flag itself, living in a
// read/write "state" directory or, optionally, in a read-only "default"
// directory consulted as a fallback. The file content is the keyword "on"
// or "off"; a zero-length file reads as off. File presence and location
// determine the Origin of a resolved value.
//
// The package never logs; callers translate errors into whatever output
// suits them.
package chkconfig

import (
	"sort"
	"strings"
)

// A FlagState pairs a flag name with its resolved state and the origin
// the state came from.
type FlagState struct {
	Flag   string
	State  bool
	Origin Origin
}

// CompareByFlag orders two tuples byte-lexicographically by flag name.
// It returns a negative number when a sorts before b, zero when the flag
// names are equal, and a positive number otherwise.
func CompareByFlag(a, b FlagState) int {
	return strings.Compare(a.Flag, b.Flag)
}

// CompareByState orders two tuples by state as the primary key, such that
// on / true sorts before off / false, breaking ties with CompareByFlag.
func CompareByState(a, b FlagState) int {
	if a.State != b.State {
		if a.State {
			return -1
		}
		return 1
	}
	return CompareByFlag(a, b)
}

// SortByFlag sorts tuples in place by flag name.
func SortByFlag(tuples []FlagState) {
	sort.Slice(tuples, func(i, j int) bool {
		return CompareByFlag(tuples[i], tuples[j]) < 0
	})
}

// SortByState sorts tuples in place by state, on / true first, then by
// flag name.
func SortByState(tuples []FlagState) {
	sort.Slice(tuples, func(i, j int) bool {
		return CompareByState(tuples[i], tuples[j]) < 0
	})
}

// unionByFlag merges two slices already sorted by flag name into their
// union, keyed by flag name and itself sorted by flag name. When both
// slices contain the same flag, the left tuple wins and the right
// duplicate is dropped.
func unionByFlag(left, right []FlagState) []FlagState {
	union := make([]FlagState, 0, len(left)+len(right))

	var i, j int
	for i < len(left) && j < len(right) {
		switch c := CompareByFlag(left[i], right[j]); {
		case c < 0:
			union = append(union, left[i])
			i++
		case c > 0:
			union = append(union, right[j])
			j++
		default:
			union = append(union, left[i])
			i++
			j++
		}
	}
	union = append(union, left[i:]...)
	union = append(union, right[j:]...)

	return union
}
