// Package groupby groups runs of adjacent items in a sequence.
//
// Grouping is adjacency-based: an item joins the current group when the
// predicate holds between it and its immediate left neighbor. Equal items
// separated by a non-matching item land in different groups.
package groupby

import "iter"

// By returns the maximal runs of seq in which every item satisfies
// same(prev, next) with the item before it.
//
// The returned sequence is lazy and holds at most one item of lookahead.
// Each range over it restarts from seq, so it is as restartable as seq is.
func By[T any](seq iter.Seq[T], same func(prev, next T) bool) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		var group []T
		for item := range seq {
			if len(group) > 0 && !same(group[len(group)-1], item) {
				if !yield(group) {
					return
				}
				group = nil
			}
			group = append(group, item)
		}
		if len(group) > 0 {
			yield(group)
		}
	}
}

// First keeps the first item of every group.
func First[T any](groups iter.Seq[[]T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for g := range groups {
			if !yield(g[0]) {
				return
			}
		}
	}
}
