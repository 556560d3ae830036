package internal

import (
	"cmp"
	"iter"
	"slices"
)

// ConcatSeq2 yields every pair of each sequence in turn.
func ConcatSeq2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for k, v := range seq {
				if !yield(k, v) {
					return
				}
			}
		}
	}
}

// SortedSeq2 yields the pairs of seq ordered by key.
// Later duplicates of a key replace earlier ones.
func SortedSeq2[K cmp.Ordered, V any](seq iter.Seq2[K, V]) iter.Seq2[K, V] {
	merged := map[K]V{}
	for k, v := range seq {
		merged[k] = v
	}

	keys := make([]K, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return func(yield func(K, V) bool) {
		for _, k := range keys {
			if !yield(k, merged[k]) {
				return
			}
		}
	}
}
