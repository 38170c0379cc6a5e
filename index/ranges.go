package index

import (
	"cmp"
	"slices"
)

// ComputePageRanges assigns global page numbers to a sequence of entries.
// Entries are walked in SequenceOrder with a running cursor starting at 1, so
// that ranges tile [1, total] without gaps or overlaps. Input is never
// modified, returned slice is a fresh annotated copy. Total is 0 for an empty
// sequence.
func ComputePageRanges(entries []IndexEntry) ([]IndexEntry, int) {
	if len(entries) == 0 {
		return []IndexEntry{}, 0
	}

	ranged := slices.Clone(entries)
	if !slices.IsSortedFunc(ranged, bySequence) {
		slices.SortStableFunc(ranged, bySequence)
	}

	cursor := 1
	for i := range ranged {
		ranged[i].PageStart = cursor
		ranged[i].PageEnd = cursor + ranged[i].PageCount - 1
		cursor = ranged[i].PageEnd + 1
	}
	return ranged, ranged[len(ranged)-1].PageEnd
}

func bySequence(a, b IndexEntry) int {
	return cmp.Compare(a.SequenceOrder, b.SequenceOrder)
}

// EntryAtPage returns position of the entry which contains global page number
// in ranged sequence, or -1.
func EntryAtPage(ranged []IndexEntry, page int) int {
	i, found := slices.BinarySearchFunc(ranged, page, func(e IndexEntry, p int) int {
		switch {
		case e.PageEnd < p:
			return -1
		case e.PageStart > p:
			return 1
		}
		return 0
	})
	if !found {
		return -1
	}
	return i
}
