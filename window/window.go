// Package window computes which rows of a long bundle index have to be
// materialized for a given scroll position.
package window

import (
	"math"
)

// Window is a contiguous range of item indices [StartIndex, EndIndex) plus
// spacer sizes standing in for items which are not materialized.
type Window struct {
	StartIndex    int     `json:"start" yaml:"start"`
	EndIndex      int     `json:"end" yaml:"end"`
	TopPadding    float64 `json:"top" yaml:"top"`
	BottomPadding float64 `json:"bottom" yaml:"bottom"`
}

// Len returns number of items in the window.
func (w Window) Len() int {
	return w.EndIndex - w.StartIndex
}

// Contains reports whether item i is to be materialized.
func (w Window) Contains(i int) bool {
	return i >= w.StartIndex && i < w.EndIndex
}

// Compute returns window for totalItems items of itemHeight each. It never
// fails: non-finite and negative inputs are clamped to the nearest valid
// bound, zero or malformed item height is treated as one unit.
func Compute(totalItems int, itemHeight, scrollOffset, viewportHeight float64, overscan int) Window {
	totalItems = max(totalItems, 0)
	overscan = max(overscan, 0)
	if !(itemHeight > 0) || math.IsInf(itemHeight, 0) {
		itemHeight = 1
	}
	extent := float64(totalItems) * itemHeight
	scrollOffset = clamp(scrollOffset, 0, extent)
	viewportHeight = clamp(viewportHeight, 0, extent)

	start := max(0, int(math.Floor(scrollOffset/itemHeight))-overscan)
	start = min(start, totalItems)
	visible := int(math.Ceil(viewportHeight / itemHeight))
	end := min(totalItems, start+visible+2*overscan)

	return Window{
		StartIndex:    start,
		EndIndex:      end,
		TopPadding:    float64(start) * itemHeight,
		BottomPadding: max(0, float64(totalItems-end)*itemHeight),
	}
}

// Materialize calls build for window items only and returns results in
// index order. Items outside of window are never constructed.
func Materialize[T any](w Window, build func(i int) T) []T {
	if w.Len() <= 0 {
		return nil
	}
	out := make([]T, 0, w.Len())
	for i := w.StartIndex; i < w.EndIndex; i++ {
		out = append(out, build(i))
	}
	return out
}

// Extent returns full scrollable height reconstructed from spacers and the
// height of materialized items.
func Extent(w Window, rendered float64) float64 {
	return w.TopPadding + rendered + w.BottomPadding
}

// clamp also maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v) || v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
