package window

import (
	"math"
	"sort"
)

// Layout keeps item heights of a layout-variable container: every item has
// estimated height until real one is measured.
type Layout struct {
	estimate float64
	heights  []float64 // 0 when not measured
	offsets  []float64 // offsets[i] is top of item i, len(heights)+1 values
	dirty    bool
}

// NewLayout returns layout of total items of estimated height.
func NewLayout(total int, estimate float64) *Layout {
	if !(estimate > 0) || math.IsInf(estimate, 0) {
		estimate = 1
	}
	return &Layout{
		estimate: estimate,
		heights:  make([]float64, max(total, 0)),
		dirty:    true,
	}
}

// Len returns number of items.
func (l *Layout) Len() int {
	return len(l.heights)
}

// Resize changes number of items keeping measurements of the ones which
// remain.
func (l *Layout) Resize(total int) {
	total = max(total, 0)
	if total <= len(l.heights) {
		l.heights = l.heights[:total]
	} else {
		l.heights = append(l.heights, make([]float64, total-len(l.heights))...)
	}
	l.dirty = true
}

// SetEstimate changes height assumed for items not measured yet.
func (l *Layout) SetEstimate(estimate float64) {
	if !(estimate > 0) || math.IsInf(estimate, 0) || estimate == l.estimate {
		return
	}
	l.estimate = estimate
	l.dirty = true
}

// Set records measured height of item i. Out of range indices and malformed
// heights are ignored, it returns true when layout changed.
func (l *Layout) Set(i int, height float64) bool {
	if i < 0 || i >= len(l.heights) || !(height > 0) || math.IsInf(height, 0) {
		return false
	}
	if l.heights[i] == height {
		return false
	}
	l.heights[i] = height
	l.dirty = true
	return true
}

// Height returns measured or estimated height of item i.
func (l *Layout) Height(i int) float64 {
	if h := l.heights[i]; h > 0 {
		return h
	}
	return l.estimate
}

func (l *Layout) build() {
	if !l.dirty {
		return
	}
	if cap(l.offsets) < len(l.heights)+1 {
		l.offsets = make([]float64, len(l.heights)+1)
	}
	l.offsets = l.offsets[:len(l.heights)+1]
	l.offsets[0] = 0
	for i := range l.heights {
		l.offsets[i+1] = l.offsets[i] + l.Height(i)
	}
	l.dirty = false
}

// Offset returns top of item i, Offset(Len()) is the full extent.
func (l *Layout) Offset(i int) float64 {
	l.build()
	return l.offsets[min(max(i, 0), len(l.heights))]
}

// Extent returns full scrollable height.
func (l *Layout) Extent() float64 {
	return l.Offset(len(l.heights))
}

// IndexAt returns index of item covering offset, Len() past the end.
func (l *Layout) IndexAt(offset float64) int {
	l.build()
	n := len(l.heights)
	// first item whose bottom is below offset
	return sort.Search(n, func(i int) bool { return l.offsets[i+1] > offset })
}

// ComputeLayout is Compute for items of varying height. Visible count is
// the number of items needed to cover viewport starting with the item at
// scroll offset, so with equal heights the result is the same as Compute.
func ComputeLayout(l *Layout, scrollOffset, viewportHeight float64, overscan int) Window {
	total := l.Len()
	overscan = max(overscan, 0)
	extent := l.Extent()
	scrollOffset = clamp(scrollOffset, 0, extent)
	viewportHeight = clamp(viewportHeight, 0, extent)

	first := l.IndexAt(scrollOffset)
	start := min(max(0, first-overscan), total)
	visible := sort.Search(total-first, func(k int) bool {
		return l.offsets[first+k]-l.offsets[first] >= viewportHeight
	})
	end := min(total, start+visible+2*overscan)

	return Window{
		StartIndex:    start,
		EndIndex:      end,
		TopPadding:    l.Offset(start),
		BottomPadding: max(0, extent-l.Offset(end)),
	}
}
