// Package estimate converts rendered height of editable bundle pages into
// page counts and keeps the entry store informed about them.
package estimate

import (
	"math"

	"cbundle/index"
)

// Default page geometry: A4 at 96 dpi with header and footer reserve.
const (
	DefaultPageHeight = 1123.0
	DefaultPageMargin = 96.0
)

// EstimatePageCount returns number of pages content of measured height
// occupies when every page has pageHeight units of which margin is reserved
// for header and footer. Content fitting a single usable page always counts
// as one page.
func EstimatePageCount(measuredHeight, pageHeight, margin float64) (int, error) {
	if math.IsNaN(measuredHeight) || math.IsInf(measuredHeight, 0) {
		return 0, &index.MeasurementError{Value: measuredHeight, Reason: "height is not finite"}
	}
	if measuredHeight < 0 {
		return 0, &index.MeasurementError{Value: measuredHeight, Reason: "height is negative"}
	}
	usable := pageHeight - margin
	if math.IsNaN(usable) || math.IsInf(usable, 0) || usable <= 0 {
		return 0, &index.MeasurementError{Value: measuredHeight, Reason: "page geometry leaves no room for content"}
	}
	if measuredHeight <= usable {
		return 1, nil
	}
	pages := math.Ceil(measuredHeight / usable)
	if pages > math.MaxInt32 {
		return 0, &index.MeasurementError{Value: measuredHeight, Reason: "height is out of range"}
	}
	return int(pages), nil
}
