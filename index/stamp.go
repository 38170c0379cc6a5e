package index

import (
	"strconv"

	"cbundle/common"
)

// FormatStamp returns text stamped on a bundle page.
func FormatStamp(format common.StampFormat, page PageLabel, total int) string {
	switch format {
	case common.StampFormatPage:
		return "Page " + page.String()
	case common.StampFormatNumber:
		return page.String()
	default:
		return "Page " + page.String() + " of " + strconv.Itoa(total)
	}
}

// Stamps returns stamp text for every page of ranged sequence. Total printed
// on the pages is the number of regular (not sub-numbered) pages plus offset.
func Stamps(ranged []IndexEntry, format common.StampFormat, mode common.LateInsertMode, late map[string]bool, offset int) []string {
	labels := LabelPages(ranged, mode, late, offset)
	total := offset
	for _, l := range labels {
		if l.Suffix == 0 {
			total = l.Base
		}
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, FormatStamp(format, l, total))
	}
	return out
}
