package bundle

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"cbundle/utils/debug"
)

// Output formats of index command.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

func writeView(w io.Writer, v *View, format string) error {
	switch strings.ToLower(format) {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("unable to encode index: %w", err)
		}
		return enc.Close()
	case FormatText, "":
	default:
		return fmt.Errorf("unknown output format %q, try [%s, %s]", format, FormatText, FormatYAML)
	}

	fmt.Fprintf(w, "%s: %d page(s), table of contents %d page(s)\n\n", v.Case, v.Total, v.TOCPages)
	if err := writeRanges(w, v); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if _, err := w.Write(sectionTree(v).Bytes()); err != nil {
		return err
	}
	fmt.Fprintln(w)
	if err := writeTOC(w, v); err != nil {
		return err
	}
	if len(v.Stamps) > 0 {
		fmt.Fprintln(w)
		for i, s := range v.Stamps {
			fmt.Fprintf(w, "%5d  %s\n", v.TOCPages+i+1, s)
		}
	}
	return nil
}

func writeRanges(w io.Writer, v *View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tID\tTYPE\tPAGES\tRANGE\tDESCRIPTION")
	for i := range v.Entries {
		e := &v.Entries[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d-%d\t%s\n", i+1, e.ID, e.RowType, e.PageCount, e.PageStart, e.PageEnd, e.Description())
	}
	return tw.Flush()
}

// sectionTree renders section groups with their members, page numbers are
// relative to the first document page.
func sectionTree(v *View) *debug.TreeWriter {
	tw := debug.NewTreeWriter()
	tw.Line(0, "Sections")
	for i := range v.groups {
		g := &v.groups[i]
		label := g.Label
		if g.Root {
			label = "(before first section)"
		}
		tw.Range(1, label, g.StartPage, g.EndPage)
		for _, e := range g.Members() {
			tw.Range(2, e.Description(), e.PageStart, e.PageEnd)
			if len(e.Content) > 0 {
				tw.TextBlock(3, "content", e.Content)
			}
		}
	}
	return tw
}

func writeTOC(w io.Writer, v *View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TAB\tDESCRIPTION\tPAGES\tCOUNT")
	for _, row := range v.TOC {
		pages := row.StartLabel
		if row.EndLabel != row.StartLabel {
			pages += "-" + row.EndLabel
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", row.Label, row.Description, pages, row.PageCount)
	}
	return tw.Flush()
}
