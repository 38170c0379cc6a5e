package index

// SectionGroup is a run of entries opened by a section break. The implicit
// root group (entries before the first break) has no label and no break.
type SectionGroup struct {
	Label     string
	Root      bool
	StartPage int
	EndPage   int
	// Section break, when present, is always the first member.
	Entries []IndexEntry
}

// Break returns section break opening the group, nil for root group.
func (g *SectionGroup) Break() *IndexEntry {
	if g.Root || len(g.Entries) == 0 {
		return nil
	}
	return &g.Entries[0]
}

// Members returns entries of the group excluding the break itself.
func (g *SectionGroup) Members() []IndexEntry {
	if g.Root {
		return g.Entries
	}
	return g.Entries[1:]
}

// PageCount returns number of pages covered by the group.
func (g *SectionGroup) PageCount() int {
	if len(g.Entries) == 0 {
		return 0
	}
	return g.EndPage - g.StartPage + 1
}

// GroupBySections splits ranged sequence into sections. Membership is purely
// positional: every entry belongs to the closest preceding section break.
// Root group is emitted only if something precedes the first break, sections
// are emitted even when they hold nothing but the break.
func GroupBySections(ranged []IndexEntry) []SectionGroup {
	var groups []SectionGroup
	cur := -1
	for _, e := range ranged {
		if e.IsSectionBreak() {
			groups = append(groups, SectionGroup{
				Label:     e.SectionLabel,
				StartPage: e.PageStart,
				EndPage:   e.PageEnd,
				Entries:   []IndexEntry{e},
			})
			cur = len(groups) - 1
			continue
		}
		if cur < 0 {
			groups = append(groups, SectionGroup{Root: true, StartPage: e.PageStart})
			cur = len(groups) - 1
		}
		groups[cur].Entries = append(groups[cur].Entries, e)
		groups[cur].EndPage = e.PageEnd
	}
	return groups
}

// SectionAt returns index of the group containing global page, or -1.
func SectionAt(groups []SectionGroup, page int) int {
	for i := range groups {
		if len(groups[i].Entries) > 0 && groups[i].StartPage <= page && page <= groups[i].EndPage {
			return i
		}
	}
	return -1
}
