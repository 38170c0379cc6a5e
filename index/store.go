package index

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"cbundle/common"
)

// ChangeKind tells subscribers what kind of mutation happened.
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota
	ChangeRemove
	ChangeReorder
	ChangePageCount
	ChangeContent
	ChangeLoad
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInsert:
		return "insert"
	case ChangeRemove:
		return "remove"
	case ChangeReorder:
		return "reorder"
	case ChangePageCount:
		return "page-count"
	case ChangeContent:
		return "content"
	case ChangeLoad:
		return "load"
	}
	return "unknown"
}

// Change is emitted once per successful mutation. IDs lists entries whose
// stored fields changed. Derived ranges of the whole case are stale after any
// change.
type Change struct {
	CaseID string
	Kind   ChangeKind
	IDs    []string
}

// slot is the ordering key kept in the tree, the entry itself lives in the
// arena map.
type slot struct {
	caseID string
	seq    int64
	id     string
}

func slotLess(a, b slot) bool {
	if a.caseID != b.caseID {
		return a.caseID < b.caseID
	}
	return a.seq < b.seq
}

// Store is the single source of truth for bundle entries of any number of
// cases: an arena of entries keyed by id and a tree ordered by
// (case, sequence order). Safe for concurrent use, subscribers are called
// synchronously after the store lock is released.
type Store struct {
	mu      sync.Mutex
	log     *zap.Logger
	entries map[string]*IndexEntry
	order   *btree.BTreeG[slot]
	subs    map[int]func(Change)
	nextSub int
	now     func() time.Time
}

// NewStore creates an empty store.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		log:     log.Named("store"),
		entries: make(map[string]*IndexEntry),
		order:   btree.NewG(16, slotLess),
		subs:    make(map[int]func(Change)),
		now:     time.Now,
	}
}

// Subscribe registers change listener. Returned function removes it.
func (s *Store) Subscribe(fn func(Change)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// unlockAndEmit releases store lock and delivers change to subscribers in
// registration order.
func (s *Store) unlockAndEmit(ch Change) {
	keys := make([]int, 0, len(s.subs))
	for k := range s.subs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	listeners := make([]func(Change), 0, len(keys))
	for _, k := range keys {
		listeners = append(listeners, s.subs[k])
	}
	s.mu.Unlock()

	s.log.Debug("Store changed", zap.String("case", ch.CaseID), zap.Stringer("kind", ch.Kind), zap.Strings("ids", ch.IDs))
	for _, fn := range listeners {
		fn(ch)
	}
}

// caseSlots returns slots of a case in sequence order. Must be called with
// lock held.
func (s *Store) caseSlots(caseID string) []slot {
	var out []slot
	s.order.AscendGreaterOrEqual(slot{caseID: caseID, seq: math.MinInt64}, func(it slot) bool {
		if it.caseID != caseID {
			return false
		}
		out = append(out, it)
		return true
	})
	return out
}

func (s *Store) lastSlot(caseID string) (slot, bool) {
	var (
		last  slot
		found bool
	)
	s.order.DescendLessOrEqual(slot{caseID: caseID, seq: math.MaxInt64}, func(it slot) bool {
		if it.caseID == caseID {
			last, found = it, true
		}
		return false
	})
	return last, found
}

// List returns entries of a case ordered by sequence order.
func (s *Store) List(caseID string) []IndexEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.list(caseID)
}

func (s *Store) list(caseID string) []IndexEntry {
	slots := s.caseSlots(caseID)
	out := make([]IndexEntry, 0, len(slots))
	for _, sl := range slots {
		out = append(out, *s.entries[sl.id])
	}
	return out
}

// Ranges returns entries of a case annotated with global page ranges and
// total number of pages in the bundle.
func (s *Store) Ranges(caseID string) ([]IndexEntry, int) {
	return ComputePageRanges(s.List(caseID))
}

// Get returns a copy of stored entry.
func (s *Store) Get(id string) (IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return IndexEntry{}, &NotFoundError{ID: id}
	}
	return *e, nil
}

// Cases returns ids of all cases which have entries, sorted.
func (s *Store) Cases() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	s.order.Ascend(func(it slot) bool {
		if len(out) == 0 || out[len(out)-1] != it.caseID {
			out = append(out, it.caseID)
		}
		return true
	})
	return out
}

// Len returns number of entries across all cases.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// prepare fills defaults for a new entry.
func (s *Store) prepare(op string, e *IndexEntry) error {
	if len(e.ID) == 0 {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		e.ID = id.String()
	}
	if e.PageCount < 0 {
		return validationErr(op, "entry %q has negative page count %d", e.ID, e.PageCount)
	}
	if e.PageCount == 0 {
		e.PageCount = 1
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	e.PageStart, e.PageEnd = 0, 0
	if err := e.validate(op); err != nil {
		return err
	}
	if _, exists := s.entries[e.ID]; exists {
		return validationErr(op, "entry %q already exists", e.ID)
	}
	return nil
}

func (s *Store) put(e *IndexEntry) {
	s.entries[e.ID] = e
	s.order.ReplaceOrInsert(slot{caseID: e.CaseID, seq: e.SequenceOrder, id: e.ID})
}

func (s *Store) move(e *IndexEntry, seq int64) {
	s.order.Delete(slot{caseID: e.CaseID, seq: e.SequenceOrder})
	e.SequenceOrder = seq
	s.order.ReplaceOrInsert(slot{caseID: e.CaseID, seq: seq, id: e.ID})
}

// Insert appends entry at the end of its case sequence. Empty id is
// generated, zero page count defaults to 1.
func (s *Store) Insert(e IndexEntry) (IndexEntry, error) {
	const op = "insert"

	s.mu.Lock()
	if err := s.prepare(op, &e); err != nil {
		s.mu.Unlock()
		return IndexEntry{}, err
	}
	e.SequenceOrder = 0
	if last, ok := s.lastSlot(e.CaseID); ok {
		e.SequenceOrder = last.seq + 1
	}
	s.put(&e)
	s.unlockAndEmit(Change{CaseID: e.CaseID, Kind: ChangeInsert, IDs: []string{e.ID}})
	return e, nil
}

// InsertAt places entry at position (0 based) in its case sequence. Position
// equal to the number of entries appends. When there is no free sequence
// value between neighbours the trailing entries are shifted.
func (s *Store) InsertAt(e IndexEntry, position int) (IndexEntry, error) {
	const op = "insert"

	s.mu.Lock()
	if err := s.prepare(op, &e); err != nil {
		s.mu.Unlock()
		return IndexEntry{}, err
	}
	slots := s.caseSlots(e.CaseID)
	if position < 0 || position > len(slots) {
		s.mu.Unlock()
		return IndexEntry{}, validationErr(op, "position %d is out of range [0, %d]", position, len(slots))
	}

	ids := []string{e.ID}
	switch {
	case len(slots) == 0:
		e.SequenceOrder = 0
	case position == len(slots):
		e.SequenceOrder = slots[len(slots)-1].seq + 1
	case position == 0:
		e.SequenceOrder = slots[0].seq - 1
	default:
		prev, next := slots[position-1].seq, slots[position].seq
		if next-prev >= 2 {
			e.SequenceOrder = prev + (next-prev)/2
			break
		}
		// no room, shift tail starting from the end so keys never collide
		for i := len(slots) - 1; i >= position; i-- {
			moved := s.entries[slots[i].id]
			s.move(moved, moved.SequenceOrder+1)
			ids = append(ids, moved.ID)
		}
		e.SequenceOrder = next
	}
	s.put(&e)
	s.unlockAndEmit(Change{CaseID: e.CaseID, Kind: ChangeInsert, IDs: ids})
	return e, nil
}

// Remove deletes entry. Sequence order of remaining entries is left as is.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	s.order.Delete(slot{caseID: e.CaseID, seq: e.SequenceOrder})
	delete(s.entries, id)
	s.unlockAndEmit(Change{CaseID: e.CaseID, Kind: ChangeRemove, IDs: []string{id}})
	return nil
}

// Reorder assigns sequence order to all entries of a case following
// orderedIDs. It must be a full permutation of current ids, anything else is
// rejected and nothing changes.
func (s *Store) Reorder(caseID string, orderedIDs []string) ([]IndexEntry, error) {
	const op = "reorder"

	s.mu.Lock()
	slots := s.caseSlots(caseID)
	if len(orderedIDs) != len(slots) {
		s.mu.Unlock()
		return nil, validationErr(op, "got %d ids for case %q with %d entries, partial reorder is not allowed", len(orderedIDs), caseID, len(slots))
	}
	current := make(map[string]bool, len(slots))
	for _, sl := range slots {
		current[sl.id] = false
	}
	for _, id := range orderedIDs {
		seen, ok := current[id]
		if !ok {
			s.mu.Unlock()
			if _, elsewhere := s.entries[id]; !elsewhere {
				return nil, &NotFoundError{ID: id}
			}
			return nil, validationErr(op, "entry %q does not belong to case %q", id, caseID)
		}
		if seen {
			s.mu.Unlock()
			return nil, validationErr(op, "entry %q is listed more than once", id)
		}
		current[id] = true
	}

	for _, sl := range slots {
		s.order.Delete(sl)
	}
	var changed []string
	for i, id := range orderedIDs {
		e := s.entries[id]
		if e.SequenceOrder != int64(i) {
			changed = append(changed, id)
		}
		e.SequenceOrder = int64(i)
		s.order.ReplaceOrInsert(slot{caseID: caseID, seq: e.SequenceOrder, id: id})
	}
	out := s.list(caseID)
	s.unlockAndEmit(Change{CaseID: caseID, Kind: ChangeReorder, IDs: changed})
	return out, nil
}

// UpdatePageCount sets page count of an entry. Same value is accepted
// silently without notification.
func (s *Store) UpdatePageCount(id string, count int) error {
	const op = "update page count"

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	if count < 1 {
		s.mu.Unlock()
		return validationErr(op, "entry %q: page count %d, must be positive", id, count)
	}
	if e.RowType == common.RowTypeSectionBreak && count != 1 {
		s.mu.Unlock()
		return validationErr(op, "section break %q must occupy exactly one page", id)
	}
	if e.PageCount == count {
		s.mu.Unlock()
		return nil
	}
	e.PageCount = count
	s.unlockAndEmit(Change{CaseID: e.CaseID, Kind: ChangePageCount, IDs: []string{id}})
	return nil
}

// UpdateContent replaces opaque payload of an editable entry. Page count is
// not touched, it follows from measurements.
func (s *Store) UpdateContent(id, content string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	if !e.RowType.Editable() && e.RowType != common.RowTypeComponentReference {
		s.mu.Unlock()
		return validationErr("update content", "entry %q of type %s has no editable content", id, e.RowType)
	}
	e.Content = content
	s.unlockAndEmit(Change{CaseID: e.CaseID, Kind: ChangeContent, IDs: []string{id}})
	return nil
}

// UpdateLabel changes description of an entry, for section breaks it changes
// the section label.
func (s *Store) UpdateLabel(id, label string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	if e.IsSectionBreak() {
		e.SectionLabel = label
	} else {
		e.Label = label
	}
	s.unlockAndEmit(Change{CaseID: e.CaseID, Kind: ChangeContent, IDs: []string{id}})
	return nil
}

// Load replaces all entries of a case, typically with records read from
// persistent storage. Sequence order is taken as is and must be unique.
func (s *Store) Load(caseID string, entries []IndexEntry) error {
	const op = "load"

	s.mu.Lock()
	prepared := make([]*IndexEntry, 0, len(entries))
	seqs := make(map[int64]string, len(entries))
	ids := make(map[string]struct{}, len(entries))
	for i := range entries {
		e := entries[i]
		if len(e.CaseID) == 0 {
			e.CaseID = caseID
		}
		if e.CaseID != caseID {
			s.mu.Unlock()
			return validationErr(op, "entry %q belongs to case %q, not %q", e.ID, e.CaseID, caseID)
		}
		e.PageStart, e.PageEnd = 0, 0
		if err := e.validate(op); err != nil {
			s.mu.Unlock()
			return err
		}
		if other, dup := seqs[e.SequenceOrder]; dup {
			s.mu.Unlock()
			return validationErr(op, "duplicate sequence order %d for entries %q and %q", e.SequenceOrder, other, e.ID)
		}
		if _, dup := ids[e.ID]; dup {
			s.mu.Unlock()
			return validationErr(op, "duplicate entry id %q", e.ID)
		}
		if old, exists := s.entries[e.ID]; exists && old.CaseID != caseID {
			s.mu.Unlock()
			return validationErr(op, "entry %q already belongs to case %q", e.ID, old.CaseID)
		}
		seqs[e.SequenceOrder] = e.ID
		ids[e.ID] = struct{}{}
		prepared = append(prepared, &e)
	}

	for _, sl := range s.caseSlots(caseID) {
		s.order.Delete(sl)
		delete(s.entries, sl.id)
	}
	changed := make([]string, 0, len(prepared))
	for _, e := range prepared {
		s.put(e)
		changed = append(changed, e.ID)
	}
	s.unlockAndEmit(Change{CaseID: caseID, Kind: ChangeLoad, IDs: changed})
	return nil
}
