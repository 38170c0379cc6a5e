// Package bundle implements command line front end of the engine: it loads
// a case from storage into entry store, applies requested changes and
// renders derived views.
package bundle

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"cbundle/config"
	"cbundle/index"
	"cbundle/storage"
)

// Session binds persisted case to in-memory entry store. Any change of the
// store marks session dirty, Close writes the sequence back.
type Session struct {
	Case  storage.Case
	Store *index.Store

	db     *storage.DB
	log    *zap.Logger
	cancel func()

	mu    sync.Mutex
	late  map[string]bool
	dirty bool
}

// OpenSession loads case entries from db.
func OpenSession(db *storage.DB, caseID string, log *zap.Logger) (*Session, error) {
	c, err := db.GetCase(caseID)
	if err != nil {
		return nil, err
	}
	entries, late, err := db.ListEntries(c.ID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		Case:  c,
		Store: index.NewStore(log),
		db:    db,
		log:   log.Named("session").With(zap.String("case", c.ID)),
		late:  late,
	}
	if err := s.Store.Load(c.ID, entries); err != nil {
		return nil, fmt.Errorf("case %q has inconsistent entries: %w", c.ID, err)
	}
	s.cancel = s.Store.Subscribe(s.onChange)
	s.log.Debug("Session opened", zap.Int("entries", len(entries)))
	return s, nil
}

func (s *Session) onChange(ch index.Change) {
	if ch.CaseID != s.Case.ID {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch.Kind == index.ChangeRemove {
		for _, id := range ch.IDs {
			delete(s.late, id)
		}
	}
	s.dirty = true
}

// MarkLate flags entry as inserted after the bundle was served.
func (s *Session) MarkLate(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.late[id] = true
	s.dirty = true
}

// Late returns copy of late inserted entry set.
func (s *Session) Late() map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]bool, len(s.late))
	for k, v := range s.late {
		out[k] = v
	}
	return out
}

// Dirty reports whether there are unsaved changes.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Save persists sequence when it changed.
func (s *Session) Save() error {
	if !s.Dirty() {
		return nil
	}
	entries := s.Store.List(s.Case.ID)
	if err := s.db.SaveEntries(s.Case.ID, entries, s.Late()); err != nil {
		return err
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()

	s.log.Debug("Session saved", zap.Int("entries", len(entries)))
	return nil
}

// Close saves pending changes and detaches from the store.
func (s *Session) Close() error {
	err := s.Save()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	return err
}

// View is everything derived from the current sequence.
type View struct {
	Case     string             `yaml:"case"`
	Total    int                `yaml:"total_pages"`
	TOCPages int                `yaml:"toc_pages"`
	Entries  []index.IndexEntry `yaml:"entries"`
	TOC      []index.TOCEntry   `yaml:"toc"`
	Stamps   []string           `yaml:"stamps,omitempty"`

	groups []index.SectionGroup
}

// View computes ranges, sections and table of contents with configured
// labelling.
func (s *Session) View(cfg *config.TOCConfig, stamps bool) (*View, error) {
	ranged, total := s.Store.Ranges(s.Case.ID)
	groups := index.GroupBySections(ranged)
	tocPages := index.EstimateTOCPages(index.TOCRows(groups), cfg.EntriesPerPage)

	late := s.Late()
	rows, err := index.BuildTOC(ranged, index.TOCOptions{
		LabelTemplate: cfg.LabelTemplate,
		TOCPages:      tocPages,
		Mode:          cfg.LateInsertMode,
		Late:          late,
	})
	if err != nil {
		return nil, err
	}

	v := &View{
		Case:     s.Case.Name,
		Total:    total,
		TOCPages: tocPages,
		Entries:  ranged,
		TOC:      rows,
		groups:   groups,
	}
	if stamps {
		v.Stamps = index.Stamps(ranged, cfg.StampFormat, cfg.LateInsertMode, late, tocPages)
	}
	return v, nil
}
