package bundle

import (
	"context"
	"fmt"
	"strconv"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cbundle/common"
	"cbundle/estimate"
	"cbundle/index"
	"cbundle/state"
)

func EntryAdd(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "entry", func(env *state.LocalEnv, s *Session, log *zap.Logger) error {
		rt, err := common.ParseRowType(cmd.Args().Get(1))
		if err != nil {
			return err
		}

		e := index.IndexEntry{
			CaseID:    s.Case.ID,
			RowType:   rt,
			FileID:    cmd.String("file"),
			Content:   cmd.String("content"),
			PageCount: cmd.Int("pages"),
		}
		if rt == common.RowTypeSectionBreak {
			e.SectionLabel = cmd.String("label")
		} else {
			e.Label = cmd.String("label")
		}
		if rt == common.RowTypeEvidenceFile && len(e.FileID) > 0 {
			f, err := env.DB.GetFile(e.FileID)
			if err != nil {
				return err
			}
			if f.CaseID != s.Case.ID {
				return &index.ValidationError{Op: "add entry", Reason: fmt.Sprintf("file %q belongs to another case", f.ID)}
			}
			if e.PageCount == 0 {
				e.PageCount = f.PageCount
			}
		}

		if at := cmd.Int("at"); at >= 0 {
			e, err = s.Store.InsertAt(e, at)
		} else {
			e, err = s.Store.Insert(e)
		}
		if err != nil {
			return err
		}
		if cmd.Bool("late") {
			s.MarkLate(e.ID)
		}
		log.Info("Entry added", zap.String("id", e.ID), zap.Stringer("type", e.RowType), zap.Int("pages", e.PageCount))
		fmt.Fprintln(output(cmd), e.ID)
		return nil
	})
}

func EntryRemove(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "entry", func(_ *state.LocalEnv, s *Session, log *zap.Logger) error {
		id := cmd.Args().Get(1)
		if err := s.ownEntry(id); err != nil {
			return err
		}
		if err := s.Store.Remove(id); err != nil {
			return err
		}
		log.Info("Entry removed", zap.String("id", id))
		return nil
	})
}

func EntryReorder(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "entry", func(_ *state.LocalEnv, s *Session, log *zap.Logger) error {
		ids := cmd.Args().Tail()
		ranged, err := s.Store.Reorder(s.Case.ID, ids)
		if err != nil {
			return err
		}
		log.Info("Entries reordered", zap.Int("count", len(ranged)))
		v := &View{Entries: ranged}
		return writeRanges(output(cmd), v)
	})
}

func EntryLabel(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "entry", func(_ *state.LocalEnv, s *Session, log *zap.Logger) error {
		id := cmd.Args().Get(1)
		if err := s.ownEntry(id); err != nil {
			return err
		}
		if err := s.Store.UpdateLabel(id, cmd.Args().Get(2)); err != nil {
			return err
		}
		log.Info("Entry label changed", zap.String("id", id))
		return nil
	})
}

func EntryContent(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "entry", func(_ *state.LocalEnv, s *Session, log *zap.Logger) error {
		id := cmd.Args().Get(1)
		if err := s.ownEntry(id); err != nil {
			return err
		}
		if err := s.Store.UpdateContent(id, cmd.Args().Get(2)); err != nil {
			return err
		}
		log.Info("Entry content changed", zap.String("id", id))
		return nil
	})
}

// EntryMeasure runs single measurement through page break estimator. There
// is nothing to debounce in one shot command, so quiescence is disabled and
// result is stored immediately.
func EntryMeasure(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "entry", func(env *state.LocalEnv, s *Session, log *zap.Logger) error {
		id := cmd.Args().Get(1)
		if err := s.ownEntry(id); err != nil {
			return err
		}
		h, err := strconv.ParseFloat(cmd.Args().Get(2), 64)
		if err != nil {
			return &index.MeasurementError{ID: id, Reason: fmt.Sprintf("height %q is not a number", cmd.Args().Get(2))}
		}
		e, err := s.Store.Get(id)
		if err != nil {
			return err
		}

		var sinkErr error
		est := estimate.New(s.Store, env.Log,
			estimate.WithQuiescence(0),
			estimate.WithPageGeometry(env.Cfg.Engine.PageHeight, env.Cfg.Engine.PageMargin),
			estimate.WithErrorHandler(func(_ string, err error) { sinkErr = err }),
		)
		defer est.Close()

		measured := estimate.MeasurerFunc(func() (float64, error) { return h, nil })
		if err := est.Observe(id, e.PageCount, measured); err != nil {
			return err
		}
		if sinkErr != nil {
			return sinkErr
		}

		if e, err = s.Store.Get(id); err != nil {
			return err
		}
		log.Info("Entry measured", zap.String("id", id), zap.Float64("height", h), zap.Int("pages", e.PageCount))
		fmt.Fprintln(output(cmd), e.PageCount)
		return nil
	})
}

// ownEntry makes sure id is an entry of session case.
func (s *Session) ownEntry(id string) error {
	e, err := s.Store.Get(id)
	if err != nil {
		return err
	}
	if e.CaseID != s.Case.ID {
		return &index.NotFoundError{ID: id}
	}
	return nil
}
