package bundle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cbundle/index"
	"cbundle/state"
	"cbundle/window"
)

func Index(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "index", func(env *state.LocalEnv, s *Session, log *zap.Logger) error {
		v, err := s.View(&env.Cfg.TOC, cmd.Bool("stamps"))
		if err != nil {
			return err
		}
		if env.Rpt != nil {
			reportView(env, v)
		}
		log.Debug("Index prepared", zap.Int("entries", len(v.Entries)), zap.Int("pages", v.Total))
		return writeView(output(cmd), v, cmd.String("format"))
	})
}

// reportView puts text rendition of the index into debug report.
func reportView(env *state.LocalEnv, v *View) {
	buf := new(bytes.Buffer)
	if err := writeView(buf, v, FormatText); err != nil {
		env.Log.Debug("Unable to render index for report", zap.Error(err))
		return
	}
	env.Rpt.StoreData(fmt.Sprintf("index/%s.txt", cleanPathSegment(v.Case, true)), buf.Bytes())
}

func Validate(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "validate", func(env *state.LocalEnv, s *Session, log *zap.Logger) error {
		v, err := s.View(&env.Cfg.TOC, false)
		if err != nil {
			return err
		}
		rpt := index.ValidatePagination(v.TOC, v.TOCPages, cmd.Int("total"), env.Cfg.TOC.LongTabWarning)

		out := output(cmd)
		for _, p := range rpt.Problems {
			fmt.Fprintf(out, "error: %s\n", p.Message)
		}
		for _, w := range rpt.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		if !rpt.Valid() {
			return fmt.Errorf("pagination is not valid: %d problem(s)", len(rpt.Problems))
		}
		log.Info("Pagination is valid", zap.Int("tabs", len(v.TOC)), zap.Int("warnings", len(rpt.Warnings)))
		fmt.Fprintln(out, "ok")
		return nil
	})
}

// ShowWindow drives window controller the way scrolling index does and prints
// rows it decided to materialize.
func ShowWindow(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "window", func(env *state.LocalEnv, s *Session, log *zap.Logger) error {
		cfg := &env.Cfg.Engine
		viewport, itemHeight, overscan := cfg.Viewport, cfg.ItemHeight, cfg.Overscan
		if cmd.IsSet("viewport") {
			viewport = cmd.Float("viewport")
		}
		if cmd.IsSet("item-height") {
			itemHeight = cmd.Float("item-height")
		}
		if n := cmd.Int("overscan"); n >= 0 {
			overscan = n
		}

		ranged, _ := s.Store.Ranges(s.Case.ID)
		ctl := window.NewController(len(ranged), itemHeight,
			window.WithFrame(0),
			window.WithViewport(viewport),
			window.WithOverscan(overscan),
			window.WithLogger(env.Log),
		)
		defer ctl.Close()

		ctl.Scroll(cmd.Float("scroll"))
		w := ctl.Window()

		out := output(cmd)
		fmt.Fprintf(out, "rows [%d, %d) of %d, spacers %g/%g\n", w.StartIndex, w.EndIndex, len(ranged), w.TopPadding, w.BottomPadding)
		rows := window.Materialize(w, func(i int) string {
			e := &ranged[i]
			return fmt.Sprintf("%5d  %s [%d-%d]", i+1, e.Description(), e.PageStart, e.PageEnd)
		})
		for _, r := range rows {
			fmt.Fprintln(out, r)
		}
		log.Debug("Window computed", zap.Any("window", w), zap.Int("recomputes", ctl.Recomputes()))
		return nil
	})
}

func Export(ctx context.Context, cmd *cli.Command) error {
	return withSession(ctx, cmd, "export", func(env *state.LocalEnv, s *Session, log *zap.Logger) (err error) {
		dst := cmd.Args().Get(1)
		if len(dst) == 0 {
			if dst, err = os.Getwd(); err != nil {
				return fmt.Errorf("unable to get working directory: %w", err)
			}
		}
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
		if cmd.Args().Len() > 2 {
			log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
		}

		v, err := s.View(&env.Cfg.TOC, cmd.Bool("stamps"))
		if err != nil {
			return err
		}
		name := buildOutputPath(&s.Case, v.Total, dst, env, time.Now())

		overwrite := env.Overwrite || cmd.Bool("overwrite")
		if _, err := os.Stat(name); err == nil && !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
			return fmt.Errorf("unable to create output directory: %w", err)
		}

		buf := new(bytes.Buffer)
		if err := writeView(buf, v, FormatText); err != nil {
			return err
		}
		if err := os.WriteFile(name, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("unable to write index: %w", err)
		}
		if env.Rpt != nil {
			env.Rpt.Store(filepath.Join("export", filepath.Base(name)), name)
		}
		log.Info("Index exported", zap.String("file", name), zap.Int("pages", v.Total))
		fmt.Fprintln(output(cmd), name)
		return nil
	})
}
