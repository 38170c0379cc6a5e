package bundle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"cbundle/archive"
	"cbundle/common"
	"cbundle/evidence"
	"cbundle/index"
	"cbundle/state"
	"cbundle/storage"
)

// document is an evidence file found in one of the sources.
type document struct {
	path string
	name string
	meta evidence.Metadata
	err  error
}

func isPDFName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}

func isZipName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".zip")
}

func FileAdd(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	sources := cmd.Args().Tail()
	if len(sources) == 0 {
		return errors.New("no input source has been specified")
	}

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		var err error
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil {
			env.Log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			env.Log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	return withSession(ctx, cmd, "file", func(env *state.LocalEnv, s *Session, log *zap.Logger) error {
		provider := env.OpenProvider()

		var docs []document
		for _, src := range sources {
			found, err := collect(ctx, src, provider, env)
			if err != nil {
				return fmt.Errorf("unable to process %q: %w", src, err)
			}
			docs = append(docs, found...)
		}
		return addDocuments(ctx, s, docs, cmd.Bool("late"), output(cmd), env, log)
	})
}

// collect finds documents in a single source and inspects them. Files on
// disk are inspected concurrently, archive members in place since they are
// only reachable while archive is open.
func collect(ctx context.Context, src string, provider *evidence.Provider, env *state.LocalEnv) ([]document, error) {
	src, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}
	fi, err := os.Stat(src)
	if err != nil {
		return nil, err
	}

	var paths []string
	switch {
	case fi.IsDir():
		err = filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.Type().IsRegular() && isPDFName(d.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Sort(natural.StringSlice(paths))
	case isZipName(src):
		var docs []document
		err := archive.Walk(src, env.CodePage, isPDFName, func(arc string, e archive.Entry) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			md, err := provider.InspectEntry(arc, e.Name, e.File)
			docs = append(docs, document{path: arc + "!" + e.Name, name: filepath.Base(e.Name), meta: md, err: err})
			return nil
		})
		return docs, err
	default:
		paths = []string{src}
	}

	results := provider.Resolve(ctx, paths, env.Cfg.Evidence.Workers)
	docs := make([]document, 0, len(results))
	for _, r := range results {
		docs = append(docs, document{path: r.Path, name: filepath.Base(r.Path), meta: r.Metadata, err: r.Err})
	}
	return docs, nil
}

// addDocuments registers inspected documents as files of the case and
// appends evidence entries for them. Documents which could not be inspected
// are skipped, their errors are combined into result.
func addDocuments(ctx context.Context, s *Session, docs []document, late bool, out io.Writer, env *state.LocalEnv, log *zap.Logger) (err error) {
	for _, d := range docs {
		if er := ctx.Err(); er != nil {
			return multierr.Append(err, er)
		}
		if d.err != nil {
			log.Warn("Skipping document", zap.String("path", d.path), zap.Error(d.err))
			err = multierr.Append(err, d.err)
			continue
		}

		meta, er := json.Marshal(d.meta)
		if er != nil {
			return multierr.Append(err, er)
		}
		f, er := env.DB.CreateFile(storage.File{
			CaseID:       s.Case.ID,
			Path:         d.path,
			OriginalName: d.name,
			PageCount:    d.meta.PageCount,
			Size:         d.meta.Size,
			MetadataJSON: string(meta),
		})
		if er != nil {
			return multierr.Append(err, er)
		}
		e, er := s.Store.Insert(index.IndexEntry{
			CaseID:    s.Case.ID,
			RowType:   common.RowTypeEvidenceFile,
			FileID:    f.ID,
			Label:     strings.TrimSuffix(d.name, filepath.Ext(d.name)),
			PageCount: d.meta.PageCount,
		})
		if er != nil {
			return multierr.Append(err, er)
		}
		if late {
			s.MarkLate(e.ID)
		}
		log.Info("Document added", zap.String("entry", e.ID), zap.String("path", d.path), zap.Int("pages", e.PageCount))
		fmt.Fprintf(out, "%s\t%s\t%d\n", e.ID, e.Label, e.PageCount)
	}
	return err
}

func FileList(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	caseID := cmd.Args().Get(0)
	if len(caseID) == 0 {
		return errors.New("no case has been specified")
	}
	db, err := env.OpenDB()
	if err != nil {
		return err
	}
	files, err := db.ListFiles(caseID)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(output(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPAGES\tSIZE\tPATH")
	for _, f := range files {
		pages := "?"
		if f.PageCount > 0 {
			pages = fmt.Sprint(f.PageCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.OriginalName, pages, humanize.IBytes(uint64(f.Size)), f.Path)
	}
	return tw.Flush()
}
