package bundle

import (
	"context"
	"errors"
	"fmt"
	"io"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cbundle/common"
	"cbundle/state"
)

// Commands returns command tree of the bundle front end.
func Commands(onUsageError cli.OnUsageErrorFunc) []*cli.Command {
	caseArg := "CASE_ID"
	return []*cli.Command{
		{
			Name:         "case",
			Usage:        "Manages cases",
			OnUsageError: onUsageError,
			Commands: []*cli.Command{
				{
					Name:         "create",
					Usage:        "Creates new case and prints its id",
					OnUsageError: onUsageError,
					Action:       CaseCreate,
					ArgsUsage:    "NAME",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "type", Value: common.CaseTypeBundle.String(), Usage: "case `TYPE` (affidavit or bundle)"},
					},
				},
				{
					Name:         "list",
					Usage:        "Lists cases",
					OnUsageError: onUsageError,
					Action:       CaseList,
				},
				{
					Name:         "delete",
					Usage:        "Deletes case with all its files and entries",
					OnUsageError: onUsageError,
					Action:       CaseDelete,
					ArgsUsage:    caseArg,
				},
			},
		},
		{
			Name:         "file",
			Usage:        "Manages evidence files",
			OnUsageError: onUsageError,
			Commands: []*cli.Command{
				{
					Name:         "add",
					Usage:        "Adds PDF documents to the end of the bundle",
					OnUsageError: onUsageError,
					Action:       FileAdd,
					ArgsUsage:    caseArg + " SOURCE...",
					Flags: []cli.Flag{
						&cli.BoolFlag{Name: "late", Usage: "documents are added after the bundle was served"},
						&cli.StringFlag{Name: "force-zip-cp",
							Usage: "Force `ENCODING` for ALL non UTF-8 file names in processed archives (see IANA.org for character set names)"},
					},
					CustomHelpTemplate: fmt.Sprintf(`%s
SOURCE:
    path to a PDF file, a directory (all PDF files under it, symbolic links are not followed)
    or a zip archive (all PDF files inside it). Documents from directories and archives are
    added in natural order of their names, so "Tab 2" goes before "Tab 10".
`, cli.CommandHelpTemplate),
				},
				{
					Name:         "list",
					Usage:        "Lists evidence files of a case",
					OnUsageError: onUsageError,
					Action:       FileList,
					ArgsUsage:    caseArg,
				},
			},
		},
		{
			Name:         "entry",
			Usage:        "Edits bundle sequence",
			OnUsageError: onUsageError,
			Commands: []*cli.Command{
				{
					Name:         "add",
					Usage:        "Adds entry to the bundle",
					OnUsageError: onUsageError,
					Action:       EntryAdd,
					ArgsUsage:    caseArg + " TYPE",
					Flags: []cli.Flag{
						&cli.StringFlag{Name: "label", Usage: "entry `LABEL`, for section breaks the section name"},
						&cli.StringFlag{Name: "content", Usage: "editable page `CONTENT`"},
						&cli.StringFlag{Name: "file", Usage: "evidence `FILE_ID` for evidence entries"},
						&cli.IntFlag{Name: "pages", Usage: "page `COUNT`, evidence entries default to the file page count"},
						&cli.IntFlag{Name: "at", Value: -1, Usage: "insert at `POSITION` (0 based), appends by default"},
						&cli.BoolFlag{Name: "late", Usage: "entry is added after the bundle was served"},
					},
					CustomHelpTemplate: fmt.Sprintf(`%s
TYPE:
    one of %v
`, cli.CommandHelpTemplate, common.RowTypeNames()),
				},
				{
					Name:         "remove",
					Usage:        "Removes entry",
					OnUsageError: onUsageError,
					Action:       EntryRemove,
					ArgsUsage:    caseArg + " ENTRY_ID",
				},
				{
					Name:         "reorder",
					Usage:        "Puts entries into the given order, all entries of the case must be listed",
					OnUsageError: onUsageError,
					Action:       EntryReorder,
					ArgsUsage:    caseArg + " ENTRY_ID...",
				},
				{
					Name:         "label",
					Usage:        "Changes entry label or section name",
					OnUsageError: onUsageError,
					Action:       EntryLabel,
					ArgsUsage:    caseArg + " ENTRY_ID LABEL",
				},
				{
					Name:         "content",
					Usage:        "Replaces editable content of cover pages, dividers and component references",
					OnUsageError: onUsageError,
					Action:       EntryContent,
					ArgsUsage:    caseArg + " ENTRY_ID CONTENT",
				},
				{
					Name:         "measure",
					Usage:        "Sets page count of an entry from rendered content height",
					OnUsageError: onUsageError,
					Action:       EntryMeasure,
					ArgsUsage:    caseArg + " ENTRY_ID HEIGHT",
				},
			},
		},
		{
			Name:         "index",
			Usage:        "Prints page ranges, sections and table of contents",
			OnUsageError: onUsageError,
			Action:       Index,
			ArgsUsage:    caseArg,
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "format", Value: FormatText, Usage: "output `FORMAT` (text or yaml)"},
				&cli.BoolFlag{Name: "stamps", Usage: "include stamp text of every page"},
			},
		},
		{
			Name:         "validate",
			Usage:        "Checks pagination of table of contents",
			OnUsageError: onUsageError,
			Action:       Validate,
			ArgsUsage:    caseArg,
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "total", Usage: "page `COUNT` of compiled bundle to compare with"},
			},
		},
		{
			Name:         "window",
			Usage:        "Shows index rows materialized for a scroll position",
			OnUsageError: onUsageError,
			Action:       ShowWindow,
			ArgsUsage:    caseArg,
			Flags: []cli.Flag{
				&cli.FloatFlag{Name: "scroll", Usage: "scroll `OFFSET`"},
				&cli.FloatFlag{Name: "viewport", Usage: "viewport `HEIGHT`, configured value by default"},
				&cli.FloatFlag{Name: "item-height", Usage: "row `HEIGHT`, configured value by default"},
				&cli.IntFlag{Name: "overscan", Value: -1, Usage: "extra `ROWS` on each side, configured value by default"},
			},
		},
		{
			Name:         "export",
			Usage:        "Writes index of a case into a text file",
			OnUsageError: onUsageError,
			Action:       Export,
			ArgsUsage:    caseArg + " [DESTINATION]",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "overwrite existing file"},
				&cli.BoolFlag{Name: "stamps", Usage: "include stamp text of every page"},
			},
			CustomHelpTemplate: fmt.Sprintf(`%s
DESTINATION:
    directory to write to, if absent - current working directory. File name is produced
    from export.name_template configuration value.
`, cli.CommandHelpTemplate),
		},
	}
}

func output(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

// withSession opens case named by the first argument, runs fn and saves
// whatever fn changed, even when fn fails half way.
func withSession(ctx context.Context, cmd *cli.Command, name string, fn func(env *state.LocalEnv, s *Session, log *zap.Logger) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named(name)

	caseID := cmd.Args().Get(0)
	if len(caseID) == 0 {
		return errors.New("no case has been specified")
	}
	db, err := env.OpenDB()
	if err != nil {
		return err
	}
	s, err := OpenSession(db, caseID, env.Log)
	if err != nil {
		return err
	}
	defer func() {
		if er := s.Close(); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to save case %q: %w", caseID, er))
		}
	}()
	return fn(env, s, log)
}
