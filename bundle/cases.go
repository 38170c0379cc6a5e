package bundle

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cbundle/common"
	"cbundle/state"
)

func CaseCreate(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	log := env.Log.Named("case")

	name := cmd.Args().Get(0)
	if len(name) == 0 {
		return errors.New("no case name has been specified")
	}
	ct, err := common.ParseCaseType(cmd.String("type"))
	if err != nil {
		return err
	}
	db, err := env.OpenDB()
	if err != nil {
		return err
	}
	c, err := db.CreateCase(name, ct)
	if err != nil {
		return err
	}
	log.Info("Case created", zap.String("id", c.ID), zap.String("name", c.Name), zap.Stringer("type", c.Type))
	fmt.Fprintln(output(cmd), c.ID)
	return nil
}

func CaseList(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	db, err := env.OpenDB()
	if err != nil {
		return err
	}
	cases, err := db.ListCases()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(output(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tUPDATED")
	for _, c := range cases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Type, c.Name, c.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func CaseDelete(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	id := cmd.Args().Get(0)
	if len(id) == 0 {
		return errors.New("no case has been specified")
	}
	db, err := env.OpenDB()
	if err != nil {
		return err
	}
	if err := db.DeleteCase(id); err != nil {
		return err
	}
	env.Log.Named("case").Info("Case deleted", zap.String("id", id))
	return nil
}
