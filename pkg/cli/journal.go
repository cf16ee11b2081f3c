package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/usecase/journal"
	"github.com/urfave/cli/v3"
)

func journalCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "journal",
		Usage: "Browse or erase past consultations",
		Flags: journalFlags(&cfg),
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List journal entries, newest first",
				Action: func(ctx context.Context, c *cli.Command) error {
					store, err := cfg.newJournal(ctx)
					if err != nil {
						return err
					}
					renderJournal(c.Root().Writer, store.Items())
					return nil
				},
			},
			{
				Name:      "show",
				Usage:     "Show a stored answer by timestamp or by list number",
				ArgsUsage: "<timestamp|n>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.New("one timestamp or list number is required")
					}
					store, err := cfg.newJournal(ctx)
					if err != nil {
						return err
					}
					return showEntry(c.Root().Writer, store, c.Args().First())
				},
			},
			{
				Name:  "clear",
				Usage: "Erase the journal",
				Action: func(ctx context.Context, c *cli.Command) error {
					store, err := cfg.newJournal(ctx)
					if err != nil {
						return err
					}
					n := store.Len()
					if err := store.Clear(ctx); err != nil {
						return err
					}
					fmt.Fprintf(c.Root().Writer, "Erased %d entries.\n", n)
					return nil
				},
			},
		},
	}
}

// showEntry renders one entry. Arguments up to journal.MaxItems are list
// numbers, larger ones are timestamps.
func showEntry(w io.Writer, store *journal.Store, arg string) error {
	v, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return goerr.Wrap(err, "invalid journal key", goerr.V("arg", arg))
	}

	var item model.HistoryItem
	if v <= journal.MaxItems {
		item, err = store.At(int(v))
	} else {
		item, err = store.Find(v)
	}
	if err != nil {
		return err
	}

	renderItem(w, store.Select(item))
	return nil
}
