package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/usecase/journal"
	"github.com/m-mizutani/oracle/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// submitter is the request pipeline as seen by the terminal surfaces
type submitter interface {
	Submit(ctx context.Context, query string) (*model.OracleResult, error)
}

// startPending shows a pending indicator and returns the function that hides it
type startPending func() (stop func())

// newSpinner returns a pending indicator drawn on stderr. The spinner
// stays silent when stderr is not a terminal.
func newSpinner() startPending {
	return func() func() {
		s := spinner.New(spinner.CharSets[14], 100*time.Millisecond,
			spinner.WithWriter(os.Stderr),
			spinner.WithSuffix(" Consulting the shadows..."),
			spinner.WithHiddenCursor(true),
		)
		s.Start()
		return s.Stop
	}
}

// consult submits one query, renders the answer and records it in the
// journal. Failures are converted to messages meant for the user.
func consult(ctx context.Context, o submitter, store *journal.Store, w io.Writer, pending startPending, query string) (*model.OracleResult, error) {
	stop := pending()
	result, err := o.Submit(ctx, query)
	stop()

	if err != nil {
		return nil, userError(err)
	}

	renderResult(w, *result)

	item := store.NewItem(query, *result)
	if err := store.Record(ctx, item); err != nil {
		logging.From(ctx).Warn("failed to persist journal", "error", err)
	}

	return result, nil
}

func userError(err error) error {
	switch {
	case errors.Is(err, model.ErrEmptyQuery):
		return goerr.New("ask the oracle a question")
	case errors.Is(err, model.ErrQueryDenied):
		return goerr.New("the oracle refuses this query")
	default:
		return goerr.New(model.SeveredMessage)
	}
}

func askCommand() *cli.Command {
	var (
		cfg       config
		saveImage string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "save-image",
			Aliases:     []string{"o"},
			Usage:       "Write the image of an IMAGE answer to this file",
			Destination: &saveImage,
		},
	}
	flags = append(flags, oracleFlags(&cfg)...)
	flags = append(flags, journalFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Pose a single query to the oracle",
		ArgsUsage: "<query...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(query) == "" {
				return goerr.New("ask the oracle a question")
			}

			uc, err := cfg.newOracle(ctx)
			if err != nil {
				return err
			}

			store, err := cfg.newJournal(ctx)
			if err != nil {
				return err
			}

			return runAsk(ctx, uc, store, c.Root().Writer, newSpinner(), query, saveImage)
		},
	}
}

func runAsk(ctx context.Context, o submitter, store *journal.Store, w io.Writer, pending startPending, query, imagePath string) error {
	result, err := consult(ctx, o, store, w, pending, query)
	if err != nil {
		return err
	}

	if imagePath == "" {
		return nil
	}
	if !result.HasImage() {
		logging.From(ctx).Warn("no image to save", "type", result.Type)
		return nil
	}
	if err := saveImage(imagePath, *result); err != nil {
		return err
	}
	logging.From(ctx).Info("image saved", "path", imagePath)
	return nil
}
