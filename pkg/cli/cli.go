package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/oracle/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

// Option customises the root command, mainly for tests
type Option func(*cli.Command)

// WithIO replaces stdin and stdout of the root command
func WithIO(r io.Reader, w io.Writer) Option {
	return func(cmd *cli.Command) {
		cmd.Reader = r
		cmd.Writer = w
	}
}

func Run(ctx context.Context, argv []string, opts ...Option) *Error {
	var (
		logLevel  string
		logFormat string
	)

	cmd := &cli.Command{
		Name:  "oracle",
		Usage: "Beyond search, within meaning",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Aliases:     []string{"l"},
				Usage:       "Log level (debug, info, warn, error)",
				Value:       "warn",
				Sources:     cli.EnvVars("ORACLE_LOG_LEVEL"),
				Destination: &logLevel,
			},
			&cli.StringFlag{
				Name:        "log-format",
				Usage:       "Log format (console, json)",
				Value:       string(logging.FormatConsole),
				Sources:     cli.EnvVars("ORACLE_LOG_FORMAT"),
				Destination: &logFormat,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger := logging.NewWithFormat(logLevel, logging.Format(logFormat), os.Stderr)
			logging.SetDefault(logger)
			return logging.With(ctx, logger), nil
		},
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			journalCommand(),
			serveCommand(),
		},
	}

	for _, opt := range opts {
		opt(cmd)
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
