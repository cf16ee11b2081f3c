package cli

import (
	"context"

	"github.com/m-mizutani/oracle/pkg/service/mcp"
	"github.com/m-mizutani/oracle/pkg/utils/logging"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var cfg config

	flags := oracleFlags(&cfg)
	flags = append(flags, journalFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the oracle as MCP tools over stdio",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, err := cfg.newOracle(ctx)
			if err != nil {
				return err
			}

			store, err := cfg.newJournal(ctx)
			if err != nil {
				return err
			}

			logging.From(ctx).Info("serving MCP over stdio", "journal", cfg.journal, "entries", store.Len())
			return mcp.New(uc, store).Run(ctx, &sdk.StdioTransport{})
		},
	}
}
