package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/usecase/journal"
	"github.com/urfave/cli/v3"
)

const chatHelp = `Speak your query, or use a command:
  /journal    list past echoes, newest first
  /show <n>   revisit echo n from the journal
  /clear      erase the journal
  /help       show this help
  /exit       leave
`

func chatCommand() *cli.Command {
	var cfg config

	flags := oracleFlags(&cfg)
	flags = append(flags, journalFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Consult the oracle interactively",
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

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "oracle> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "/exit",
				Stdout:          c.Root().Writer,
				AutoComplete: readline.NewPrefixCompleter(
					readline.PcItem("/journal"),
					readline.PcItem("/show"),
					readline.PcItem("/clear"),
					readline.PcItem("/help"),
					readline.PcItem("/exit"),
				),
			})
			if err != nil {
				return goerr.Wrap(err, "failed to initialize readline")
			}
			defer rl.Close()

			s := &session{
				oracle:  uc,
				journal: store,
				w:       c.Root().Writer,
				pending: newSpinner(),
			}

			fmt.Fprintf(s.w, "The oracle listens. %d echoes in the journal. Type /help for commands.\n", store.Len())

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						return nil
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					return nil
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				// Submissions block the loop, so two never overlap
				if quit := s.handle(ctx, line); quit {
					return nil
				}
			}
		},
	}
}

// session is the state of one interactive chat
type session struct {
	oracle  submitter
	journal *journal.Store
	w       io.Writer
	pending startPending
}

// handle processes one input line and reports whether the session ends
func (s *session) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		if _, err := consult(ctx, s.oracle, s.journal, s.w, s.pending, line); err != nil {
			fmt.Fprintln(s.w, err.Error())
		}
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "/exit", "/quit":
		return true

	case "/help":
		fmt.Fprint(s.w, chatHelp)

	case "/journal":
		renderJournal(s.w, s.journal.Items())

	case "/show":
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			fmt.Fprintln(s.w, "usage: /show <n>")
			return false
		}
		item, err := s.journal.At(n)
		if err != nil {
			fmt.Fprintf(s.w, "No echo #%d in the journal.\n", n)
			return false
		}
		renderItem(s.w, s.journal.Select(item))

	case "/clear":
		if err := s.journal.Clear(ctx); err != nil {
			fmt.Fprintln(s.w, "The journal could not be erased.")
			return false
		}
		fmt.Fprintln(s.w, "The journal is erased.")

	default:
		fmt.Fprintf(s.w, "Unknown command %s. Type /help for commands.\n", cmd)
	}

	return false
}
