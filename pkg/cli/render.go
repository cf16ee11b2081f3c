package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/usecase/oracle"
)

const journalTimeFormat = "2006-01-02 15:04"

// renderResult prints an oracle answer. Images are not drawn in the
// terminal; their presence is noted instead.
func renderResult(w io.Writer, result model.OracleResult) {
	fmt.Fprintf(w, "\n  %s\n\n", result.Type)

	prefix := "  "
	if result.Type == model.ResultTypeSonic {
		prefix = "  ~ "
	}
	for _, line := range strings.Split(strings.TrimSpace(result.Text), "\n") {
		fmt.Fprintln(w, prefix+strings.TrimSpace(line))
	}

	if result.Type == model.ResultTypeImage {
		if result.HasImage() {
			if mimeType, data, err := oracle.DecodeDataURI(result.ImageURL); err == nil {
				fmt.Fprintf(w, "\n  [vision manifested: %s, %d bytes]\n", mimeType, len(data))
			}
		} else {
			fmt.Fprintln(w, "\n  [the vision could not take form]")
		}
	}
	fmt.Fprintln(w)
}

// renderJournal prints journal entries, newest first, numbered from 1
func renderJournal(w io.Writer, items []model.HistoryItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "The journal is empty.")
		return
	}

	for i, item := range items {
		fmt.Fprintf(w, "%2d. %-5s %s  %d  %q\n",
			i+1,
			item.Result.Type,
			item.CreatedAt().Local().Format(journalTimeFormat),
			item.Timestamp,
			item.Query,
		)
	}
}

// renderItem prints a single journal entry with its stored answer
func renderItem(w io.Writer, item model.HistoryItem) {
	fmt.Fprintf(w, "%s\n> %s\n", item.CreatedAt().Local().Format(time.RFC3339), item.Query)
	renderResult(w, item.Result)
}

// saveImage writes the image of an answer to path
func saveImage(path string, result model.OracleResult) error {
	if !result.HasImage() {
		return goerr.New("the answer carries no image", goerr.V("type", result.Type))
	}

	_, data, err := oracle.DecodeDataURI(result.ImageURL)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return goerr.Wrap(err, "failed to create image directory", goerr.V("path", path))
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write image", goerr.V("path", path))
	}
	return nil
}
