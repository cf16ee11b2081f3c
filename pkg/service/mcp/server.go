package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/usecase/journal"
	"github.com/m-mizutani/oracle/pkg/usecase/oracle"
	"github.com/m-mizutani/oracle/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	serverName    = "oracle"
	serverVersion = "0.1.0"
)

// Submitter is the part of the oracle pipeline the server needs
type Submitter interface {
	Submit(ctx context.Context, query string) (*model.OracleResult, error)
}

// Server exposes the oracle and its journal as MCP tools
type Server struct {
	oracle  Submitter
	journal *journal.Store

	// mu serialises submissions and journal access. Tool handlers may be
	// dispatched concurrently by the SDK.
	mu sync.Mutex
}

type consultInput struct {
	Query string `json:"query" jsonschema:"Anything you want the oracle to interpret: a fear, a dream, a question"`
}

type consultOutput struct {
	Type      string `json:"type" jsonschema:"IMAGE, POEM or SONIC"`
	Text      string `json:"text" jsonschema:"The poetic content, description, or sonic fragment"`
	HasImage  bool   `json:"has_image" jsonschema:"Whether an image is attached as image content"`
	Timestamp int64  `json:"timestamp" jsonschema:"Journal key of this answer in milliseconds since epoch"`
}

type readJournalInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Maximum number of entries to return, newest first. Zero returns all."`
}

type journalEntry struct {
	Query     string `json:"query"`
	Type      string `json:"type"`
	Text      string `json:"text"`
	HasImage  bool   `json:"has_image"`
	Timestamp int64  `json:"timestamp"`
}

type readJournalOutput struct {
	Entries []journalEntry `json:"entries"`
}

// New creates a new MCP oracle server
func New(submitter Submitter, store *journal.Store) *Server {
	return &Server{
		oracle:  submitter,
		journal: store,
	}
}

// MCPServer builds the SDK server with all tools registered
func (s *Server) MCPServer() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "consult_oracle",
		Description: "Ask The Oracle. It answers any query with exactly one enigmatic image, short poem, or sound description, and remembers the exchange in its journal.",
	}, s.consult)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read_journal",
		Description: "Read past exchanges with The Oracle, newest first.",
	}, s.readJournal)

	return server
}

// Run serves the tools over transport until ctx is done or the client
// disconnects
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	if err := s.MCPServer().Run(ctx, transport); err != nil {
		return goerr.Wrap(err, "mcp server stopped")
	}
	return nil
}

func (s *Server) consult(ctx context.Context, req *mcp.CallToolRequest, in consultInput) (*mcp.CallToolResult, consultOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := logging.From(ctx)

	result, err := s.oracle.Submit(ctx, in.Query)
	switch {
	case errors.Is(err, model.ErrEmptyQuery):
		return nil, consultOutput{}, goerr.New("query is required")
	case errors.Is(err, model.ErrQueryDenied):
		return nil, consultOutput{}, goerr.New("the oracle refuses this query")
	case err != nil:
		logger.Error("consult failed", "error", err)
		return nil, consultOutput{}, goerr.New(model.SeveredMessage)
	}

	item := s.journal.NewItem(in.Query, *result)
	if err := s.journal.Record(ctx, item); err != nil {
		logger.Warn("failed to persist journal", "error", err)
	}

	content := []mcp.Content{
		&mcp.TextContent{Text: fmt.Sprintf("[%s]\n%s", result.Type, result.Text)},
	}
	if result.HasImage() {
		mimeType, data, err := oracle.DecodeDataURI(result.ImageURL)
		if err != nil {
			logger.Warn("failed to decode image", "error", err)
		} else {
			content = append(content, &mcp.ImageContent{Data: data, MIMEType: mimeType})
		}
	}

	return &mcp.CallToolResult{Content: content}, consultOutput{
		Type:      string(result.Type),
		Text:      result.Text,
		HasImage:  result.HasImage(),
		Timestamp: item.Timestamp,
	}, nil
}

func (s *Server) readJournal(ctx context.Context, req *mcp.CallToolRequest, in readJournalInput) (*mcp.CallToolResult, readJournalOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.journal.Items()
	if in.Limit > 0 && in.Limit < len(items) {
		items = items[:in.Limit]
	}

	out := readJournalOutput{Entries: make([]journalEntry, 0, len(items))}
	var b strings.Builder
	if len(items) == 0 {
		b.WriteString("The journal remains empty. Seek and you shall remember.")
	}
	for i, item := range items {
		out.Entries = append(out.Entries, journalEntry{
			Query:     item.Query,
			Type:      string(item.Result.Type),
			Text:      item.Result.Text,
			HasImage:  item.Result.HasImage(),
			Timestamp: item.Timestamp,
		})
		fmt.Fprintf(&b, "%d. %s %s %q\n", i+1, item.Result.Type,
			item.CreatedAt().Format(time.DateOnly), item.Query)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.String()}},
	}, out, nil
}
