package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/repository"
	"github.com/m-mizutani/oracle/pkg/usecase/journal"
)

type mockSubmitter struct {
	submitFn func(ctx context.Context, query string) (*model.OracleResult, error)
	queries  []string
}

func (m *mockSubmitter) Submit(ctx context.Context, query string) (*model.OracleResult, error) {
	m.queries = append(m.queries, query)
	return m.submitFn(ctx, query)
}

func noPending() func() {
	return func() {}
}

func newTestSession(t *testing.T, fn func(ctx context.Context, query string) (*model.OracleResult, error)) (*session, *mockSubmitter, *bytes.Buffer) {
	t.Helper()
	m := &mockSubmitter{submitFn: fn}
	var buf bytes.Buffer
	store := journal.New(repository.NewMemory())
	store.Load(context.Background())
	return &session{oracle: m, journal: store, w: &buf, pending: noPending}, m, &buf
}

func poem(ctx context.Context, query string) (*model.OracleResult, error) {
	return &model.OracleResult{Type: model.ResultTypePoem, Text: "Salt remembers the sea"}, nil
}

func TestSessionQuery(t *testing.T) {
	ctx := context.Background()
	s, m, buf := newTestSession(t, poem)

	gt.False(t, s.handle(ctx, "  where does salt come from  "))
	gt.A(t, m.queries).Length(1)
	gt.Equal(t, m.queries[0], "where does salt come from")
	gt.S(t, buf.String()).Contains("Salt remembers the sea")

	items := s.journal.Items()
	gt.A(t, items).Length(1)
	gt.Equal(t, items[0].Query, "where does salt come from")
	gt.Equal(t, items[0].Result.Type, model.ResultTypePoem)
}

func TestSessionBlankLine(t *testing.T) {
	s, m, buf := newTestSession(t, poem)

	gt.False(t, s.handle(context.Background(), "   "))
	gt.A(t, m.queries).Length(0)
	gt.Equal(t, buf.String(), "")
}

func TestSessionFailures(t *testing.T) {
	testCases := map[string]struct {
		err  error
		want string
	}{
		"severed": {
			err:  goerr.Wrap(model.ErrConnectionSevered, "interpret failed"),
			want: model.SeveredMessage,
		},
		"denied": {
			err:  goerr.Wrap(model.ErrQueryDenied, "denied"),
			want: "the oracle refuses this query",
		},
		"unexpected": {
			err:  goerr.New("boom"),
			want: model.SeveredMessage,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			s, _, buf := newTestSession(t, func(ctx context.Context, query string) (*model.OracleResult, error) {
				return nil, tc.err
			})

			gt.False(t, s.handle(context.Background(), "a question"))
			gt.S(t, buf.String()).Contains(tc.want)
			gt.Equal(t, s.journal.Len(), 0)
		})
	}
}

func TestSessionCommands(t *testing.T) {
	ctx := context.Background()
	s, m, buf := newTestSession(t, poem)

	gt.False(t, s.handle(ctx, "/journal"))
	gt.S(t, buf.String()).Contains("The journal is empty.")

	gt.False(t, s.handle(ctx, "first"))
	gt.False(t, s.handle(ctx, "second"))
	gt.A(t, m.queries).Length(2)

	buf.Reset()
	gt.False(t, s.handle(ctx, "/journal"))
	gt.S(t, buf.String()).Contains(`1. POEM`)
	gt.S(t, buf.String()).Contains(`"second"`)
	gt.S(t, buf.String()).Contains(`"first"`)

	buf.Reset()
	gt.False(t, s.handle(ctx, "/show 2"))
	gt.S(t, buf.String()).Contains("> first")
	gt.A(t, m.queries).Length(2)

	buf.Reset()
	gt.False(t, s.handle(ctx, "/show 9"))
	gt.S(t, buf.String()).Contains("No echo #9")

	buf.Reset()
	gt.False(t, s.handle(ctx, "/show two"))
	gt.S(t, buf.String()).Contains("usage: /show <n>")

	buf.Reset()
	gt.False(t, s.handle(ctx, "/help"))
	gt.S(t, buf.String()).Contains("/journal")

	buf.Reset()
	gt.False(t, s.handle(ctx, "/dance"))
	gt.S(t, buf.String()).Contains("Unknown command /dance")

	buf.Reset()
	gt.False(t, s.handle(ctx, "/clear"))
	gt.S(t, buf.String()).Contains("The journal is erased.")
	gt.Equal(t, s.journal.Len(), 0)

	gt.True(t, s.handle(ctx, "/exit"))
	gt.True(t, s.handle(ctx, "/quit"))
}
