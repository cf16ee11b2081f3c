package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/interfaces"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/utils/logging"
)

// MaxItems is the hard cap of journal entries. Older entries beyond it are
// discarded on insert.
const MaxItems = 30

// Store is the journal of echoes: past queries with their answers, newest
// first. It owns its item list exclusively and is not safe for concurrent
// use; callers with more than one goroutine must serialise access.
type Store struct {
	slot  interfaces.Slot
	items []model.HistoryItem
	now   func() time.Time
}

// Option is a functional option for Store
type Option func(*Store)

// WithClock replaces the clock used to stamp new items
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty journal backed by slot. Call Load to read
// persisted entries.
func New(slot interfaces.Slot, opts ...Option) *Store {
	s := &Store{
		slot: slot,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted journal and replaces the in-memory entries. An
// absent, unreadable or corrupt slot results in an empty journal.
func (s *Store) Load(ctx context.Context) []model.HistoryItem {
	s.items = s.read(ctx)
	return s.Items()
}

func (s *Store) read(ctx context.Context) []model.HistoryItem {
	logger := logging.From(ctx)

	data, err := s.slot.Load(ctx)
	if err != nil {
		logger.Warn("failed to load journal, starting empty", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var items []model.HistoryItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("journal is corrupt, starting empty", "error", goerr.Wrap(err, "failed to unmarshal journal"))
		return nil
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			logger.Warn("journal has invalid entry, starting empty", "error", err)
			return nil
		}
	}

	if len(items) > MaxItems {
		items = items[:MaxItems]
	}
	return items
}

// Items returns a copy of the current entries, newest first
func (s *Store) Items() []model.HistoryItem {
	items := make([]model.HistoryItem, len(s.items))
	copy(items, s.items)
	return items
}

// Len returns the number of entries
func (s *Store) Len() int {
	return len(s.items)
}

// NewItem builds an entry for query and result. Its timestamp is strictly
// greater than the newest entry's so it stays unique as a key.
func (s *Store) NewItem(query string, result model.OracleResult) model.HistoryItem {
	item := model.NewHistoryItem(query, result, s.now())
	if len(s.items) > 0 && item.Timestamp <= s.items[0].Timestamp {
		item.Timestamp = s.items[0].Timestamp + 1
	}
	return item
}

// Record prepends item, drops entries beyond MaxItems and persists the
// whole journal. The in-memory journal is updated even if persisting fails.
func (s *Store) Record(ctx context.Context, item model.HistoryItem) error {
	if err := item.Validate(); err != nil {
		return goerr.Wrap(err, "refused to record history item")
	}

	items := make([]model.HistoryItem, 0, min(len(s.items)+1, MaxItems))
	items = append(items, item)
	for _, prev := range s.items {
		if len(items) >= MaxItems {
			break
		}
		items = append(items, prev)
	}
	s.items = items

	return s.flush(ctx)
}

func (s *Store) flush(ctx context.Context) error {
	data, err := json.Marshal(s.items)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal journal")
	}

	if err := s.slot.Save(ctx, data); err != nil {
		return goerr.Wrap(err, "failed to save journal", goerr.V("items", len(s.items)))
	}
	return nil
}

// Clear empties the journal and removes the persisted artifact
func (s *Store) Clear(ctx context.Context) error {
	s.items = nil
	if err := s.slot.Clear(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear journal")
	}
	return nil
}

// Select returns item as is, for re-rendering. It does not touch the journal.
func (s *Store) Select(item model.HistoryItem) model.HistoryItem {
	return item
}

// Find returns the entry with the given timestamp
func (s *Store) Find(timestamp int64) (model.HistoryItem, error) {
	for _, item := range s.items {
		if item.Timestamp == timestamp {
			return s.Select(item), nil
		}
	}
	return model.HistoryItem{}, goerr.Wrap(model.ErrHistoryNotFound, "no journal entry", goerr.V("timestamp", timestamp))
}

// At returns the n-th entry, counted from 1 = newest
func (s *Store) At(n int) (model.HistoryItem, error) {
	if n < 1 || n > len(s.items) {
		return model.HistoryItem{}, goerr.Wrap(model.ErrHistoryNotFound, "journal index out of range",
			goerr.V("index", n),
			goerr.V("len", len(s.items)))
	}
	return s.Select(s.items[n-1]), nil
}
