package model

import (
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// HistoryItem is one journal entry: a past query paired with its answer
type HistoryItem struct {
	Query  string       `json:"query"`
	Result OracleResult `json:"result"`

	// Timestamp is the creation instant in milliseconds since epoch. It is
	// unique within a journal and used as the key of the entry.
	Timestamp int64 `json:"timestamp"`
}

// NewHistoryItem builds an item from a raw query. The query is trimmed.
func NewHistoryItem(query string, result OracleResult, at time.Time) HistoryItem {
	return HistoryItem{
		Query:     strings.TrimSpace(query),
		Result:    result,
		Timestamp: at.UnixMilli(),
	}
}

// CreatedAt returns the timestamp as time.Time
func (h HistoryItem) CreatedAt() time.Time {
	return time.UnixMilli(h.Timestamp)
}

// Validate checks if the item can be stored in a journal
func (h HistoryItem) Validate() error {
	if strings.TrimSpace(h.Query) == "" {
		return goerr.Wrap(ErrInvalidHistoryItem, "query is empty", goerr.V("timestamp", h.Timestamp))
	}
	if h.Timestamp <= 0 {
		return goerr.Wrap(ErrInvalidHistoryItem, "timestamp is not set", goerr.V("query", h.Query))
	}
	if err := h.Result.Validate(); err != nil {
		return goerr.Wrap(err, "invalid result in history item", goerr.V("timestamp", h.Timestamp))
	}
	return nil
}
