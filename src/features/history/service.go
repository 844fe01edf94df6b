// Package history persists the outcome of every processed unit so operators
// can audit what past batch runs did to their collection.
package history

import (
	"context"
	"log/slog"
	"time"
)

// Entry is one recorded unit outcome.
type Entry struct {
	ID        string        `json:"id"`
	JobID     string        `json:"jobId,omitempty"`
	UnitName  string        `json:"unitName"`
	Directory string        `json:"directory"`
	CueFile   string        `json:"cueFile"`
	Tracks    int           `json:"tracks"`
	State     string        `json:"state"`
	Reason    string        `json:"reason,omitempty"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Summary aggregates entries by terminal state.
type Summary struct {
	Total      int `json:"total"`
	Committed  int `json:"committed"`
	RolledBack int `json:"rolledBack"`
	Skipped    int `json:"skipped"`
}

// Store is the persistence backend for merge history.
type Store interface {
	Add(ctx context.Context, entry Entry) error
	List(ctx context.Context, limit int) ([]Entry, error)
	Summarize(ctx context.Context) (Summary, error)
	Clear(ctx context.Context) error
}

// Service is the domain service for the history feature.
type Service struct {
	store Store
}

// NewService creates a new history service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Record stores one unit outcome. Persistence failures are logged but never
// surface to the caller: history is bookkeeping, not part of the merge.
func (s *Service) Record(ctx context.Context, entry Entry) {
	if err := s.store.Add(ctx, entry); err != nil {
		slog.Error("History: failed to record unit outcome", "unit", entry.UnitName, "error", err)
	}
}

// List returns the most recent entries, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]Entry, error) {
	return s.store.List(ctx, limit)
}

// Summarize aggregates all recorded outcomes.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	return s.store.Summarize(ctx)
}

// Clear deletes all recorded outcomes.
func (s *Service) Clear(ctx context.Context) error {
	return s.store.Clear(ctx)
}
