// Package source resolves which schedule document governs the current week
// and loads it from a local directory or an HTTP endpoint.
package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	appLog "classclock/internal/log"
	"classclock/internal/schedule"
)

// ErrNotFound reports that a provider has no document under the given
// name. It lets the resolver fall through tiers without treating absence
// as a failure.
var ErrNotFound = errors.New("source: document not found")

// Provider supplies raw schedule documents by file name
// (e.g. "2026-08-23.json", "normal.json").
type Provider interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// normalName is the default schedule document.
const normalName = "normal.json"

// WeekStart returns midnight on the Sunday starting now's week, in now's
// location. Week-specific override documents are named by this date.
func WeekStart(now time.Time) time.Time {
	sunday := now.AddDate(0, 0, -int(now.Weekday()))
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 0, 0, 0, 0, now.Location())
}

// Resolver implements the two-tier schedule resolution: a week-dated
// override document first, then the normal default. One load attempt per
// tier; no retries.
type Resolver struct {
	provider Provider
}

func NewResolver(p Provider) *Resolver {
	return &Resolver{provider: p}
}

// Resolve loads the schedule state governing now. When both tiers fail,
// schedule.ErrNoSchedule is returned and the caller operates degraded.
func (r *Resolver) Resolve(ctx context.Context, now time.Time) (*schedule.State, error) {
	weekID := WeekStart(now).Format("2006-01-02")

	if doc, err := r.loadDocument(ctx, weekID+".json"); err == nil {
		appLog.Info("source: loaded weekly override schedule", "week", weekID)
		return &schedule.State{Doc: doc, Override: true, LoadedAt: now}, nil
	} else if !errors.Is(err, ErrNotFound) {
		appLog.Error("source: weekly schedule load failed", err, "week", weekID)
	}

	if doc, err := r.loadDocument(ctx, normalName); err == nil {
		appLog.Info("source: loaded normal schedule")
		return &schedule.State{Doc: doc, Override: false, LoadedAt: now}, nil
	} else if !errors.Is(err, ErrNotFound) {
		appLog.Error("source: normal schedule load failed", err)
	}

	return nil, fmt.Errorf("source: all tiers failed: %w", schedule.ErrNoSchedule)
}

func (r *Resolver) loadDocument(ctx context.Context, name string) (*schedule.Document, error) {
	data, err := r.provider.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	return schedule.ParseDocument(data)
}

// DirProvider serves schedule documents from a local directory.
type DirProvider struct {
	Dir string
}

func (d *DirProvider) Fetch(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

// Store holds the current immutable schedule state for the rest of the
// process. Reloads replace the whole value; readers never see a partially
// updated schedule.
type Store struct {
	mu    sync.RWMutex
	state *schedule.State
}

// Current returns the active state, or nil before the first successful
// load (the degraded state).
func (s *Store) Current() *schedule.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Set(state *schedule.State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}
