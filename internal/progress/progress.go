// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package progress records job lifecycle events of batch runs and serves
// snapshots of the latest state of every job.
package progress

import (
	"context"
	"errors"
	"sync"

	"github.com/pdiddy/datasheet-engine/pkg/types"
)

// ErrNoRuns is returned by LatestRun when nothing has been recorded.
var ErrNoRuns = errors.New("no runs recorded")

// Store receives job events from concurrent workers. Implementations must
// be safe for concurrent use. Snapshots are copies; callers never observe
// later updates through them.
type Store interface {
	// Publish appends an event for the job in run.
	Publish(ctx context.Context, runID string, ev types.JobEvent) error

	// Snapshot returns the latest event of every job in run, ordered by
	// the first time each job was seen.
	Snapshot(ctx context.Context, runID string) ([]types.JobEvent, error)

	// LatestRun returns the run that published most recently.
	LatestRun(ctx context.Context) (string, error)

	Close() error
}

// MemoryStore keeps events in process memory.
type MemoryStore struct {
	mu     sync.Mutex
	runs   map[string]*memoryRun
	latest string
}

type memoryRun struct {
	order []string
	jobs  map[string]types.JobEvent
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]*memoryRun)}
}

// Publish implements Store.
func (s *MemoryStore) Publish(_ context.Context, runID string, ev types.JobEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		r = &memoryRun{jobs: make(map[string]types.JobEvent)}
		s.runs[runID] = r
	}
	if _, seen := r.jobs[ev.JobID]; !seen {
		r.order = append(r.order, ev.JobID)
	}
	r.jobs[ev.JobID] = ev
	s.latest = runID
	return nil
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context, runID string) ([]types.JobEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.runs[runID]
	if !ok {
		return []types.JobEvent{}, nil
	}
	out := make([]types.JobEvent, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.jobs[id])
	}
	return out, nil
}

// LatestRun implements Store.
func (s *MemoryStore) LatestRun(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == "" {
		return "", ErrNoRuns
	}
	return s.latest, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
