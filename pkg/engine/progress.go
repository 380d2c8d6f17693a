// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"sync"

	"github.com/google/uuid"
)

// Progress milestone percentages. A run always passes through them in
// order; there are no intermediate updates between milestones.
const (
	ProgressInit       = 0.0
	ProgressScanning   = 5.0
	ProgressFixing     = 10.0
	ProgressFixesDone  = 80.0
	ProgressRescanning = 90.0
	ProgressComplete   = 100.0
)

// Progress is a point-in-time snapshot of a run.
type Progress struct {
	RunID      string         `json:"run_id"`
	Percentage float64        `json:"percentage"`
	Message    string         `json:"message"`
	Processing bool           `json:"processing"`
	Counters   map[string]int `json:"counters"`
}

// Observer receives a snapshot after every progress update.
type Observer func(Progress)

// RunContext carries the mutable state of one scan or fix run: progress
// percentage, status message and live per-category counters. The engine
// itself is single-threaded; the mutex exists for observers polling from
// another goroutine (the websocket feed).
type RunContext struct {
	id       string
	observer Observer

	mu         sync.Mutex
	percentage float64
	message    string
	processing bool
	counters   map[string]int
}

// NewRunContext creates a run context with a fresh run ID. observer may
// be nil.
func NewRunContext(observer Observer) *RunContext {
	return &RunContext{
		id:       uuid.NewString(),
		observer: observer,
		counters: make(map[string]int),
	}
}

// ID returns the run's unique identifier.
func (rc *RunContext) ID() string { return rc.id }

// Begin marks the run as in progress at the init milestone.
func (rc *RunContext) Begin() {
	rc.mu.Lock()
	rc.processing = true
	rc.percentage = ProgressInit
	rc.message = "Initializing..."
	rc.mu.Unlock()
	rc.notify()
}

// Update moves the run to a milestone.
func (rc *RunContext) Update(percentage float64, message string) {
	rc.mu.Lock()
	rc.percentage = percentage
	rc.message = message
	rc.mu.Unlock()
	rc.notify()
}

// Add increments a per-category counter.
func (rc *RunContext) Add(category string, n int) {
	if n == 0 {
		return
	}
	rc.mu.Lock()
	rc.counters[category] += n
	rc.mu.Unlock()
}

// Finish clears the in-progress flag. Runs call it deferred so the flag
// resets on every exit path.
func (rc *RunContext) Finish() {
	rc.mu.Lock()
	rc.processing = false
	rc.mu.Unlock()
	rc.notify()
}

// Snapshot returns a copy of the current state.
func (rc *RunContext) Snapshot() Progress {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	counters := make(map[string]int, len(rc.counters))
	for k, v := range rc.counters {
		counters[k] = v
	}
	return Progress{
		RunID:      rc.id,
		Percentage: rc.percentage,
		Message:    rc.message,
		Processing: rc.processing,
		Counters:   counters,
	}
}

func (rc *RunContext) notify() {
	if rc.observer != nil {
		rc.observer(rc.Snapshot())
	}
}
