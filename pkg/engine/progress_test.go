// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRunContext_Lifecycle verifies the begin/update/finish state flow.
func TestRunContext_Lifecycle(t *testing.T) {
	rc := NewRunContext(nil)
	assert.NotEmpty(t, rc.ID())

	rc.Begin()
	snap := rc.Snapshot()
	assert.True(t, snap.Processing)
	assert.Equal(t, ProgressInit, snap.Percentage)
	assert.Equal(t, "Initializing...", snap.Message)

	rc.Update(ProgressFixing, "Running auto-fixes...")
	rc.Add(CountScalesApplied, 3)
	rc.Add(CountScalesApplied, 2)
	rc.Add(CountUVsGenerated, 0)

	snap = rc.Snapshot()
	assert.Equal(t, ProgressFixing, snap.Percentage)
	assert.Equal(t, 5, snap.Counters[CountScalesApplied])
	_, tracked := snap.Counters[CountUVsGenerated]
	assert.False(t, tracked, "zero increments are not recorded")

	rc.Finish()
	assert.False(t, rc.Snapshot().Processing)
}

// TestRunContext_SnapshotIsolated verifies mutating a snapshot's counter
// map does not leak back into the run.
func TestRunContext_SnapshotIsolated(t *testing.T) {
	rc := NewRunContext(nil)
	rc.Add(CountScalesApplied, 1)

	snap := rc.Snapshot()
	snap.Counters[CountScalesApplied] = 99

	require.Equal(t, 1, rc.Snapshot().Counters[CountScalesApplied])
}

// TestRunContext_ObserverSeesEveryUpdate verifies the observer callback
// fires for begin, updates and finish.
func TestRunContext_ObserverSeesEveryUpdate(t *testing.T) {
	var calls int
	rc := NewRunContext(func(Progress) { calls++ })

	rc.Begin()
	rc.Update(ProgressScanning, "Scanning objects...")
	rc.Finish()

	assert.Equal(t, 3, calls)
}
