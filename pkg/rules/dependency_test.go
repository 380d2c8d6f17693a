// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexstudio/scenedoctor/pkg/scene"
	"github.com/apexstudio/scenedoctor/pkg/scene/memstore"
)

// parentChain registers a list of objects where each is parented to the
// next, with the last optionally closing the loop.
func parentChain(store *memstore.Store, names []string, loop bool) []*scene.SceneObject {
	objs := make([]*scene.SceneObject, len(names))
	for i, name := range names {
		objs[i] = store.AddObject(&scene.SceneObject{
			Name: name, Type: scene.ObjectEmpty, Scale: scene.One(),
		})
	}
	for i := 0; i < len(objs)-1; i++ {
		objs[i].Parent = names[i+1]
	}
	if loop {
		objs[len(objs)-1].Parent = names[0]
	}
	return objs
}

// TestDetectParentLoop_MinimalCycle verifies the reported cycle is the
// minimal one regardless of where the walk starts.
func TestDetectParentLoop_MinimalCycle(t *testing.T) {
	store := memstore.New()
	objs := parentChain(store, []string{"leaf", "a", "b", "c"}, false)
	// a → b → c → a; leaf hangs off the cycle.
	objs[3].Parent = "a"

	// From inside the cycle.
	assert.Equal(t, []string{"a", "b", "c", "a"}, DetectParentLoop(store, objs[1]))
	assert.Equal(t, []string{"b", "c", "a", "b"}, DetectParentLoop(store, objs[2]))

	// From outside: the leaf's walk still finds only the cycle members.
	assert.Equal(t, []string{"a", "b", "c", "a"}, DetectParentLoop(store, objs[0]))
}

// TestDetectParentLoop_Terminates verifies acyclic chains and vanished
// parents return nil.
func TestDetectParentLoop_Terminates(t *testing.T) {
	store := memstore.New()
	objs := parentChain(store, []string{"a", "b", "c"}, false)
	assert.Nil(t, DetectParentLoop(store, objs[0]))

	objs[0].Parent = "gone"
	assert.Nil(t, DetectParentLoop(store, objs[0]))
}

// TestDependencyValidate_ParentLoop verifies the finding message renders
// the chain.
func TestDependencyValidate_ParentLoop(t *testing.T) {
	store := memstore.New()
	rule := NewDependencyRule(store, testLog)
	objs := parentChain(store, []string{"a", "b"}, true)

	issues := rule.Validate(objs[0])
	require.Len(t, issues, 1)
	assert.Equal(t, CategoryCircularDependency, issues[0].Category)
	assert.Equal(t, "Parent loop detected: a → b → a", issues[0].Message)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

// TestDependencyValidate_ConstraintLoop verifies a two-object mutual
// constraint is flagged.
func TestDependencyValidate_ConstraintLoop(t *testing.T) {
	store := memstore.New()
	rule := NewDependencyRule(store, testLog)

	a := store.AddObject(newMesh("a"))
	b := store.AddObject(newMesh("b"))
	a.Constraints = []*scene.Constraint{{Name: "Follow", Type: "COPY_LOCATION", Target: "b"}}
	b.Constraints = []*scene.Constraint{{Name: "Follow", Type: "COPY_LOCATION", Target: "a"}}

	issues := rule.Validate(a)
	require.Len(t, issues, 1)
	assert.Equal(t, "Constraint loop: 'a' ↔ 'b'", issues[0].Message)
}

// TestDependencyValidate_OneWayConstraint verifies a one-directional
// constraint is fine.
func TestDependencyValidate_OneWayConstraint(t *testing.T) {
	store := memstore.New()
	rule := NewDependencyRule(store, testLog)

	a := store.AddObject(newMesh("a"))
	store.AddObject(newMesh("b"))
	a.Constraints = []*scene.Constraint{{Name: "Follow", Type: "COPY_LOCATION", Target: "b"}}

	assert.Empty(t, rule.Validate(a))
}

// TestFixParentLoop verifies the loop is broken at the object the fix
// runs on and nothing else changes.
func TestFixParentLoop(t *testing.T) {
	store := memstore.New()
	rule := NewDependencyRule(store, testLog)
	objs := parentChain(store, []string{"a", "b", "c"}, true)

	assert.True(t, rule.FixParentLoop(objs[0]))
	assert.Equal(t, "", objs[0].Parent)
	assert.Equal(t, "c", objs[1].Parent)

	assert.Nil(t, DetectParentLoop(store, objs[0]))
	assert.Nil(t, DetectParentLoop(store, objs[1]))
	assert.False(t, rule.FixParentLoop(objs[0]))
}

// TestDetectDriverChain_Branching verifies branch-local visited state:
// two branches sharing a leaf are not a cycle.
func TestDetectDriverChain_Branching(t *testing.T) {
	store := memstore.New()

	root := store.AddObject(newMesh("root"))
	left := store.AddObject(newMesh("left"))
	right := store.AddObject(newMesh("right"))
	store.AddObject(newMesh("leaf"))

	addDriver(root, "p", driverOn("left", "right"))
	addDriver(left, "p", driverOn("leaf"))
	addDriver(right, "p", driverOn("leaf"))

	assert.Nil(t, DetectDriverChain(store, root))
}
