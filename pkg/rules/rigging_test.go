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

// riggedMesh builds a mesh deformed by an armature with the given bones.
func riggedMesh(store *memstore.Store, bones ...string) *scene.SceneObject {
	store.AddObject(&scene.SceneObject{
		Name: "rig", Type: scene.ObjectArmature, Scale: scene.One(),
		Armature: &scene.ArmatureData{Bones: bones},
	})
	obj := newMesh("body")
	obj.Modifiers = []*scene.Modifier{
		{Name: "Armature", Type: scene.ModifierArmature, Target: "rig"},
	}
	return store.AddObject(obj)
}

// TestRiggingValidate_EmptyAndZeroWeight verifies the two degenerate
// group warnings.
func TestRiggingValidate_EmptyAndZeroWeight(t *testing.T) {
	store := memstore.New()
	rule := NewRiggingRule(store, testLog)
	obj := store.AddObject(newMesh("body"))
	obj.VertexGroups = []*scene.VertexGroup{
		{Name: "empty", Weights: map[int]float32{}},
		{Name: "weightless", Weights: map[int]float32{0: 0, 1: 0}},
		{Name: "fine", Weights: map[int]float32{0: 1}},
	}

	issues := rule.Validate(obj)
	require.Len(t, issues, 2)
	assert.Equal(t, "Vertex group 'empty' is empty (no vertices assigned)", issues[0].Message)
	assert.Equal(t, "Vertex group 'weightless' has zero total weight", issues[1].Message)
}

// TestRiggingValidate_Orphaned verifies groups without a matching bone
// in the deforming armature are flagged.
func TestRiggingValidate_Orphaned(t *testing.T) {
	store := memstore.New()
	rule := NewRiggingRule(store, testLog)
	obj := riggedMesh(store, "spine", "arm")
	obj.VertexGroups = []*scene.VertexGroup{
		{Name: "spine", Weights: map[int]float32{0: 1}},
		{Name: "tail", Weights: map[int]float32{1: 0.5}},
	}

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, "Orphaned vertex group 'tail' (no matching bone in armature)", issues[0].Message)
	assert.Equal(t, CategoryRigging, issues[0].Category)
}

// TestRiggingValidate_NoArmature verifies orphan checks are skipped when
// nothing deforms the mesh.
func TestRiggingValidate_NoArmature(t *testing.T) {
	store := memstore.New()
	rule := NewRiggingRule(store, testLog)
	obj := store.AddObject(newMesh("prop"))
	obj.VertexGroups = []*scene.VertexGroup{
		{Name: "whatever", Weights: map[int]float32{0: 1}},
	}

	assert.Empty(t, rule.Validate(obj))
}

// TestFixVertexGroups verifies removal accounting and that the surviving
// groups get normalized.
func TestFixVertexGroups(t *testing.T) {
	store := memstore.New()
	rule := NewRiggingRule(store, testLog)
	obj := riggedMesh(store, "spine", "arm")
	obj.VertexGroups = []*scene.VertexGroup{
		{Name: "empty", Weights: map[int]float32{}},
		{Name: "tail", Weights: map[int]float32{0: 0.5}},
		{Name: "spine", Weights: map[int]float32{0: 0.5, 1: 2}},
		{Name: "arm", Weights: map[int]float32{0: 1.5}},
	}

	result := rule.FixVertexGroups(obj)
	assert.Equal(t, 1, result.EmptyRemoved)
	assert.Equal(t, 1, result.OrphanedRemoved)
	assert.Equal(t, 1, result.Normalized)
	assert.Equal(t, 3, result.Total())

	require.Len(t, obj.VertexGroups, 2)
	assert.InDelta(t, 0.25, obj.VertexGroups[0].Weights[0], 1e-6)
	assert.InDelta(t, 1.0, obj.VertexGroups[0].Weights[1], 1e-6)
	assert.InDelta(t, 0.75, obj.VertexGroups[1].Weights[0], 1e-6)

	// The fix drops back to object mode when done.
	assert.Equal(t, scene.ModeObject, obj.Mode)
}

// TestFixVertexGroups_AllRemoved verifies normalization is skipped when
// no groups survive.
func TestFixVertexGroups_AllRemoved(t *testing.T) {
	store := memstore.New()
	rule := NewRiggingRule(store, testLog)
	obj := store.AddObject(newMesh("body"))
	obj.VertexGroups = []*scene.VertexGroup{
		{Name: "empty", Weights: map[int]float32{}},
	}

	result := rule.FixVertexGroups(obj)
	assert.Equal(t, 1, result.EmptyRemoved)
	assert.Equal(t, 0, result.Normalized)
	assert.Empty(t, obj.VertexGroups)
}
