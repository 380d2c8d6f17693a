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

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/rules"
	"github.com/apexstudio/scenedoctor/pkg/scene"
	"github.com/apexstudio/scenedoctor/pkg/scene/memstore"
)

var testLog = logging.Discard()

// dirtyScene builds a store with a representative set of defects across
// several rule modules.
func dirtyScene() *memstore.Store {
	store := memstore.New()

	// Scaled mesh without UV layers.
	store.AddObject(&scene.SceneObject{
		Name: "crate", Type: scene.ObjectMesh,
		Scale: scene.Vec3{X: 2, Y: 2, Z: 2},
		Data:  &scene.MeshData{Name: "crate_mesh", VertexCount: 8, EdgeCount: 12, PolygonCount: 6},
	})

	// Legacy material on a mesh with one empty slot.
	store.AddMaterial(&scene.Material{Name: "legacy"})
	store.AddObject(&scene.SceneObject{
		Name: "lamp", Type: scene.ObjectMesh, Scale: scene.One(),
		Data: &scene.MeshData{Name: "lamp_mesh", VertexCount: 8, EdgeCount: 12, PolygonCount: 6, UVLayers: []string{"UVMap"}},
		Slots: []*scene.MaterialSlot{
			{Material: "legacy"},
			{Material: ""},
		},
	})

	// Rig widget that exclusions are expected to hide.
	store.AddObject(&scene.SceneObject{
		Name: "WGT-ctrl", Type: scene.ObjectMesh,
		Scale: scene.Vec3{X: 3, Y: 3, Z: 3},
		Data:  &scene.MeshData{Name: "widget_mesh", VertexCount: 4, EdgeCount: 4, PolygonCount: 1},
	})

	return store
}

// TestParseExclusions verifies trimming and empty-pattern filtering.
func TestParseExclusions(t *testing.T) {
	assert.Equal(t, []string{"WGT-", "TMP-"}, ParseExclusions(" WGT- , TMP-"))
	assert.Nil(t, ParseExclusions(""))
	assert.Nil(t, ParseExclusions(" , ,"))
}

// TestScan_Idempotent verifies scanning mutates nothing: two runs over
// the same store return identical findings.
func TestScan_Idempotent(t *testing.T) {
	store := dirtyScene()
	scanner := NewScanner(store, testLog)

	first := scanner.Scan(store.Objects(), nil)
	second := scanner.Scan(store.Objects(), nil)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

// TestScan_Exclusions verifies prefix-excluded objects produce no
// findings at all.
func TestScan_Exclusions(t *testing.T) {
	store := dirtyScene()
	scanner := NewScanner(store, testLog)

	findings := scanner.Scan(store.Objects(), []string{"WGT-"})
	for _, f := range findings {
		assert.NotEqual(t, "WGT-ctrl", f.ObjectName)
	}

	// Without exclusions the widget's defects show up.
	all := scanner.Scan(store.Objects(), nil)
	assert.Greater(t, len(all), len(findings))
}

// TestScan_EmptySlot verifies an empty slot yields exactly one finding
// with the "None" material placeholder.
func TestScan_EmptySlot(t *testing.T) {
	store := dirtyScene()
	scanner := NewScanner(store, testLog)

	findings := scanner.Scan(store.Objects(), nil)

	var empties []rules.Finding
	for _, f := range findings {
		if f.Category == rules.CategoryEmptySlot {
			empties = append(empties, f)
		}
	}
	require.Len(t, empties, 1)
	assert.Equal(t, "lamp", empties[0].ObjectName)
	assert.Equal(t, EmptySlotMaterial, empties[0].MaterialName)
	assert.Equal(t, "Empty material slot found.", empties[0].Message)
	assert.Equal(t, rules.SeverityWarning, empties[0].Severity)
}

// TestScan_ObjectFindingsUsePlaceholder verifies object-level findings
// carry the N/A material name while material findings carry the name.
func TestScan_ObjectFindingsUsePlaceholder(t *testing.T) {
	store := dirtyScene()
	scanner := NewScanner(store, testLog)

	findings := scanner.Scan(store.Objects(), nil)
	require.NotEmpty(t, findings)

	for _, f := range findings {
		switch f.Category {
		case rules.CategoryBrokenShader, rules.CategoryTexture, rules.CategoryShaderCompat:
			assert.NotEqual(t, rules.NoMaterial, f.MaterialName)
		case rules.CategoryEmptySlot:
			assert.Equal(t, EmptySlotMaterial, f.MaterialName)
		default:
			assert.Equal(t, rules.NoMaterial, f.MaterialName)
		}
	}
}

// TestScan_MaterialPassGated verifies slots on a type that cannot carry
// materials are ignored.
func TestScan_MaterialPassGated(t *testing.T) {
	store := memstore.New()
	scanner := NewScanner(store, testLog)
	store.AddObject(&scene.SceneObject{
		Name: "rig", Type: scene.ObjectArmature, Scale: scene.One(),
		Slots: []*scene.MaterialSlot{{Material: ""}},
	})

	assert.Empty(t, scanner.Scan(store.Objects(), nil))
}

// TestCountBySeverity verifies the tally split.
func TestCountBySeverity(t *testing.T) {
	findings := []rules.Finding{
		{Severity: rules.SeverityError},
		{Severity: rules.SeverityWarning},
		{Severity: rules.SeverityError},
	}
	errors, warnings := CountBySeverity(findings)
	assert.Equal(t, 2, errors)
	assert.Equal(t, 1, warnings)
}
