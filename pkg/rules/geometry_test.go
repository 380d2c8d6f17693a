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

// TestGeometryValidate_NoData verifies a data-less mesh object is an
// error.
func TestGeometryValidate_NoData(t *testing.T) {
	store := memstore.New()
	rule := NewGeometryRule(store, testLog)
	obj := store.AddObject(&scene.SceneObject{Name: "cube", Type: scene.ObjectMesh, Scale: scene.One()})

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, "Mesh object has no data.", issues[0].Message)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

// TestGeometryValidate_DegenerateMesh verifies loose-geometry warnings.
func TestGeometryValidate_DegenerateMesh(t *testing.T) {
	store := memstore.New()
	rule := NewGeometryRule(store, testLog)
	obj := store.AddObject(&scene.SceneObject{
		Name: "dust", Type: scene.ObjectMesh, Scale: scene.One(),
		Data: &scene.MeshData{Name: "dust_mesh", VertexCount: 12},
	})

	issues := rule.Validate(obj)
	require.Len(t, issues, 2)
	assert.Equal(t, "Mesh has 12 vertices but no faces", issues[0].Message)
	assert.Equal(t, "Mesh has 12 loose vertices (no edges)", issues[1].Message)
}

// TestGeometryValidate_MissingUVs verifies a faced mesh without UV
// layers is an error.
func TestGeometryValidate_MissingUVs(t *testing.T) {
	store := memstore.New()
	rule := NewGeometryRule(store, testLog)
	obj := newMesh("cube")
	obj.Data.UVLayers = nil
	store.AddObject(obj)

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, "Mesh has no UV maps", issues[0].Message)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

// TestGeometryValidate_PolyThresholds verifies the high and very-high
// bands, including the digit grouping in messages.
func TestGeometryValidate_PolyThresholds(t *testing.T) {
	store := memstore.New()
	rule := NewGeometryRule(store, testLog)

	obj := newMesh("dense")
	obj.Data.PolygonCount = 75000
	store.AddObject(obj)

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, "High poly count: 75,000 faces", issues[0].Message)

	obj.Data.PolygonCount = 1500000
	issues = rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, "Very high poly count: 1,500,000 faces (may cause performance issues)", issues[0].Message)
}

// TestGeometryValidate_CustomThresholds verifies SetPolyThresholds moves
// the bands.
func TestGeometryValidate_CustomThresholds(t *testing.T) {
	store := memstore.New()
	rule := NewGeometryRule(store, testLog)
	rule.SetPolyThresholds(100, 200)

	obj := newMesh("dense")
	obj.Data.PolygonCount = 150
	store.AddObject(obj)

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, "High poly count: 150 faces", issues[0].Message)
}

// TestFixMissingUVs verifies the layer is created and the unwrap runs
// with the object acquired.
func TestFixMissingUVs(t *testing.T) {
	store := memstore.New()
	rule := NewGeometryRule(store, testLog)
	obj := newMesh("cube")
	obj.Data.UVLayers = nil
	store.AddObject(obj)

	assert.True(t, rule.FixMissingUVs(obj))
	assert.Equal(t, []string{"UVMap"}, obj.Data.UVLayers)
	assert.Equal(t, []string{"cube"}, store.Unwraps)

	// Second run is a no-op: the layer exists now.
	assert.False(t, rule.FixMissingUVs(obj))
	assert.Len(t, store.Unwraps, 1)
}

// TestFixMissingUVs_NoFaces verifies face-less meshes are not unwrapped.
func TestFixMissingUVs_NoFaces(t *testing.T) {
	store := memstore.New()
	rule := NewGeometryRule(store, testLog)
	obj := store.AddObject(&scene.SceneObject{
		Name: "dust", Type: scene.ObjectMesh, Scale: scene.One(),
		Data: &scene.MeshData{Name: "dust_mesh", VertexCount: 3},
	})

	assert.False(t, rule.FixMissingUVs(obj))
	assert.Empty(t, obj.Data.UVLayers)
}
