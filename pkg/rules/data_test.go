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

// TestDataValidate_LinkedDuplicates verifies multi-user data blocks are
// flagged on every owner.
func TestDataValidate_LinkedDuplicates(t *testing.T) {
	store := memstore.New()
	rule := NewDataRule(store, testLog)

	shared := &scene.MeshData{Name: "shared_mesh"}
	a := store.AddObject(&scene.SceneObject{Name: "a", Type: scene.ObjectMesh, Scale: scene.One(), Data: shared})
	b := store.AddObject(&scene.SceneObject{Name: "b", Type: scene.ObjectMesh, Scale: scene.One(), Data: shared})

	for _, obj := range []*scene.SceneObject{a, b} {
		issues := rule.Validate(obj)
		require.Len(t, issues, 1)
		assert.Equal(t, "Mesh data 'shared_mesh' has 2 users (linked duplicates)", issues[0].Message)
		assert.Equal(t, SeverityWarning, issues[0].Severity)
	}
}

// TestDataValidate_ShapeKeyVertexGroup verifies shape keys referencing a
// missing vertex group are errors.
func TestDataValidate_ShapeKeyVertexGroup(t *testing.T) {
	store := memstore.New()
	rule := NewDataRule(store, testLog)

	obj := newMesh("face")
	obj.Data.ShapeKeys = []*scene.ShapeKey{
		{Name: "Basis"},
		{Name: "Smile", VertexGroup: "mouth"},
		{Name: "Blink", VertexGroup: "eyes"},
	}
	obj.VertexGroups = []*scene.VertexGroup{
		{Name: "mouth", Weights: map[int]float32{0: 1}},
	}
	store.AddObject(obj)

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, "Shape key 'Blink' references missing vertex group 'eyes'", issues[0].Message)
	assert.Equal(t, SeverityError, issues[0].Severity)
}

// TestFixDefaultMeshNames verifies only host-default names are renamed.
func TestFixDefaultMeshNames(t *testing.T) {
	store := memstore.New()
	rule := NewDataRule(store, testLog)

	obj := store.AddObject(&scene.SceneObject{
		Name: "crate", Type: scene.ObjectMesh, Scale: scene.One(),
		Data: &scene.MeshData{Name: "Mesh.003"},
	})
	assert.True(t, rule.FixDefaultMeshNames(obj))
	assert.Equal(t, "crate_mesh", obj.Data.Name)

	named := store.AddObject(newMesh("lamp"))
	assert.False(t, rule.FixDefaultMeshNames(named))
	assert.Equal(t, "lamp_mesh", named.Data.Name)
}
