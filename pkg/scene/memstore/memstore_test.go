// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package memstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexstudio/scenedoctor/pkg/scene"
)

func addMesh(s *Store, name string) *scene.SceneObject {
	return s.AddObject(&scene.SceneObject{
		Name:  name,
		Type:  scene.ObjectMesh,
		Scale: scene.One(),
		Data:  &scene.MeshData{Name: name + "_mesh"},
	})
}

// TestObjects_StableOrder verifies enumeration follows insertion order
// and survives removals.
func TestObjects_StableOrder(t *testing.T) {
	s := New()
	addMesh(s, "c")
	addMesh(s, "a")
	addMesh(s, "b")
	s.RemoveObject("a")

	var names []string
	for _, obj := range s.Objects() {
		names = append(names, obj.Name)
	}
	assert.Equal(t, []string{"c", "b"}, names)
}

// TestUserCounts verifies data-block user accounting through add, share
// and remove.
func TestUserCounts(t *testing.T) {
	s := New()
	shared := &scene.MeshData{Name: "shared"}
	s.AddObject(&scene.SceneObject{Name: "a", Type: scene.ObjectMesh, Scale: scene.One(), Data: shared})
	s.AddObject(&scene.SceneObject{Name: "b", Type: scene.ObjectMesh, Scale: scene.One(), Data: shared})
	assert.Equal(t, 2, shared.Users)

	s.RemoveObject("a")
	assert.Equal(t, 1, shared.Users)
}

// TestCopyAssignRemoveMeshData verifies the copy starts unreferenced,
// assignment moves user counts, and in-use blocks refuse removal.
func TestCopyAssignRemoveMeshData(t *testing.T) {
	s := New()
	obj := addMesh(s, "a")
	original := obj.Data

	cp := s.CopyMeshData(original)
	assert.Equal(t, 0, cp.Users)
	assert.True(t, s.MeshRegistered(cp))

	s.AssignMeshData(obj, cp)
	assert.Equal(t, 1, cp.Users)
	assert.Equal(t, 0, original.Users)

	require.ErrorIs(t, s.RemoveMeshData(cp), scene.ErrDataInUse)
	require.NoError(t, s.RemoveMeshData(original))
	assert.False(t, s.MeshRegistered(original))
}

// TestAcquire_RestoresSelection verifies release puts the previous
// selection state back and is idempotent.
func TestAcquire_RestoresSelection(t *testing.T) {
	s := New()
	a := addMesh(s, "a")
	b := addMesh(s, "b")

	releaseA, err := s.Acquire(a)
	require.NoError(t, err)

	// While a is held it is the sole selection; a bake on b must fail.
	b.Scale = scene.Vec3{X: 2, Y: 2, Z: 2}
	assert.ErrorIs(t, s.ApplyScale(b), scene.ErrNotSoleSelection)

	releaseA()
	releaseA() // second call is a no-op

	releaseB, err := s.Acquire(b)
	require.NoError(t, err)
	defer releaseB()
	require.NoError(t, s.ApplyScale(b))
	assert.True(t, b.Scale.IsIdentityScale())
}

// TestAcquire_VanishedObject verifies acquiring a removed object fails.
func TestAcquire_VanishedObject(t *testing.T) {
	s := New()
	a := addMesh(s, "a")
	s.RemoveObject("a")

	_, err := s.Acquire(a)
	assert.ErrorIs(t, err, scene.ErrObjectVanished)
}

// TestApplyScale_Preconditions verifies mode and multi-user guards.
func TestApplyScale_Preconditions(t *testing.T) {
	s := New()
	shared := &scene.MeshData{Name: "shared"}
	a := s.AddObject(&scene.SceneObject{Name: "a", Type: scene.ObjectMesh, Scale: scene.Vec3{X: 2, Y: 2, Z: 2}, Data: shared})
	s.AddObject(&scene.SceneObject{Name: "b", Type: scene.ObjectMesh, Scale: scene.One(), Data: shared})

	release, err := s.Acquire(a)
	require.NoError(t, err)
	defer release()

	assert.ErrorIs(t, s.ApplyScale(a), scene.ErrMultiUserData)

	require.NoError(t, s.SetMode(a, scene.ModeEdit))
	assert.ErrorIs(t, s.ApplyScale(a), scene.ErrWrongMode)
}

// TestNormalizeWeights verifies per-vertex normalization across groups
// and the weight-paint mode requirement.
func TestNormalizeWeights(t *testing.T) {
	s := New()
	obj := addMesh(s, "body")
	obj.VertexGroups = []*scene.VertexGroup{
		{Name: "a", Weights: map[int]float32{0: 1, 1: 3}},
		{Name: "b", Weights: map[int]float32{0: 3}},
	}

	assert.ErrorIs(t, s.NormalizeWeights(obj), scene.ErrWrongMode)

	require.NoError(t, s.SetMode(obj, scene.ModeWeightPaint))
	require.NoError(t, s.NormalizeWeights(obj))

	assert.InDelta(t, 0.25, obj.VertexGroups[0].Weights[0], 1e-6)
	assert.InDelta(t, 0.75, obj.VertexGroups[1].Weights[0], 1e-6)
	assert.InDelta(t, 1.0, obj.VertexGroups[0].Weights[1], 1e-6)
}

// TestCreateMaterial_Uniquifies verifies name collisions get a numeric
// suffix.
func TestCreateMaterial_Uniquifies(t *testing.T) {
	s := New()
	first := s.CreateMaterial("Mat")
	second := s.CreateMaterial("Mat")

	assert.Equal(t, "Mat", first.Name)
	assert.NotEqual(t, first.Name, second.Name)
	assert.Equal(t, 2, s.MaterialCount())
}

// TestCollectionObjects verifies membership resolution and the unknown
// collection error.
func TestCollectionObjects(t *testing.T) {
	s := New()
	addMesh(s, "a")
	addMesh(s, "b")
	s.SetCollection("Props", []string{"a", "ghost"})

	objs, err := s.CollectionObjects("Props")
	require.NoError(t, err)
	require.Len(t, objs, 1)
	assert.Equal(t, "a", objs[0].Name)

	_, err = s.CollectionObjects("Nope")
	assert.ErrorIs(t, err, scene.ErrCollectionNotFound)
}

// TestPackImage verifies file-backed images with a resolvable path pack,
// everything else errors.
func TestPackImage(t *testing.T) {
	s := New()
	s.AddFile("/tex/ok.png")

	ok := s.AddImage(&scene.Image{Name: "ok", Source: scene.ImageSourceFile, Filepath: "/tex/ok.png"})
	require.NoError(t, s.PackImage(ok))
	assert.True(t, ok.Packed)

	gone := s.AddImage(&scene.Image{Name: "gone", Source: scene.ImageSourceFile, Filepath: "/tex/gone.png"})
	assert.Error(t, s.PackImage(gone))

	gen := s.AddImage(&scene.Image{Name: "gen", Source: scene.ImageSourceGenerated})
	assert.Error(t, s.PackImage(gen))
}
