// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scene

// Store is the boundary to the host runtime that owns the scene graph.
//
// The store is shared mutable state with no transactions: the host (or the
// user driving it) may delete or restructure entities between any two
// calls. Consumers therefore treat every returned pointer as valid only
// until the next store call, re-resolve entities by name before each use,
// and iterate over snapshots when the loop body mutates the graph.
type Store interface {
	// Objects returns a snapshot of every object in the scene, in the
	// store's stable enumeration order.
	Objects() []*SceneObject

	// LookupObject resolves an object by name. The second result is
	// false when the object no longer exists.
	LookupObject(name string) (*SceneObject, bool)

	// CollectionObjects returns a snapshot of a named collection's
	// objects. Returns ErrCollectionNotFound for an unknown name.
	CollectionObjects(name string) ([]*SceneObject, error)

	// LookupMaterial resolves a material data block by name.
	LookupMaterial(name string) (*Material, bool)

	// CreateMaterial creates and registers an empty material. The host
	// uniquifies the name if it collides.
	CreateMaterial(name string) *Material

	// LookupImage resolves an image data block by name.
	LookupImage(name string) (*Image, bool)

	// FileExists reports whether an image's backing path resolves to an
	// existing file on the host.
	FileExists(path string) bool

	// PackImage embeds a file-backed image's payload into the store.
	PackImage(img *Image) error

	// CopyMeshData clones a geometry block. The copy starts with zero
	// users; assign it with AssignMeshData.
	CopyMeshData(data *MeshData) *MeshData

	// AssignMeshData points obj at data, maintaining user counts on both
	// the old and new blocks.
	AssignMeshData(obj *SceneObject, data *MeshData)

	// RemoveMeshData releases an unreferenced geometry block. Returns
	// ErrDataInUse when the block still has users.
	RemoveMeshData(data *MeshData) error

	// SetMode switches an object's interaction mode.
	SetMode(obj *SceneObject, mode Mode) error

	// Acquire takes exclusive operating rights on one object: it becomes
	// the sole selection and the active object. The returned release
	// func restores the previous selection state and must be called on
	// every exit path.
	Acquire(obj *SceneObject) (release func(), err error)

	// InWorkingSet reports whether the object is part of the active
	// working set (visible to bulk operators).
	InWorkingSet(obj *SceneObject) bool

	// ApplyScale bakes the object's pending scale into its data block.
	// Requires ModeObject, sole selection, and single-user data.
	ApplyScale(obj *SceneObject) error

	// ApplyRotation bakes the object's pending rotation into its data
	// block, under the same preconditions as ApplyScale.
	ApplyRotation(obj *SceneObject) error

	// SmartUnwrap runs the host's automatic unwrap over the object's
	// active UV layer with the given angle limit (degrees) and island
	// margin.
	SmartUnwrap(obj *SceneObject, angleLimit, islandMargin float32) error

	// NormalizeWeights runs the host's normalize-all pass over the
	// object's vertex groups. Requires ModeWeightPaint.
	NormalizeWeights(obj *SceneObject) error

	// Refresh forces a graph-consistency refresh, flushing any pending
	// structural updates. Called between repair batches.
	Refresh()
}
