// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package memstore provides an in-memory scene.Store.
//
// It backs the CLI and HTTP front-ends (loaded from a YAML scene snapshot)
// and the engine's tests. It enforces the same preconditions a real host
// does: bakes demand object mode, sole selection, and single-user data;
// weight normalization demands weight-paint mode; removed entities fail
// later lookups.
package memstore

import (
	"fmt"
	"os"

	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// BakeEvent records one transform bake for inspection by tests.
type BakeEvent struct {
	Object string
	Data   *scene.MeshData

	// Kind is "scale" or "rotation".
	Kind string

	// Value is the transform that was baked in.
	Value scene.Vec3
}

// Store is an in-memory scene.Store.
type Store struct {
	order       []string
	objects     map[string]*scene.SceneObject
	materials   map[string]*scene.Material
	images      map[string]*scene.Image
	collections map[string][]string
	files       map[string]bool
	meshes      map[*scene.MeshData]bool

	active   *scene.SceneObject
	selected map[string]bool

	// RefreshCount counts Refresh calls, for batch-boundary assertions.
	RefreshCount int

	// Bakes logs every ApplyScale/ApplyRotation in order.
	Bakes []BakeEvent

	// Unwraps logs SmartUnwrap targets in order.
	Unwraps []string

	matSerial int
}

var _ scene.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		objects:     make(map[string]*scene.SceneObject),
		materials:   make(map[string]*scene.Material),
		images:      make(map[string]*scene.Image),
		collections: make(map[string][]string),
		files:       make(map[string]bool),
		meshes:      make(map[*scene.MeshData]bool),
		selected:    make(map[string]bool),
	}
}

// =============================================================================
// Construction helpers (host-side mutation)
// =============================================================================

// AddObject registers an object. Its mode defaults to object mode and its
// data block's user count is maintained automatically.
func (s *Store) AddObject(obj *scene.SceneObject) *scene.SceneObject {
	if obj.Mode == "" {
		obj.Mode = scene.ModeObject
	}
	s.order = append(s.order, obj.Name)
	s.objects[obj.Name] = obj
	if obj.Data != nil {
		s.meshes[obj.Data] = true
		obj.Data.Users++
	}
	return obj
}

// RemoveObject deletes an object, simulating an external actor deleting it
// mid-operation.
func (s *Store) RemoveObject(name string) {
	obj, ok := s.objects[name]
	if !ok {
		return
	}
	if obj.Data != nil {
		obj.Data.Users--
	}
	delete(s.objects, name)
	delete(s.selected, name)
	if s.active == obj {
		s.active = nil
	}
	order := s.order[:0]
	for _, n := range s.order {
		if n != name {
			order = append(order, n)
		}
	}
	s.order = order
}

// AddMaterial registers a material data block.
func (s *Store) AddMaterial(mat *scene.Material) *scene.Material {
	s.materials[mat.Name] = mat
	return mat
}

// RemoveMaterial deletes a material data block. Slots referencing it keep
// their dangling name, as in a real host.
func (s *Store) RemoveMaterial(name string) { delete(s.materials, name) }

// AddImage registers an image data block.
func (s *Store) AddImage(img *scene.Image) *scene.Image {
	s.images[img.Name] = img
	return img
}

// AddFile marks a filesystem path as existing.
func (s *Store) AddFile(path string) { s.files[path] = true }

// SetCollection binds a collection name to a list of object names.
func (s *Store) SetCollection(name string, objects []string) {
	s.collections[name] = objects
}

// Materials returns a snapshot of every registered material name.
func (s *Store) Materials() []*scene.Material {
	out := make([]*scene.Material, 0, len(s.materials))
	for _, m := range s.materials {
		out = append(out, m)
	}
	return out
}

// MaterialCount returns the number of registered materials.
func (s *Store) MaterialCount() int { return len(s.materials) }

// MeshRegistered reports whether a data block is still registered.
func (s *Store) MeshRegistered(data *scene.MeshData) bool { return s.meshes[data] }

// =============================================================================
// scene.Store implementation
// =============================================================================

// Objects implements scene.Store.
func (s *Store) Objects() []*scene.SceneObject {
	out := make([]*scene.SceneObject, 0, len(s.order))
	for _, name := range s.order {
		if obj, ok := s.objects[name]; ok {
			out = append(out, obj)
		}
	}
	return out
}

// LookupObject implements scene.Store.
func (s *Store) LookupObject(name string) (*scene.SceneObject, bool) {
	obj, ok := s.objects[name]
	return obj, ok
}

// CollectionObjects implements scene.Store.
func (s *Store) CollectionObjects(name string) ([]*scene.SceneObject, error) {
	names, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", name, scene.ErrCollectionNotFound)
	}
	var out []*scene.SceneObject
	for _, n := range names {
		if obj, ok := s.objects[n]; ok {
			out = append(out, obj)
		}
	}
	return out, nil
}

// LookupMaterial implements scene.Store.
func (s *Store) LookupMaterial(name string) (*scene.Material, bool) {
	mat, ok := s.materials[name]
	return mat, ok
}

// CreateMaterial implements scene.Store. Name collisions are uniquified
// with a numeric suffix.
func (s *Store) CreateMaterial(name string) *scene.Material {
	unique := name
	for s.materials[unique] != nil {
		s.matSerial++
		unique = fmt.Sprintf("%s.%03d", name, s.matSerial)
	}
	mat := &scene.Material{Name: unique}
	s.materials[unique] = mat
	return mat
}

// LookupImage implements scene.Store.
func (s *Store) LookupImage(name string) (*scene.Image, bool) {
	img, ok := s.images[name]
	return img, ok
}

// FileExists implements scene.Store. Paths registered with AddFile are
// authoritative; anything else falls back to the real filesystem.
func (s *Store) FileExists(path string) bool {
	if s.files[path] {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

// PackImage implements scene.Store.
func (s *Store) PackImage(img *scene.Image) error {
	if img.Source != scene.ImageSourceFile {
		return fmt.Errorf("image %q is not file-backed", img.Name)
	}
	if !s.FileExists(img.Filepath) {
		return fmt.Errorf("image %q: backing file %q does not exist", img.Name, img.Filepath)
	}
	img.Packed = true
	return nil
}

// CopyMeshData implements scene.Store.
func (s *Store) CopyMeshData(data *scene.MeshData) *scene.MeshData {
	cp := *data
	cp.Users = 0
	cp.Name = data.Name + ".copy"
	cp.UVLayers = append([]string(nil), data.UVLayers...)
	cp.ShapeKeys = make([]*scene.ShapeKey, len(data.ShapeKeys))
	for i, sk := range data.ShapeKeys {
		k := *sk
		cp.ShapeKeys[i] = &k
	}
	s.meshes[&cp] = true
	return &cp
}

// AssignMeshData implements scene.Store.
func (s *Store) AssignMeshData(obj *scene.SceneObject, data *scene.MeshData) {
	if obj.Data == data {
		return
	}
	if obj.Data != nil {
		obj.Data.Users--
	}
	obj.Data = data
	if data != nil {
		data.Users++
	}
}

// RemoveMeshData implements scene.Store.
func (s *Store) RemoveMeshData(data *scene.MeshData) error {
	if data.Users > 0 {
		return fmt.Errorf("mesh data %q: %w", data.Name, scene.ErrDataInUse)
	}
	delete(s.meshes, data)
	return nil
}

// SetMode implements scene.Store.
func (s *Store) SetMode(obj *scene.SceneObject, mode scene.Mode) error {
	if _, ok := s.objects[obj.Name]; !ok {
		return fmt.Errorf("%q: %w", obj.Name, scene.ErrObjectVanished)
	}
	obj.Mode = mode
	return nil
}

// Acquire implements scene.Store.
func (s *Store) Acquire(obj *scene.SceneObject) (func(), error) {
	if cur, ok := s.objects[obj.Name]; !ok || cur != obj {
		return nil, fmt.Errorf("%q: %w", obj.Name, scene.ErrObjectVanished)
	}

	prevActive := s.active
	prevSelected := s.selected

	s.selected = map[string]bool{obj.Name: true}
	s.active = obj

	released := false
	return func() {
		if released {
			return
		}
		released = true
		s.active = prevActive
		s.selected = prevSelected
	}, nil
}

// InWorkingSet implements scene.Store. Every registered object is in the
// working set of this store.
func (s *Store) InWorkingSet(obj *scene.SceneObject) bool {
	_, ok := s.objects[obj.Name]
	return ok
}

// ApplyScale implements scene.Store.
func (s *Store) ApplyScale(obj *scene.SceneObject) error {
	if err := s.checkBake(obj); err != nil {
		return err
	}
	s.Bakes = append(s.Bakes, BakeEvent{
		Object: obj.Name,
		Data:   obj.Data,
		Kind:   "scale",
		Value:  obj.Scale,
	})
	obj.Scale = scene.One()
	return nil
}

// ApplyRotation implements scene.Store.
func (s *Store) ApplyRotation(obj *scene.SceneObject) error {
	if err := s.checkBake(obj); err != nil {
		return err
	}
	s.Bakes = append(s.Bakes, BakeEvent{
		Object: obj.Name,
		Data:   obj.Data,
		Kind:   "rotation",
		Value:  obj.Rotation,
	})
	obj.Rotation = scene.Vec3{}
	return nil
}

// SmartUnwrap implements scene.Store.
func (s *Store) SmartUnwrap(obj *scene.SceneObject, angleLimit, islandMargin float32) error {
	if _, ok := s.objects[obj.Name]; !ok {
		return fmt.Errorf("%q: %w", obj.Name, scene.ErrObjectVanished)
	}
	if !s.soleSelection(obj) {
		return fmt.Errorf("%q: %w", obj.Name, scene.ErrNotSoleSelection)
	}
	s.Unwraps = append(s.Unwraps, obj.Name)
	return nil
}

// NormalizeWeights implements scene.Store. Each vertex's weights are scaled
// so they sum to 1.0 across all of the object's groups.
func (s *Store) NormalizeWeights(obj *scene.SceneObject) error {
	if _, ok := s.objects[obj.Name]; !ok {
		return fmt.Errorf("%q: %w", obj.Name, scene.ErrObjectVanished)
	}
	if obj.Mode != scene.ModeWeightPaint {
		return &scene.ModeError{Object: obj.Name, Want: scene.ModeWeightPaint, Have: obj.Mode}
	}

	totals := make(map[int]float32)
	for _, g := range obj.VertexGroups {
		for idx, w := range g.Weights {
			totals[idx] += w
		}
	}
	for _, g := range obj.VertexGroups {
		for idx, w := range g.Weights {
			if totals[idx] > 0 {
				g.Weights[idx] = w / totals[idx]
			}
		}
	}
	return nil
}

// Refresh implements scene.Store.
func (s *Store) Refresh() { s.RefreshCount++ }

func (s *Store) checkBake(obj *scene.SceneObject) error {
	if cur, ok := s.objects[obj.Name]; !ok || cur != obj {
		return fmt.Errorf("%q: %w", obj.Name, scene.ErrObjectVanished)
	}
	if obj.Mode != scene.ModeObject {
		return &scene.ModeError{Object: obj.Name, Want: scene.ModeObject, Have: obj.Mode}
	}
	if !s.soleSelection(obj) {
		return fmt.Errorf("%q: %w", obj.Name, scene.ErrNotSoleSelection)
	}
	if obj.Data != nil && obj.Data.Users > 1 {
		return fmt.Errorf("%q: %w", obj.Name, scene.ErrMultiUserData)
	}
	return nil
}

func (s *Store) soleSelection(obj *scene.SceneObject) bool {
	return s.active == obj && len(s.selected) == 1 && s.selected[obj.Name]
}
