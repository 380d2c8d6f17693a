// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scene defines the data model of the hierarchical scene graph and
// the Store boundary through which the engine reads and mutates it.
//
// The engine never creates or destroys SceneObjects; it only mutates their
// fields and invokes host-provided bulk operations through Store. Every
// cross-entity reference in this model is a weak reference (a name resolved
// through the Store), never a live pointer to another object, because the
// host may delete entities at any time between operations.
package scene

import (
	"github.com/chewxy/math32"
)

// Epsilon is the tolerance used for all transform comparisons.
// A scale axis within Epsilon of 1.0 counts as applied; a rotation axis
// within Epsilon of 0.0 counts as neutral.
const Epsilon = 0.001

// ObjectType tags a SceneObject with its data kind.
type ObjectType string

const (
	ObjectMesh     ObjectType = "MESH"
	ObjectCurve    ObjectType = "CURVE"
	ObjectSurface  ObjectType = "SURFACE"
	ObjectMeta     ObjectType = "META"
	ObjectFont     ObjectType = "FONT"
	ObjectArmature ObjectType = "ARMATURE"
	ObjectEmpty    ObjectType = "EMPTY"
)

// Mode is an object's interaction mode. Bulk operations such as transform
// baking require ModeObject; weight normalization requires ModeWeightPaint.
type Mode string

const (
	ModeObject      Mode = "OBJECT"
	ModeEdit        Mode = "EDIT"
	ModeWeightPaint Mode = "WEIGHT_PAINT"
)

// Vec3 is a three-component float32 vector used for scale and Euler
// rotation values.
type Vec3 struct {
	X float32 `yaml:"x" json:"x"`
	Y float32 `yaml:"y" json:"y"`
	Z float32 `yaml:"z" json:"z"`
}

// One returns the identity scale vector.
func One() Vec3 { return Vec3{X: 1, Y: 1, Z: 1} }

// IsIdentityScale reports whether every axis is within Epsilon of 1.0.
func (v Vec3) IsIdentityScale() bool {
	return math32.Abs(v.X-1) <= Epsilon &&
		math32.Abs(v.Y-1) <= Epsilon &&
		math32.Abs(v.Z-1) <= Epsilon
}

// IsZero reports whether every axis is within Epsilon of 0.0.
func (v Vec3) IsZero() bool {
	return math32.Abs(v.X) <= Epsilon &&
		math32.Abs(v.Y) <= Epsilon &&
		math32.Abs(v.Z) <= Epsilon
}

// IsUniform reports whether all three axes agree within Epsilon.
func (v Vec3) IsUniform() bool {
	return math32.Abs(v.X-v.Y) <= Epsilon && math32.Abs(v.X-v.Z) <= Epsilon
}

// SceneObject is one node of the scene graph. It is owned by the Store;
// the engine mutates its fields in place but never allocates or frees one.
type SceneObject struct {
	// Name uniquely identifies the object within the store.
	Name string

	// Type tags the kind of data block this object carries.
	Type ObjectType

	// Scale and Rotation are the object's pending (unbaked) transform.
	// Rotation is an Euler angle triple in radians.
	Scale    Vec3
	Rotation Vec3

	// Parent is the name of the parent object, or "" for a root.
	// The parent forest must stay acyclic; the dependency rule detects
	// and repairs violations.
	Parent string

	// Mode is the object's current interaction mode.
	Mode Mode

	// Modifiers in stack order.
	Modifiers []*Modifier

	// Slots is the ordered material slot list. A slot with an empty
	// material name is an empty slot.
	Slots []*MaterialSlot

	// Data is the shared geometry block, nil for data-less objects.
	Data *MeshData

	// Armature is the bone set, present only on armature objects.
	Armature *ArmatureData

	// Animation holds the object's driver curves, nil when unanimated.
	Animation *AnimationData

	// VertexGroups in creation order.
	VertexGroups []*VertexGroup

	// Constraints in stack order.
	Constraints []*Constraint
}

// HasMaterialSlots reports whether the object's type can carry materials.
func (o *SceneObject) HasMaterialSlots() bool {
	switch o.Type {
	case ObjectMesh, ObjectCurve, ObjectSurface:
		return true
	}
	return false
}

// MeshData is a shared geometry block. Users counts the SceneObjects
// referencing it; a block with Users > 1 is instanced and must not be
// baked into directly.
type MeshData struct {
	Name         string
	VertexCount  int
	EdgeCount    int
	PolygonCount int

	// UVLayers holds the names of the UV layers, in order.
	UVLayers []string

	// ShapeKeys reference vertex groups by name.
	ShapeKeys []*ShapeKey

	// Users is the number of objects sharing this block.
	Users int
}

// ShapeKey is a named morph target optionally masked by a vertex group.
type ShapeKey struct {
	Name string

	// VertexGroup is the masking group's name, or "" when unmasked.
	VertexGroup string
}

// ArmatureData is the bone set of an armature object.
type ArmatureData struct {
	Bones []string
}

// HasBone reports whether the armature contains a bone with the given name.
func (a *ArmatureData) HasBone(name string) bool {
	for _, b := range a.Bones {
		if b == name {
			return true
		}
	}
	return false
}

// MaterialSlot binds one ordered slot of an object to a material by name.
type MaterialSlot struct {
	// Material is the referenced material's name, "" for an empty slot.
	Material string
}

// ModifierType tags a modifier with its behavior.
type ModifierType string

const (
	ModifierArray         ModifierType = "ARRAY"
	ModifierBoolean       ModifierType = "BOOLEAN"
	ModifierShrinkwrap    ModifierType = "SHRINKWRAP"
	ModifierArmature      ModifierType = "ARMATURE"
	ModifierSurfaceDeform ModifierType = "SURFACE_DEFORM"
	ModifierDataTransfer  ModifierType = "DATA_TRANSFER"
	ModifierSubsurf       ModifierType = "SUBSURF"
	ModifierMirror        ModifierType = "MIRROR"
)

// Modifier is one entry of an object's modifier stack. Which reference
// fields are meaningful depends on Type.
type Modifier struct {
	Name string
	Type ModifierType

	// Target names the referenced object for Boolean, Shrinkwrap,
	// Armature, DataTransfer and SurfaceDeform modifiers.
	Target string

	// UseObjectOffset and OffsetObject apply to Array modifiers only.
	UseObjectOffset bool
	OffsetObject    string

	// Bound applies to SurfaceDeform modifiers only.
	Bound bool
}

// AnimationData carries the driver curves attached to an object.
type AnimationData struct {
	Drivers []*DriverCurve
}

// DriverCurve binds a Driver to one animatable property.
type DriverCurve struct {
	// PropertyPath identifies the driven property.
	PropertyPath string

	// Driver is nil for a curve whose driver the host has discarded.
	Driver *Driver
}

// Driver computes a property value from an expression over its variables.
type Driver struct {
	// Valid mirrors the host's own validity flag.
	Valid bool

	// Scripted marks an expression-evaluated driver.
	Scripted bool

	// Expression is the scripted expression, meaningful when Scripted.
	Expression string

	Variables []*DriverVariable
}

// DriverVariable is one named input of a driver.
type DriverVariable struct {
	Name    string
	Targets []*DriverTarget
}

// DriverTarget references an external data block by object name.
// An empty Object is an unset target.
type DriverTarget struct {
	Object string
}

// VertexGroup maps vertex indices to deform weights.
type VertexGroup struct {
	Name string

	// Weights maps vertex index to weight.
	Weights map[int]float32
}

// MemberCount returns the number of vertices assigned to the group.
func (g *VertexGroup) MemberCount() int { return len(g.Weights) }

// TotalWeight returns the sum of all assigned weights.
func (g *VertexGroup) TotalWeight() float32 {
	var total float32
	for _, w := range g.Weights {
		total += w
	}
	return total
}

// Constraint relates an object to a target object.
type Constraint struct {
	Name string
	Type string

	// Target is the constrained-to object's name, "" when unset.
	Target string
}

// ImageSource tells where an image's pixels come from.
type ImageSource string

const (
	ImageSourceFile      ImageSource = "FILE"
	ImageSourceGenerated ImageSource = "GENERATED"
)

// Image is a shared image data block referenced by texture nodes.
type Image struct {
	Name     string
	Source   ImageSource
	Filepath string

	// Packed marks an image whose payload is embedded in the store.
	Packed bool

	// HasData reports whether the pixel payload loaded successfully.
	HasData bool

	Width  int
	Height int
}
