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

// TestModifierValidate_ArrayOffset verifies an array offset without an
// object is a warning, not an error.
func TestModifierValidate_ArrayOffset(t *testing.T) {
	store := memstore.New()
	rule := NewModifierRule(store, testLog)
	obj := store.AddObject(newMesh("cube"))
	obj.Modifiers = []*scene.Modifier{
		{Name: "Array", Type: scene.ModifierArray, UseObjectOffset: true},
	}

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, CategoryBrokenModifier, issues[0].Category)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, "Array modifier 'Array' has Object Offset enabled but no object set", issues[0].Message)
}

// TestModifierValidate_BooleanTargets verifies both the missing and the
// vanished boolean target cases.
func TestModifierValidate_BooleanTargets(t *testing.T) {
	store := memstore.New()
	rule := NewModifierRule(store, testLog)
	obj := store.AddObject(newMesh("cube"))
	obj.Modifiers = []*scene.Modifier{
		{Name: "Cut", Type: scene.ModifierBoolean},
		{Name: "Carve", Type: scene.ModifierBoolean, Target: "deleted"},
	}

	issues := rule.Validate(obj)
	require.Len(t, issues, 2)
	assert.Equal(t, "Boolean modifier 'Cut' has no target object", issues[0].Message)
	assert.Equal(t, "Boolean modifier 'Carve' target object is missing", issues[1].Message)
	for _, issue := range issues {
		assert.Equal(t, SeverityError, issue.Severity)
	}
}

// TestModifierValidate_SurfaceDeform verifies the unbound and the
// unstable-target cases.
func TestModifierValidate_SurfaceDeform(t *testing.T) {
	store := memstore.New()
	rule := NewModifierRule(store, testLog)

	target := store.AddObject(newMesh("cloth"))
	target.Mode = scene.ModeEdit

	obj := store.AddObject(newMesh("cube"))
	obj.Modifiers = []*scene.Modifier{
		{Name: "Deform", Type: scene.ModifierSurfaceDeform, Target: "cloth"},
	}

	issues := rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, CategoryUnboundModifier, issues[0].Category)
	assert.Equal(t, "Surface Deform modifier 'Deform' is not bound - bind it or remove it to prevent crashes", issues[0].Message)

	obj.Modifiers[0].Bound = true
	issues = rule.Validate(obj)
	require.Len(t, issues, 1)
	assert.Equal(t, CategoryUnstableModifier, issues[0].Category)
	assert.Equal(t, "Surface Deform target 'cloth' is in Edit Mode - this is unstable", issues[0].Message)

	target.Mode = scene.ModeObject
	assert.Empty(t, rule.Validate(obj))
}

// TestFixBrokenModifiers verifies the array offset is disabled in place
// while defective modifiers are removed from the stack.
func TestFixBrokenModifiers(t *testing.T) {
	store := memstore.New()
	rule := NewModifierRule(store, testLog)
	obj := store.AddObject(newMesh("cube"))
	store.AddObject(newMesh("rig"))

	obj.Modifiers = []*scene.Modifier{
		{Name: "Array", Type: scene.ModifierArray, UseObjectOffset: true},
		{Name: "Cut", Type: scene.ModifierBoolean},
		{Name: "Wrap", Type: scene.ModifierShrinkwrap},
		{Name: "Deform", Type: scene.ModifierSurfaceDeform},
		{Name: "Arm", Type: scene.ModifierArmature, Target: "rig"},
		{Name: "Subd", Type: scene.ModifierSubsurf},
	}

	fixed := rule.FixBrokenModifiers(obj)
	assert.Equal(t, 4, fixed)

	require.Len(t, obj.Modifiers, 3)
	assert.Equal(t, "Array", obj.Modifiers[0].Name)
	assert.False(t, obj.Modifiers[0].UseObjectOffset)
	assert.Equal(t, "Arm", obj.Modifiers[1].Name)
	assert.Equal(t, "Subd", obj.Modifiers[2].Name)
}
