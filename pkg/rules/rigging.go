// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// VertexGroupFixResult breaks down what FixVertexGroups did.
type VertexGroupFixResult struct {
	EmptyRemoved    int
	OrphanedRemoved int
	Normalized      int
}

// Total is the number of groups removed.
func (r VertexGroupFixResult) Total() int {
	return r.EmptyRemoved + r.OrphanedRemoved
}

// RiggingRule validates vertex groups against their deforming armature.
type RiggingRule struct {
	store scene.Store
	log   *logging.Logger
}

// NewRiggingRule creates a rigging rule bound to a store.
func NewRiggingRule(store scene.Store, log *logging.Logger) *RiggingRule {
	return &RiggingRule{store: store, log: log}
}

// Name implements Rule.
func (r *RiggingRule) Name() string { return "rigging" }

// deformingArmature resolves the armature object referenced by the first
// armature modifier with a target, or nil.
func (r *RiggingRule) deformingArmature(obj *scene.SceneObject) *scene.ArmatureData {
	for _, mod := range obj.Modifiers {
		if mod.Type != scene.ModifierArmature || mod.Target == "" {
			continue
		}
		target, ok := r.store.LookupObject(mod.Target)
		if !ok || target.Type != scene.ObjectArmature || target.Armature == nil {
			return nil
		}
		return target.Armature
	}
	return nil
}

// Validate implements Rule.
func (r *RiggingRule) Validate(obj *scene.SceneObject) []Issue {
	if obj.Type != scene.ObjectMesh || len(obj.VertexGroups) == 0 || obj.Data == nil {
		return nil
	}

	var issues []Issue

	for _, vg := range obj.VertexGroups {
		switch {
		case vg.MemberCount() == 0:
			issues = append(issues, Issue{
				Category: CategoryRigging,
				Message:  fmt.Sprintf("Vertex group '%s' is empty (no vertices assigned)", vg.Name),
				Severity: SeverityWarning,
			})
		case vg.TotalWeight() == 0:
			issues = append(issues, Issue{
				Category: CategoryRigging,
				Message:  fmt.Sprintf("Vertex group '%s' has zero total weight", vg.Name),
				Severity: SeverityWarning,
			})
		}
	}

	if armature := r.deformingArmature(obj); armature != nil {
		for _, vg := range obj.VertexGroups {
			if !armature.HasBone(vg.Name) {
				issues = append(issues, Issue{
					Category: CategoryRigging,
					Message:  fmt.Sprintf("Orphaned vertex group '%s' (no matching bone in armature)", vg.Name),
					Severity: SeverityWarning,
				})
			}
		}
	}

	return issues
}

// FixVertexGroups removes empty and orphaned vertex groups, then
// normalizes the weights of whatever remains.
func (r *RiggingRule) FixVertexGroups(obj *scene.SceneObject) VertexGroupFixResult {
	var result VertexGroupFixResult
	if obj.Type != scene.ObjectMesh || len(obj.VertexGroups) == 0 {
		return result
	}

	armature := r.deformingArmature(obj)

	kept := obj.VertexGroups[:0]
	for _, vg := range obj.VertexGroups {
		switch {
		case vg.MemberCount() == 0 || vg.TotalWeight() == 0:
			result.EmptyRemoved++
		case armature != nil && !armature.HasBone(vg.Name):
			result.OrphanedRemoved++
		default:
			kept = append(kept, vg)
		}
	}
	obj.VertexGroups = kept

	if len(obj.VertexGroups) == 0 {
		return result
	}
	if !r.store.InWorkingSet(obj) {
		return result
	}

	// Normalization runs in weight-paint mode with the object held as
	// the sole selection, then drops back to object mode.
	if err := r.normalize(obj); err != nil {
		r.log.Warn("failed to normalize weights", "object", obj.Name, "error", err)
		return result
	}
	result.Normalized = 1
	return result
}

func (r *RiggingRule) normalize(obj *scene.SceneObject) error {
	if obj.Mode != scene.ModeObject {
		if err := r.store.SetMode(obj, scene.ModeObject); err != nil {
			return err
		}
	}

	release, err := r.store.Acquire(obj)
	if err != nil {
		return err
	}
	defer release()

	if err := r.store.SetMode(obj, scene.ModeWeightPaint); err != nil {
		return err
	}
	normErr := r.store.NormalizeWeights(obj)
	if err := r.store.SetMode(obj, scene.ModeObject); err != nil && normErr == nil {
		normErr = err
	}
	return normErr
}
