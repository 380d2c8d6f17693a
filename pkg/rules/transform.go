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

// TransformRule validates object transforms for production issues and
// bakes pending transforms into the underlying data.
type TransformRule struct {
	store scene.Store
	log   *logging.Logger
}

// NewTransformRule creates a transform rule bound to a store.
func NewTransformRule(store scene.Store, log *logging.Logger) *TransformRule {
	return &TransformRule{store: store, log: log}
}

// Name implements Rule.
func (r *TransformRule) Name() string { return "transform" }

// Validate implements Rule.
func (r *TransformRule) Validate(obj *scene.SceneObject) []Issue {
	var issues []Issue

	scale := obj.Scale
	if !scale.IsIdentityScale() {
		issues = append(issues, Issue{
			Category: CategoryTransform,
			Message:  fmt.Sprintf("Unapplied scale: (%.3f, %.3f, %.3f)", scale.X, scale.Y, scale.Z),
			Severity: SeverityWarning,
		})
	}

	if !scale.IsUniform() {
		issues = append(issues, Issue{
			Category: CategoryTransform,
			Message:  fmt.Sprintf("Non-uniform scale: (%.3f, %.3f, %.3f)", scale.X, scale.Y, scale.Z),
			Severity: SeverityWarning,
		})
	}

	// Rotation is flagged for mesh objects only; baking rotation into
	// curves and surfaces shifts control handles unpredictably.
	if obj.Type == scene.ObjectMesh && !obj.Rotation.IsZero() {
		issues = append(issues, Issue{
			Category: CategoryTransform,
			Message:  "Unapplied rotation detected",
			Severity: SeverityWarning,
		})
	}

	return issues
}

// scaleApplies reports whether a bake makes sense for this object type.
func scaleApplies(t scene.ObjectType) bool {
	switch t {
	case scene.ObjectMesh, scene.ObjectCurve, scene.ObjectSurface, scene.ObjectMeta, scene.ObjectFont:
		return true
	}
	return false
}

// FixUnappliedScale bakes pending scale into the object's data block and
// into every instance sharing that block, then restores the instancing.
// Returns the number of objects baked.
//
// The host cannot bake into shared data, so each instance is temporarily
// given an exclusive copy, baked, and afterwards every baked instance is
// re-linked to one shared block with the leftover copies released.
func (r *TransformRule) FixUnappliedScale(obj *scene.SceneObject) int {
	if obj.Scale.IsIdentityScale() {
		return 0
	}
	if !scaleApplies(obj.Type) {
		return 0
	}

	// Collect the instance group over a snapshot: every object sharing
	// the original data block that also carries unapplied scale.
	var instances []*scene.SceneObject
	originalData := obj.Data
	if originalData != nil {
		for _, other := range r.store.Objects() {
			if other.Type == obj.Type && other.Data == originalData && !other.Scale.IsIdentityScale() {
				instances = append(instances, other)
			}
		}
	} else {
		instances = []*scene.SceneObject{obj}
	}
	if len(instances) == 0 {
		return 0
	}

	var tempBlocks []*scene.MeshData
	var baked []*scene.SceneObject

	for _, instance := range instances {
		// Re-validate: the instance may have vanished since the snapshot.
		current, ok := r.store.LookupObject(instance.Name)
		if !ok || current != instance {
			continue
		}
		if !r.store.InWorkingSet(instance) {
			r.log.Debug("skipping instance outside working set", "object", instance.Name)
			continue
		}

		if instance.Mode != scene.ModeObject {
			if err := r.store.SetMode(instance, scene.ModeObject); err != nil {
				r.log.Warn("cannot switch to object mode", "object", instance.Name, "error", err)
				continue
			}
		}

		// The bake demands exclusive data.
		if instance.Data != nil && instance.Data.Users > 1 {
			cp := r.store.CopyMeshData(instance.Data)
			r.store.AssignMeshData(instance, cp)
			tempBlocks = append(tempBlocks, cp)
		}

		if err := r.bakeScale(instance); err != nil {
			r.log.Warn("failed to apply scale", "object", instance.Name, "error", err)
			continue
		}
		baked = append(baked, instance)
	}

	// Restore instancing: every baked object points at one shared block
	// again, and the now-unreferenced temporary copies are released.
	if len(baked) > 1 {
		master := baked[0].Data
		var orphans []*scene.MeshData
		for _, instance := range baked[1:] {
			if instance.Data != master {
				old := instance.Data
				r.store.AssignMeshData(instance, master)
				if old != nil && old.Users == 0 {
					orphans = append(orphans, old)
				}
			}
		}
		for _, data := range orphans {
			if err := r.store.RemoveMeshData(data); err != nil {
				r.log.Warn("failed to release orphaned data block", "data", data.Name, "error", err)
			}
		}
	}

	return len(baked)
}

// FixUnappliedRotation bakes pending rotation into a mesh object's data.
// Returns 1 when a bake happened.
func (r *TransformRule) FixUnappliedRotation(obj *scene.SceneObject) int {
	if obj.Type != scene.ObjectMesh {
		return 0
	}
	if obj.Rotation.IsZero() {
		return 0
	}

	current, ok := r.store.LookupObject(obj.Name)
	if !ok || current != obj {
		return 0
	}
	if !r.store.InWorkingSet(obj) {
		return 0
	}

	if obj.Mode != scene.ModeObject {
		if err := r.store.SetMode(obj, scene.ModeObject); err != nil {
			r.log.Warn("cannot switch to object mode", "object", obj.Name, "error", err)
			return 0
		}
	}

	// Shared data cannot be baked into; give this object its own copy.
	if obj.Data != nil && obj.Data.Users > 1 {
		cp := r.store.CopyMeshData(obj.Data)
		r.store.AssignMeshData(obj, cp)
	}

	release, err := r.store.Acquire(obj)
	if err != nil {
		r.log.Warn("cannot acquire object", "object", obj.Name, "error", err)
		return 0
	}
	defer release()

	if err := r.store.ApplyRotation(obj); err != nil {
		r.log.Warn("failed to apply rotation", "object", obj.Name, "error", err)
		return 0
	}
	return 1
}

func (r *TransformRule) bakeScale(obj *scene.SceneObject) error {
	release, err := r.store.Acquire(obj)
	if err != nil {
		return err
	}
	defer release()
	return r.store.ApplyScale(obj)
}
