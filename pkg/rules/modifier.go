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

// ModifierRule validates modifier stacks for dangling references, unbound
// surface deforms and unstable target modes.
type ModifierRule struct {
	store scene.Store
	log   *logging.Logger
}

// NewModifierRule creates a modifier rule bound to a store.
func NewModifierRule(store scene.Store, log *logging.Logger) *ModifierRule {
	return &ModifierRule{store: store, log: log}
}

// Name implements Rule.
func (r *ModifierRule) Name() string { return "modifier" }

// Validate implements Rule.
func (r *ModifierRule) Validate(obj *scene.SceneObject) []Issue {
	var issues []Issue

	for _, mod := range obj.Modifiers {
		switch mod.Type {
		case scene.ModifierArray:
			if mod.UseObjectOffset && mod.OffsetObject == "" {
				issues = append(issues, Issue{
					Category: CategoryBrokenModifier,
					Message:  fmt.Sprintf("Array modifier '%s' has Object Offset enabled but no object set", mod.Name),
					Severity: SeverityWarning,
				})
			}

		case scene.ModifierBoolean:
			if mod.Target == "" {
				issues = append(issues, Issue{
					Category: CategoryBrokenModifier,
					Message:  fmt.Sprintf("Boolean modifier '%s' has no target object", mod.Name),
					Severity: SeverityError,
				})
			} else if _, ok := r.store.LookupObject(mod.Target); !ok {
				issues = append(issues, Issue{
					Category: CategoryBrokenModifier,
					Message:  fmt.Sprintf("Boolean modifier '%s' target object is missing", mod.Name),
					Severity: SeverityError,
				})
			}

		case scene.ModifierShrinkwrap:
			if mod.Target == "" {
				issues = append(issues, Issue{
					Category: CategoryBrokenModifier,
					Message:  fmt.Sprintf("Shrinkwrap modifier '%s' has no target", mod.Name),
					Severity: SeverityError,
				})
			}

		case scene.ModifierArmature:
			if mod.Target == "" {
				issues = append(issues, Issue{
					Category: CategoryBrokenModifier,
					Message:  fmt.Sprintf("Armature modifier '%s' has no armature object", mod.Name),
					Severity: SeverityError,
				})
			}

		case scene.ModifierSurfaceDeform:
			if !mod.Bound {
				issues = append(issues, Issue{
					Category: CategoryUnboundModifier,
					Message:  fmt.Sprintf("Surface Deform modifier '%s' is not bound - bind it or remove it to prevent crashes", mod.Name),
					Severity: SeverityError,
				})
			} else if target, ok := r.store.LookupObject(mod.Target); ok && target.Mode != scene.ModeObject {
				issues = append(issues, Issue{
					Category: CategoryUnstableModifier,
					Message:  fmt.Sprintf("Surface Deform target '%s' is in Edit Mode - this is unstable", target.Name),
					Severity: SeverityError,
				})
			}

		case scene.ModifierDataTransfer:
			if mod.Target == "" {
				issues = append(issues, Issue{
					Category: CategoryBrokenModifier,
					Message:  fmt.Sprintf("Data Transfer modifier '%s' has no source object", mod.Name),
					Severity: SeverityError,
				})
			}
		}
	}

	return issues
}

// FixBrokenModifiers repairs or removes defective modifiers. An array
// offset with no object is disabled in place; everything else defective
// is removed. Returns the number of modifiers touched.
func (r *ModifierRule) FixBrokenModifiers(obj *scene.SceneObject) int {
	fixed := 0
	kept := obj.Modifiers[:0]

	for _, mod := range obj.Modifiers {
		remove := false

		switch mod.Type {
		case scene.ModifierArray:
			if mod.UseObjectOffset && mod.OffsetObject == "" {
				mod.UseObjectOffset = false
				fixed++
			}

		case scene.ModifierBoolean:
			if mod.Target == "" {
				remove = true
			} else if _, ok := r.store.LookupObject(mod.Target); !ok {
				remove = true
			}

		case scene.ModifierShrinkwrap, scene.ModifierArmature, scene.ModifierDataTransfer:
			remove = mod.Target == ""

		case scene.ModifierSurfaceDeform:
			// Unbound surface deforms are removed outright; leaving them
			// in the stack risks a host crash on evaluation.
			remove = !mod.Bound
		}

		if remove {
			r.log.Debug("removing broken modifier",
				"object", obj.Name, "modifier", mod.Name, "type", mod.Type)
			fixed++
			continue
		}
		kept = append(kept, mod)
	}

	obj.Modifiers = kept
	return fixed
}
