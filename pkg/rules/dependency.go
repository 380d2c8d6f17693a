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

// DependencyRule detects circular dependencies: parent loops of any
// length and two-object constraint cycles.
type DependencyRule struct {
	store scene.Store
	log   *logging.Logger
}

// NewDependencyRule creates a dependency rule bound to a store.
func NewDependencyRule(store scene.Store, log *logging.Logger) *DependencyRule {
	return &DependencyRule{store: store, log: log}
}

// Name implements Rule.
func (r *DependencyRule) Name() string { return "dependency" }

// Validate implements Rule.
func (r *DependencyRule) Validate(obj *scene.SceneObject) []Issue {
	var issues []Issue

	if loop := DetectParentLoop(r.store, obj); loop != nil {
		issues = append(issues, Issue{
			Category: CategoryCircularDependency,
			Message:  "Parent loop detected: " + chainString(loop),
			Severity: SeverityError,
		})
	}

	for _, constraint := range obj.Constraints {
		if constraint.Target == "" {
			continue
		}
		target, ok := r.store.LookupObject(constraint.Target)
		if !ok {
			continue
		}
		for _, back := range target.Constraints {
			if back.Target == obj.Name {
				issues = append(issues, Issue{
					Category: CategoryCircularDependency,
					Message:  fmt.Sprintf("Constraint loop: '%s' ↔ '%s'", obj.Name, target.Name),
					Severity: SeverityError,
				})
			}
		}
	}

	return issues
}

// FixParentLoop breaks a parent loop by clearing this object's parent,
// the safest of the candidate edges. Returns true when a loop was broken.
func (r *DependencyRule) FixParentLoop(obj *scene.SceneObject) bool {
	if DetectParentLoop(r.store, obj) == nil {
		return false
	}
	obj.Parent = ""
	r.log.Info("broke parent loop", "object", obj.Name)
	return true
}
