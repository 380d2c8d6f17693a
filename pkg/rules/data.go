// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"strings"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// DataRule validates data blocks: linked duplicates and shape keys whose
// vertex-group bindings dangle. Default data-block names (Mesh.001 and
// friends) are not flagged; they are routine in CAD imports.
type DataRule struct {
	store scene.Store
	log   *logging.Logger
}

// NewDataRule creates a data rule bound to a store.
func NewDataRule(store scene.Store, log *logging.Logger) *DataRule {
	return &DataRule{store: store, log: log}
}

// Name implements Rule.
func (r *DataRule) Name() string { return "data" }

// Validate implements Rule.
func (r *DataRule) Validate(obj *scene.SceneObject) []Issue {
	if obj.Type != scene.ObjectMesh || obj.Data == nil {
		return nil
	}
	mesh := obj.Data

	var issues []Issue

	if mesh.Users > 1 {
		issues = append(issues, Issue{
			Category: CategoryData,
			Message:  fmt.Sprintf("Mesh data '%s' has %d users (linked duplicates)", mesh.Name, mesh.Users),
			Severity: SeverityWarning,
		})
	}

	for _, key := range mesh.ShapeKeys {
		if key.VertexGroup == "" {
			continue
		}
		if !hasVertexGroup(obj, key.VertexGroup) {
			issues = append(issues, Issue{
				Category: CategoryData,
				Message:  fmt.Sprintf("Shape key '%s' references missing vertex group '%s'", key.Name, key.VertexGroup),
				Severity: SeverityError,
			})
		}
	}

	return issues
}

// FixDefaultMeshNames renames "Mesh"-style default data-block names to
// follow the owning object. Not part of the automatic repair pass; it is
// invoked only on explicit request.
func (r *DataRule) FixDefaultMeshNames(obj *scene.SceneObject) bool {
	if obj.Type != scene.ObjectMesh || obj.Data == nil {
		return false
	}
	name := obj.Data.Name
	if name != "Mesh" && !strings.HasPrefix(name, "Mesh.") {
		return false
	}
	obj.Data.Name = obj.Name + "_mesh"
	return true
}

func hasVertexGroup(obj *scene.SceneObject, name string) bool {
	for _, vg := range obj.VertexGroups {
		if vg.Name == name {
			return true
		}
	}
	return false
}
