// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// Default poly-count thresholds for the high-poly warnings.
const (
	DefaultHighPolyCount     = 50000
	DefaultVeryHighPolyCount = 100000
)

// Smart-unwrap parameters for generated UV maps.
const (
	unwrapAngleLimit   = 66.0
	unwrapIslandMargin = 0.02
)

// GeometryRule validates mesh statistics. N-gons are deliberately not
// checked; they are normal for CAD-sourced data.
type GeometryRule struct {
	store scene.Store
	log   *logging.Logger

	highPoly     int
	veryHighPoly int
}

// NewGeometryRule creates a geometry rule bound to a store.
func NewGeometryRule(store scene.Store, log *logging.Logger) *GeometryRule {
	return &GeometryRule{
		store:        store,
		log:          log,
		highPoly:     DefaultHighPolyCount,
		veryHighPoly: DefaultVeryHighPolyCount,
	}
}

// SetPolyThresholds overrides the high-poly warning thresholds. Values
// below 1 keep the current setting.
func (r *GeometryRule) SetPolyThresholds(high, veryHigh int) {
	if high >= 1 {
		r.highPoly = high
	}
	if veryHigh >= 1 {
		r.veryHighPoly = veryHigh
	}
}

// Name implements Rule.
func (r *GeometryRule) Name() string { return "geometry" }

// Validate implements Rule.
func (r *GeometryRule) Validate(obj *scene.SceneObject) []Issue {
	if obj.Type != scene.ObjectMesh {
		return nil
	}

	mesh := obj.Data
	if mesh == nil {
		return []Issue{{CategoryGeometry, "Mesh object has no data.", SeverityError}}
	}

	var issues []Issue

	if mesh.PolygonCount == 0 && mesh.VertexCount > 0 {
		issues = append(issues, Issue{
			Category: CategoryGeometry,
			Message:  fmt.Sprintf("Mesh has %d vertices but no faces", mesh.VertexCount),
			Severity: SeverityWarning,
		})
	}

	if mesh.EdgeCount == 0 && mesh.VertexCount > 0 {
		issues = append(issues, Issue{
			Category: CategoryGeometry,
			Message:  fmt.Sprintf("Mesh has %d loose vertices (no edges)", mesh.VertexCount),
			Severity: SeverityWarning,
		})
	}

	if len(mesh.UVLayers) == 0 && mesh.PolygonCount > 0 {
		issues = append(issues, Issue{
			Category: CategoryGeometry,
			Message:  "Mesh has no UV maps",
			Severity: SeverityError,
		})
	}

	switch {
	case mesh.PolygonCount > r.veryHighPoly:
		issues = append(issues, Issue{
			Category: CategoryGeometry,
			Message:  fmt.Sprintf("Very high poly count: %s faces (may cause performance issues)", groupDigits(mesh.PolygonCount)),
			Severity: SeverityWarning,
		})
	case mesh.PolygonCount > r.highPoly:
		issues = append(issues, Issue{
			Category: CategoryGeometry,
			Message:  fmt.Sprintf("High poly count: %s faces", groupDigits(mesh.PolygonCount)),
			Severity: SeverityWarning,
		})
	}

	return issues
}

// FixMissingUVs generates a UV map for a mesh that has faces but no UV
// layers, using a conservative smart unwrap. Returns true when a map was
// created.
func (r *GeometryRule) FixMissingUVs(obj *scene.SceneObject) bool {
	if obj.Type != scene.ObjectMesh || obj.Data == nil {
		return false
	}
	mesh := obj.Data
	if len(mesh.UVLayers) > 0 || mesh.PolygonCount == 0 {
		return false
	}
	if !r.store.InWorkingSet(obj) {
		return false
	}

	if obj.Mode != scene.ModeObject {
		if err := r.store.SetMode(obj, scene.ModeObject); err != nil {
			r.log.Warn("cannot switch to object mode", "object", obj.Name, "error", err)
			return false
		}
	}

	release, err := r.store.Acquire(obj)
	if err != nil {
		r.log.Warn("cannot acquire object", "object", obj.Name, "error", err)
		return false
	}
	defer release()

	mesh.UVLayers = append(mesh.UVLayers, "UVMap")
	if err := r.store.SmartUnwrap(obj, unwrapAngleLimit, unwrapIslandMargin); err != nil {
		r.log.Warn("failed to generate UVs", "object", obj.Name, "error", err)
		mesh.UVLayers = mesh.UVLayers[:len(mesh.UVLayers)-1]
		return false
	}
	return true
}

// groupDigits renders n with thousands separators.
func groupDigits(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
