// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package rules implements the validation rule modules and their paired
// repair functions.
//
// Each rule module inspects one scene object at a time and reports
// defects as Findings; where a safe remediation exists, the module also
// exposes a fix function with the same per-entity granularity. Rules hold
// no mutable state beyond their Store handle and are safe to reuse across
// scans.
package rules

import "github.com/apexstudio/scenedoctor/pkg/scene"

// Rule is one validation module. Validate inspects a single object and
// reports its issues; fix entry points are per-module and not part of
// the interface because their signatures differ.
type Rule interface {
	Name() string
	Validate(obj *scene.SceneObject) []Issue
}

// Severity grades a finding.
type Severity string

const (
	// SeverityError marks defects that break production use.
	SeverityError Severity = "ERROR"

	// SeverityWarning marks defects worth reviewing but survivable.
	SeverityWarning Severity = "WARNING"
)

// Category is the closed set of issue categories a scan can report.
type Category string

const (
	// CategoryTransform covers unapplied or non-uniform transforms.
	CategoryTransform Category = "TRANSFORM"

	// CategoryData covers shared data blocks and shape-key defects.
	CategoryData Category = "DATA"

	// CategoryGeometry covers mesh statistics defects.
	CategoryGeometry Category = "GEOMETRY"

	// CategoryRigging covers vertex-group defects.
	CategoryRigging Category = "RIGGING"

	// CategoryInvalidDriver covers drivers the host marks invalid and
	// scripted drivers with blank expressions.
	CategoryInvalidDriver Category = "INVALID_DRIVER"

	// CategoryCircularDriver covers self-referencing driver targets.
	CategoryCircularDriver Category = "CIRCULAR_DRIVER"

	// CategoryMissingDriverTarget covers unset driver targets.
	CategoryMissingDriverTarget Category = "MISSING_DRIVER_TARGET"

	// CategoryDriverChain covers multi-object driver dependency loops.
	CategoryDriverChain Category = "DRIVER_CHAIN"

	// CategoryBrokenModifier covers modifiers missing required references.
	CategoryBrokenModifier Category = "BROKEN_MODIFIER"

	// CategoryUnboundModifier covers unbound SurfaceDeform modifiers.
	CategoryUnboundModifier Category = "UNBOUND_MODIFIER"

	// CategoryUnstableModifier covers SurfaceDeform targets in a
	// non-neutral interaction mode.
	CategoryUnstableModifier Category = "UNSTABLE_MODIFIER"

	// CategoryCircularDependency covers parent loops and two-object
	// constraint cycles.
	CategoryCircularDependency Category = "CIRCULAR_DEPENDENCY"

	// CategoryEmptySlot covers material slots with no material.
	CategoryEmptySlot Category = "EMPTY_SLOT"

	// CategoryBrokenShader covers unusable material node graphs.
	CategoryBrokenShader Category = "BROKEN_SHADER"

	// CategoryTexture covers image-texture defects.
	CategoryTexture Category = "TEXTURE"

	// CategoryShaderCompat covers renderer-compatibility concerns.
	CategoryShaderCompat Category = "SHADER_COMPAT"
)

// NoMaterial is the material-name placeholder for object-level findings.
const NoMaterial = "N/A"

// Finding is one immutable validation result. Findings are created only
// by rule modules during a scan; the scan aggregator owns the list.
type Finding struct {
	ObjectName   string   `json:"object_name"`
	MaterialName string   `json:"material_name"`
	Category     Category `json:"category"`
	Message      string   `json:"message"`
	Severity     Severity `json:"severity"`
}

// Issue is the (category, message, severity) triple a rule emits before
// the aggregator stamps it with the object and material names.
type Issue struct {
	Category Category
	Message  string
	Severity Severity
}
