// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine orchestrates validation scans and batched repairs over
// a scene store.
package engine

import (
	"strings"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/rules"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// EmptySlotMaterial is the material-name placeholder on empty-slot
// findings, distinct from rules.NoMaterial used by object-level rules.
const EmptySlotMaterial = "None"

// ParseExclusions splits a comma-separated pattern list into trimmed,
// non-empty patterns.
func ParseExclusions(s string) []string {
	var patterns []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// excluded reports whether an object name matches any exclusion pattern.
// Matching is a case-sensitive prefix test.
func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Scanner runs every rule module over a set of objects and aggregates
// the findings.
type Scanner struct {
	store scene.Store
	log   *logging.Logger

	// objectRules run unconditionally per object, in this order.
	objectRules []rules.Rule
	geometry    *rules.GeometryRule
	material    *rules.MaterialRule
}

// NewScanner creates a scanner with the full rule set.
func NewScanner(store scene.Store, log *logging.Logger) *Scanner {
	geometry := rules.NewGeometryRule(store, log)
	return &Scanner{
		store: store,
		log:   log,
		objectRules: []rules.Rule{
			rules.NewTransformRule(store, log),
			rules.NewDataRule(store, log),
			rules.NewDriverRule(store, log),
			rules.NewModifierRule(store, log),
			geometry,
			rules.NewRiggingRule(store, log),
			rules.NewDependencyRule(store, log),
		},
		geometry: geometry,
		material: rules.NewMaterialRule(store, log),
	}
}

// SetThresholds overrides the tunable warning thresholds.
func (s *Scanner) SetThresholds(highPoly, veryHighPoly, maxTextureSize int) {
	s.geometry.SetPolyThresholds(highPoly, veryHighPoly)
	s.material.SetMaxTextureSize(maxTextureSize)
}

// Scan validates every non-excluded object and returns the findings in
// scan order. The returned list is rebuilt from scratch on every call.
func (s *Scanner) Scan(objects []*scene.SceneObject, exclusions []string) []rules.Finding {
	var findings []rules.Finding

	for _, obj := range objects {
		if excluded(obj.Name, exclusions) {
			continue
		}

		for _, rule := range s.objectRules {
			for _, issue := range rule.Validate(obj) {
				findings = append(findings, rules.Finding{
					ObjectName:   obj.Name,
					MaterialName: rules.NoMaterial,
					Category:     issue.Category,
					Message:      issue.Message,
					Severity:     issue.Severity,
				})
			}
		}

		if !obj.HasMaterialSlots() || len(obj.Slots) == 0 {
			continue
		}

		for _, slot := range obj.Slots {
			if slot.Material == "" {
				findings = append(findings, rules.Finding{
					ObjectName:   obj.Name,
					MaterialName: EmptySlotMaterial,
					Category:     rules.CategoryEmptySlot,
					Message:      "Empty material slot found.",
					Severity:     rules.SeverityWarning,
				})
				continue
			}

			if issue, broken := s.material.CheckBroken(slot.Material); broken {
				findings = append(findings, rules.Finding{
					ObjectName:   obj.Name,
					MaterialName: slot.Material,
					Category:     issue.Category,
					Message:      issue.Message,
					Severity:     issue.Severity,
				})
			}

			mat, ok := s.store.LookupMaterial(slot.Material)
			if !ok {
				continue
			}
			for _, issue := range s.material.ValidateTextures(mat) {
				findings = append(findings, rules.Finding{
					ObjectName:   obj.Name,
					MaterialName: mat.Name,
					Category:     issue.Category,
					Message:      issue.Message,
					Severity:     issue.Severity,
				})
			}
			for _, issue := range s.material.CheckCompatibility(mat) {
				findings = append(findings, rules.Finding{
					ObjectName:   obj.Name,
					MaterialName: mat.Name,
					Category:     issue.Category,
					Message:      issue.Message,
					Severity:     issue.Severity,
				})
			}
		}
	}

	s.log.Debug("scan complete", "objects", len(objects), "findings", len(findings))
	return findings
}

// CountBySeverity tallies findings per severity.
func CountBySeverity(findings []rules.Finding) (errors, warnings int) {
	for _, f := range findings {
		if f.Severity == rules.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
