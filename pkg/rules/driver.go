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

// DriverRule validates animation drivers: host-invalid drivers, blank
// scripted expressions, self-references, unset targets, and multi-object
// driver dependency loops.
type DriverRule struct {
	store scene.Store
	log   *logging.Logger
}

// NewDriverRule creates a driver rule bound to a store.
func NewDriverRule(store scene.Store, log *logging.Logger) *DriverRule {
	return &DriverRule{store: store, log: log}
}

// Name implements Rule.
func (r *DriverRule) Name() string { return "driver" }

// Validate implements Rule.
func (r *DriverRule) Validate(obj *scene.SceneObject) []Issue {
	if obj.Animation == nil {
		return nil
	}

	var issues []Issue

	if chain := DetectDriverChain(r.store, obj); chain != nil {
		issues = append(issues, Issue{
			Category: CategoryDriverChain,
			Message:  "Driver chain loop detected: " + chainString(chain),
			Severity: SeverityError,
		})
	}

	for _, curve := range obj.Animation.Drivers {
		drv := curve.Driver
		if drv == nil {
			continue
		}

		if !drv.Valid {
			issues = append(issues, Issue{
				Category: CategoryInvalidDriver,
				Message:  fmt.Sprintf("Invalid driver on property '%s'", curve.PropertyPath),
				Severity: SeverityError,
			})
			continue
		}

		for _, v := range drv.Variables {
			for _, target := range v.Targets {
				switch target.Object {
				case obj.Name:
					issues = append(issues, Issue{
						Category: CategoryCircularDriver,
						Message:  fmt.Sprintf("Circular dependency: Driver on '%s' references itself", curve.PropertyPath),
						Severity: SeverityError,
					})
				case "":
					issues = append(issues, Issue{
						Category: CategoryMissingDriverTarget,
						Message:  fmt.Sprintf("Driver on '%s' has missing target in variable '%s'", curve.PropertyPath, v.Name),
						Severity: SeverityError,
					})
				}
			}
		}

		if drv.Scripted && strings.TrimSpace(drv.Expression) == "" {
			issues = append(issues, Issue{
				Category: CategoryInvalidDriver,
				Message:  fmt.Sprintf("Empty scripted expression on '%s'", curve.PropertyPath),
				Severity: SeverityError,
			})
		}
	}

	return issues
}

// FixInvalidDrivers removes drivers that are host-invalid, scripted with
// a blank expression, self-referencing, or missing a target. Returns the
// number of drivers removed.
func (r *DriverRule) FixInvalidDrivers(obj *scene.SceneObject) int {
	if obj.Animation == nil || len(obj.Animation.Drivers) == 0 {
		return 0
	}

	removed := 0
	kept := obj.Animation.Drivers[:0]
	for _, curve := range obj.Animation.Drivers {
		if r.shouldRemove(obj, curve) {
			r.log.Debug("removing defective driver",
				"object", obj.Name, "property", curve.PropertyPath)
			removed++
			continue
		}
		kept = append(kept, curve)
	}
	obj.Animation.Drivers = kept
	return removed
}

func (r *DriverRule) shouldRemove(obj *scene.SceneObject, curve *scene.DriverCurve) bool {
	drv := curve.Driver
	if drv == nil {
		return false
	}
	if !drv.Valid {
		return true
	}
	if drv.Scripted && strings.TrimSpace(drv.Expression) == "" {
		return true
	}
	for _, v := range drv.Variables {
		for _, target := range v.Targets {
			if target.Object == obj.Name || target.Object == "" {
				return true
			}
		}
	}
	return false
}

// FixDriverChains breaks a detected driver dependency loop by removing
// the drivers on this object that reference any chain member. The break
// happens at this object only; the rest of the chain keeps its drivers.
// Returns true when at least one driver was removed.
func (r *DriverRule) FixDriverChains(obj *scene.SceneObject) bool {
	chain := DetectDriverChain(r.store, obj)
	if chain == nil || obj.Animation == nil {
		return false
	}

	removed := 0
	kept := obj.Animation.Drivers[:0]
	for _, curve := range obj.Animation.Drivers {
		if r.referencesChain(curve, chain) {
			r.log.Info("breaking driver chain",
				"object", obj.Name, "property", curve.PropertyPath)
			removed++
			continue
		}
		kept = append(kept, curve)
	}
	obj.Animation.Drivers = kept
	return removed > 0
}

func (r *DriverRule) referencesChain(curve *scene.DriverCurve, chain []string) bool {
	if curve.Driver == nil {
		return false
	}
	for _, v := range curve.Driver.Variables {
		for _, target := range v.Targets {
			if target.Object != "" && chainContains(chain, target.Object) {
				return true
			}
		}
	}
	return false
}
