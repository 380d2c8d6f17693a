// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"runtime"
	"time"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/rules"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// DefaultBatchSize bounds how many objects a transform batch touches.
// Bulk data edits against a live store degrade past this point, so the
// fixer refreshes and settles between batches.
const DefaultBatchSize = 15

// batchSettle is the pause after each transform batch, giving the host
// time to stabilize internal state.
const batchSettle = 50 * time.Millisecond

// Fix-count map keys, one per repair category.
const (
	CountMaterialsRebuilt    = "materials_rebuilt"
	CountDisconnectedFixed   = "disconnected_fixed"
	CountDeprecatedReplaced  = "deprecated_replaced"
	CountDriversFixed        = "drivers_fixed"
	CountDriverChainsFixed   = "driver_chains_fixed"
	CountModifiersFixed      = "modifiers_fixed"
	CountEmptySlotsFixed     = "empty_slots_fixed"
	CountScalesApplied       = "scales_applied"
	CountRotationsApplied    = "rotations_applied"
	CountTexturesPacked      = "textures_packed"
	CountUVsGenerated        = "uvs_generated"
	CountVertexGroupsCleaned = "vertex_groups_cleaned"
	CountWeightsNormalized   = "weights_normalized"
	CountParentLoopsFixed    = "parent_loops_fixed"
)

// CountKeys lists every fix-count key in reporting order.
var CountKeys = []string{
	CountMaterialsRebuilt,
	CountDisconnectedFixed,
	CountDeprecatedReplaced,
	CountDriversFixed,
	CountDriverChainsFixed,
	CountModifiersFixed,
	CountEmptySlotsFixed,
	CountScalesApplied,
	CountRotationsApplied,
	CountTexturesPacked,
	CountUVsGenerated,
	CountVertexGroupsCleaned,
	CountWeightsNormalized,
	CountParentLoopsFixed,
}

// Fixer runs the two-phase batched repair pass.
type Fixer struct {
	store     scene.Store
	log       *logging.Logger
	batchSize int

	transform  *rules.TransformRule
	material   *rules.MaterialRule
	driver     *rules.DriverRule
	modifier   *rules.ModifierRule
	geometry   *rules.GeometryRule
	rigging    *rules.RiggingRule
	dependency *rules.DependencyRule
}

// NewFixer creates a fixer with the default batch size.
func NewFixer(store scene.Store, log *logging.Logger) *Fixer {
	return &Fixer{
		store:      store,
		log:        log,
		batchSize:  DefaultBatchSize,
		transform:  rules.NewTransformRule(store, log),
		material:   rules.NewMaterialRule(store, log),
		driver:     rules.NewDriverRule(store, log),
		modifier:   rules.NewModifierRule(store, log),
		geometry:   rules.NewGeometryRule(store, log),
		rigging:    rules.NewRiggingRule(store, log),
		dependency: rules.NewDependencyRule(store, log),
	}
}

// SetBatchSize overrides the transform batch size. Values below 1 are
// ignored.
func (f *Fixer) SetBatchSize(n int) {
	if n >= 1 {
		f.batchSize = n
	}
}

// AutoFixAll repairs every fixable issue over the object set and returns
// per-category fix counts. Transform fixes run first, store-wide and
// batched, because object-level fixes assume baked-in transforms. rc may
// be nil when no progress reporting is wanted.
func (f *Fixer) AutoFixAll(rc *RunContext, objects []*scene.SceneObject, exclusions []string) map[string]int {
	counts := make(map[string]int, len(CountKeys))
	for _, key := range CountKeys {
		counts[key] = 0
	}
	bump := func(key string, n int) {
		counts[key] += n
		if rc != nil {
			rc.Add(key, n)
		}
	}

	f.fixTransforms(objects, exclusions, bump)
	f.fixObjects(objects, exclusions, bump)

	f.log.Info("auto-fix complete",
		"materials", counts[CountMaterialsRebuilt],
		"scales", counts[CountScalesApplied],
		"vertex_groups", counts[CountVertexGroupsCleaned],
		"driver_chains", counts[CountDriverChainsFixed])
	return counts
}

// fixTransforms is phase 1: scale and rotation bakes in fixed-size
// batches with a refresh, a GC checkpoint and a settle pause between
// batches.
func (f *Fixer) fixTransforms(objects []*scene.SceneObject, exclusions []string, bump func(string, int)) {
	var eligible []*scene.SceneObject
	for _, obj := range objects {
		if _, ok := f.store.LookupObject(obj.Name); !ok {
			continue
		}
		if excluded(obj.Name, exclusions) {
			continue
		}
		eligible = append(eligible, obj)
	}
	f.log.Debug("transform phase", "eligible", len(eligible), "batch_size", f.batchSize)

	// Scale bakes cover a whole instance group at once; the group's
	// shared data block marks its members as done.
	processed := make(map[*scene.MeshData]bool)

	total := (len(eligible) + f.batchSize - 1) / f.batchSize
	for start := 0; start < len(eligible); start += f.batchSize {
		end := min(start+f.batchSize, len(eligible))
		batch := eligible[start:end]

		f.store.Refresh()
		runtime.GC()

		for _, obj := range batch {
			current, ok := f.store.LookupObject(obj.Name)
			if !ok || current != obj {
				continue
			}

			if obj.Data == nil || !processed[obj.Data] {
				if n := f.transform.FixUnappliedScale(obj); n > 0 {
					bump(CountScalesApplied, n)
					if obj.Data != nil {
						processed[obj.Data] = true
					}
				}
			}

			if current, ok := f.store.LookupObject(obj.Name); !ok || current != obj {
				continue
			}
			if f.transform.FixUnappliedRotation(obj) > 0 {
				bump(CountRotationsApplied, 1)
			}
		}

		f.store.Refresh()
		runtime.GC()
		time.Sleep(batchSettle)

		f.log.Debug("transform batch complete",
			"batch", start/f.batchSize+1, "batches", total)
	}
}

// fixObjects is phase 2: one ordered pass of object-level repairs, then
// per-slot material remediation with identity dedupe.
func (f *Fixer) fixObjects(objects []*scene.SceneObject, exclusions []string, bump func(string, int)) {
	materialsProcessed := make(map[*scene.Material]bool)

	for _, obj := range objects {
		current, ok := f.store.LookupObject(obj.Name)
		if !ok || current != obj {
			continue
		}
		if excluded(obj.Name, exclusions) {
			continue
		}

		bump(CountEmptySlotsFixed, f.material.FixEmptySlots(obj))
		bump(CountDriversFixed, f.driver.FixInvalidDrivers(obj))
		if f.driver.FixDriverChains(obj) {
			bump(CountDriverChainsFixed, 1)
		}
		bump(CountModifiersFixed, f.modifier.FixBrokenModifiers(obj))
		if f.geometry.FixMissingUVs(obj) {
			bump(CountUVsGenerated, 1)
		}
		if f.dependency.FixParentLoop(obj) {
			bump(CountParentLoopsFixed, 1)
		}
		rig := f.rigging.FixVertexGroups(obj)
		bump(CountVertexGroupsCleaned, rig.Total())
		bump(CountWeightsNormalized, rig.Normalized)

		if !obj.HasMaterialSlots() {
			continue
		}

		// Snapshot: marking a broken slot rewrites the slot in place.
		slots := append([]*scene.MaterialSlot(nil), obj.Slots...)
		for idx, slot := range slots {
			if slot.Material == "" || slot.Material == rules.MarkerMaterialName {
				continue
			}
			mat, ok := f.store.LookupMaterial(slot.Material)
			if !ok {
				continue
			}
			if materialsProcessed[mat] {
				continue
			}
			materialsProcessed[mat] = true

			issue, broken := f.material.CheckBroken(mat.Name)
			switch {
			case broken && issue.Severity == rules.SeverityError:
				if f.material.MarkBroken(obj, idx) {
					bump(CountMaterialsRebuilt, 1)
				}
			case broken && issue.Severity == rules.SeverityWarning:
				if f.material.FixDisconnectedOutput(mat) {
					bump(CountDisconnectedFixed, 1)
				}
			}

			bump(CountDeprecatedReplaced, f.material.ReplaceDeprecatedNodes(mat))
			bump(CountTexturesPacked, f.material.PackExternalTextures(mat))
		}
	}
}

// FixBrokenShaders rebuilds every broken material referenced by the
// object set to a clean principled setup, one rebuild per unique
// material. Returns the number of materials rebuilt.
func (f *Fixer) FixBrokenShaders(objects []*scene.SceneObject) int {
	toFix := make(map[*scene.Material]bool)
	var order []*scene.Material

	for _, obj := range objects {
		if !obj.HasMaterialSlots() {
			continue
		}
		for _, slot := range obj.Slots {
			if slot.Material == "" {
				continue
			}
			mat, ok := f.store.LookupMaterial(slot.Material)
			if !ok || toFix[mat] {
				continue
			}
			if _, broken := f.material.CheckBroken(mat.Name); broken {
				toFix[mat] = true
				order = append(order, mat)
			}
		}
	}

	for _, mat := range order {
		f.material.FixMaterial(mat)
	}
	return len(order)
}
