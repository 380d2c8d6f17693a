// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"fmt"
	"time"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/rules"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// Scope selects which objects a run covers. An empty Collection means
// the whole scene.
type Scope struct {
	Collection string
	Exclusions []string
}

// ScanReport is the outcome of one validation scan.
type ScanReport struct {
	RunID    string          `json:"run_id"`
	Scope    string          `json:"scope"`
	Findings []rules.Finding `json:"findings"`
	Errors   int             `json:"errors"`
	Warnings int             `json:"warnings"`
}

// FixReport is the outcome of one auto-fix run, including the residual
// findings from the closing rescan.
type FixReport struct {
	RunID     string          `json:"run_id"`
	Scope     string          `json:"scope"`
	Counts    map[string]int  `json:"counts"`
	Remaining []rules.Finding `json:"remaining"`
	Errors    int             `json:"errors"`
	Warnings  int             `json:"warnings"`
}

// TotalFixed sums every fix counter.
func (r *FixReport) TotalFixed() int {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	return total
}

// Engine ties the scanner and fixer to one store. It is synchronous and
// single-threaded; callers wanting concurrency serialize outside.
type Engine struct {
	store   scene.Store
	log     *logging.Logger
	scanner *Scanner
	fixer   *Fixer
	metrics *Metrics
}

// New creates an engine over a store. metrics may be nil.
func New(store scene.Store, log *logging.Logger, metrics *Metrics) *Engine {
	return &Engine{
		store:   store,
		log:     log,
		scanner: NewScanner(store, log),
		fixer:   NewFixer(store, log),
		metrics: metrics,
	}
}

// SetBatchSize forwards to the fixer.
func (e *Engine) SetBatchSize(n int) { e.fixer.SetBatchSize(n) }

// Limits bundles the tunable engine thresholds. Zero fields keep the
// built-in defaults.
type Limits struct {
	BatchSize         int
	HighPolyCount     int
	VeryHighPolyCount int
	MaxTextureSize    int
}

// ApplyLimits pushes the limits into the scanner and fixer.
func (e *Engine) ApplyLimits(l Limits) {
	e.fixer.SetBatchSize(l.BatchSize)
	e.scanner.SetThresholds(l.HighPolyCount, l.VeryHighPolyCount, l.MaxTextureSize)
}

// resolveScope materializes the scope's object set.
func (e *Engine) resolveScope(scope Scope) ([]*scene.SceneObject, string, error) {
	if scope.Collection == "" {
		return e.store.Objects(), "Scene", nil
	}
	objects, err := e.store.CollectionObjects(scope.Collection)
	if err != nil {
		return nil, "", fmt.Errorf("resolving scope: %w", err)
	}
	return objects, fmt.Sprintf("Collection '%s'", scope.Collection), nil
}

// Scan validates the scoped objects and returns the findings.
func (e *Engine) Scan(scope Scope) (*ScanReport, error) {
	objects, scopeName, err := e.resolveScope(scope)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rc := NewRunContext(nil)
	findings := e.scanner.Scan(objects, scope.Exclusions)
	errors, warnings := CountBySeverity(findings)

	if e.metrics != nil {
		e.metrics.ObserveScan(time.Since(start), findings)
	}
	e.log.Info("scan finished",
		"scope", scopeName, "errors", errors, "warnings", warnings)

	return &ScanReport{
		RunID:    rc.ID(),
		Scope:    scopeName,
		Findings: findings,
		Errors:   errors,
		Warnings: warnings,
	}, nil
}

// AutoFix repairs every fixable issue in scope and rescans. observer may
// be nil; when set it receives every progress milestone.
func (e *Engine) AutoFix(scope Scope, observer Observer) (*FixReport, error) {
	rc := NewRunContext(observer)
	rc.Begin()
	defer rc.Finish()

	rc.Update(ProgressScanning, "Scanning objects...")
	objects, scopeName, err := e.resolveScope(scope)
	if err != nil {
		return nil, err
	}
	e.log.Info("auto-fix starting", "scope", scopeName, "objects", len(objects))

	rc.Update(ProgressFixing, "Running auto-fixes...")
	start := time.Now()
	counts := e.fixer.AutoFixAll(rc, objects, scope.Exclusions)
	rc.Update(ProgressFixesDone, "Re-scanning for remaining issues...")

	// Residual scan over a fresh object set: fixes may have removed or
	// re-linked entities.
	objects, _, err = e.resolveScope(scope)
	if err != nil {
		return nil, err
	}
	rc.Update(ProgressRescanning, "Updating results...")
	remaining := e.scanner.Scan(objects, scope.Exclusions)
	errors, warnings := CountBySeverity(remaining)

	if e.metrics != nil {
		e.metrics.ObserveFix(time.Since(start), counts)
	}
	rc.Update(ProgressComplete, "Complete!")

	return &FixReport{
		RunID:     rc.ID(),
		Scope:     scopeName,
		Counts:    counts,
		Remaining: remaining,
		Errors:    errors,
		Warnings:  warnings,
	}, nil
}

// FixShaders rebuilds the broken materials in scope, then rescans.
func (e *Engine) FixShaders(scope Scope) (*FixReport, error) {
	rc := NewRunContext(nil)
	rc.Begin()
	defer rc.Finish()

	objects, scopeName, err := e.resolveScope(scope)
	if err != nil {
		return nil, err
	}

	rebuilt := e.fixer.FixBrokenShaders(objects)
	rc.Add(CountMaterialsRebuilt, rebuilt)

	remaining := e.scanner.Scan(objects, scope.Exclusions)
	errors, warnings := CountBySeverity(remaining)
	e.log.Info("shader fix finished", "scope", scopeName, "rebuilt", rebuilt)

	counts := map[string]int{CountMaterialsRebuilt: rebuilt}
	return &FixReport{
		RunID:     rc.ID(),
		Scope:     scopeName,
		Counts:    counts,
		Remaining: remaining,
		Errors:    errors,
		Warnings:  warnings,
	}, nil
}
