// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/config"
	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/internal/archive"
	"github.com/apexstudio/scenedoctor/pkg/engine"
	"github.com/apexstudio/scenedoctor/pkg/scene/memstore"
	"github.com/apexstudio/scenedoctor/pkg/ux"
)

// buildEngine loads the scene snapshot and wires an engine with the
// configured limits. metrics stay nil for one-shot CLI runs.
func buildEngine(scenePath string) (*engine.Engine, *memstore.Store) {
	store, err := memstore.LoadFile(scenePath)
	if err != nil {
		fatal("Could not load scene %s: %v", scenePath, err)
	}
	eng := engine.New(store, logger, nil)
	eng.ApplyLimits(engine.Limits{
		BatchSize:         config.Global.Fix.BatchSize,
		HighPolyCount:     config.Global.Scan.HighPolyCount,
		VeryHighPolyCount: config.Global.Scan.VeryHighPolyCount,
		MaxTextureSize:    config.Global.Scan.MaxTextureSize,
	})
	return eng, store
}

// runScope builds the engine scope from flags, falling back to the
// configured exclusion list when the flag was not given.
func runScope(cmd *cobra.Command) engine.Scope {
	exclusions := config.Global.Scan.Exclusions
	if cmd.Flags().Changed("exclusions") {
		exclusions = exclusionsFlag
	}
	return engine.Scope{
		Collection: collectionName,
		Exclusions: engine.ParseExclusions(exclusions),
	}
}

// archiveRecord stores a report in the history archive when one is
// configured. Archive failures never fail the run.
func archiveRecord(rec archive.Record) {
	dir := config.Global.Archive.Dir
	if dir == "" {
		return
	}
	arch, err := archive.Open(dir, logger)
	if err != nil {
		logger.Warn("report archive unavailable", "dir", dir, "error", err)
		return
	}
	defer arch.Close()
	if err := arch.Put(rec); err != nil {
		logger.Warn("could not archive report", "run_id", rec.RunID, "error", err)
	}
}

// printJSON writes a report to stdout for scripting consumers.
func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal("Could not encode report: %v", err)
	}
	fmt.Println(string(data))
}

func runScan(cmd *cobra.Command, args []string) {
	eng, _ := buildEngine(args[0])
	scope := runScope(cmd)

	report, err := eng.Scan(scope)
	if err != nil {
		fatal("Scan failed: %v", err)
	}

	archiveRecord(archive.Record{
		RunID:    report.RunID,
		Kind:     archive.KindScan,
		Scope:    report.Scope,
		Findings: report.Findings,
		Errors:   report.Errors,
		Warnings: report.Warnings,
	})

	if jsonOutput {
		printJSON(report)
	} else {
		ux.Title(fmt.Sprintf("Scan: %s", report.Scope))
		fmt.Println(ux.RenderFindings(report.Findings))
		fmt.Println(ux.RenderTally(report.Errors, report.Warnings))
	}

	if report.Errors > 0 {
		os.Exit(2)
	}
}
