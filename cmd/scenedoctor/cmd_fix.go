// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/internal/archive"
	"github.com/apexstudio/scenedoctor/pkg/engine"
	"github.com/apexstudio/scenedoctor/pkg/ux"
)

func runFix(cmd *cobra.Command, args []string) {
	eng, _ := buildEngine(args[0])
	if batchSize > 0 {
		eng.SetBatchSize(batchSize)
	}
	scope := runScope(cmd)

	var observer engine.Observer
	if !jsonOutput {
		observer = func(p engine.Progress) {
			fmt.Printf("\r%s", ux.ProgressLine(p.Percentage, p.Message))
			if p.Percentage >= engine.ProgressComplete {
				fmt.Println()
			}
		}
	}

	var (
		report *engine.FixReport
		err    error
	)
	if shadersOnly {
		report, err = eng.FixShaders(scope)
	} else {
		report, err = eng.AutoFix(scope, observer)
	}
	if err != nil {
		fatal("Fix failed: %v", err)
	}

	archiveRecord(archive.Record{
		RunID:    report.RunID,
		Kind:     archive.KindFix,
		Scope:    report.Scope,
		Findings: report.Remaining,
		Counts:   report.Counts,
		Errors:   report.Errors,
		Warnings: report.Warnings,
	})

	if jsonOutput {
		printJSON(report)
		return
	}

	ux.Title(fmt.Sprintf("Auto-fix: %s", report.Scope))
	ux.Success(ux.RenderFixSummary(report.Counts, engine.CountKeys))
	if len(report.Remaining) > 0 {
		ux.Warning(fmt.Sprintf("%d issues remain after fixing:", len(report.Remaining)))
		fmt.Println(ux.RenderFindings(report.Remaining))
	}
	fmt.Println(ux.RenderTally(report.Errors, report.Warnings))

	if report.Errors > 0 {
		os.Exit(2)
	}
}
