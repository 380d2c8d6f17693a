// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/config"
	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/internal/archive"
	"github.com/apexstudio/scenedoctor/pkg/ux"
)

// openArchive opens the configured report archive or exits.
func openArchive() *archive.Archive {
	dir := config.Global.Archive.Dir
	if dir == "" {
		fatal("No report archive configured; set archive.dir in the config file")
	}
	arch, err := archive.Open(dir, logger)
	if err != nil {
		fatal("Could not open report archive at %s: %v", dir, err)
	}
	return arch
}

func runListReports(cmd *cobra.Command, args []string) {
	arch := openArchive()
	defer arch.Close()

	records, err := arch.List(reportLimit)
	if err != nil {
		fatal("Could not list reports: %v", err)
	}
	if len(records) == 0 {
		ux.Muted("No archived reports yet.")
		return
	}

	if jsonOutput {
		printJSON(records)
		return
	}

	ux.Title("Archived reports")
	for _, rec := range records {
		fixed := 0
		for _, n := range rec.Counts {
			fixed += n
		}
		line := fmt.Sprintf("%s  %-4s  %-36s  %-20s  %d errors, %d warnings",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			rec.Kind, rec.RunID, rec.Scope, rec.Errors, rec.Warnings)
		if rec.Kind == archive.KindFix {
			line += fmt.Sprintf(", %d fixed", fixed)
		}
		fmt.Println(line)
	}
}

func runShowReport(cmd *cobra.Command, args []string) {
	arch := openArchive()
	defer arch.Close()

	rec, err := arch.Get(args[0])
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			fatal("No report with run ID %s", args[0])
		}
		fatal("Could not read report: %v", err)
	}
	printJSON(rec)
}
