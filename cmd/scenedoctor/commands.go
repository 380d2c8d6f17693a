// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	jsonOutput     bool
	collectionName string
	exclusionsFlag string
	batchSize      int
	shadersOnly    bool
	listenAddr     string
	reportLimit    int

	rootCmd = &cobra.Command{
		Use:   "scenedoctor",
		Short: "Validate and repair scene snapshots",
		Long: `SceneDoctor scans a serialized scene for broken materials, invalid
drivers, unbound modifiers, unapplied transforms, degenerate geometry and
rigging problems, and can repair most of them in place.`,
	}

	scanCmd = &cobra.Command{
		Use:   "scan [scene.yaml]",
		Short: "Scan a scene snapshot and report every issue found",
		Args:  cobra.ExactArgs(1),
		Run:   runScan, // Defined in cmd_scan.go
	}

	fixCmd = &cobra.Command{
		Use:   "fix [scene.yaml]",
		Short: "Auto-fix a scene snapshot and report what remains",
		Args:  cobra.ExactArgs(1),
		Run:   runFix, // Defined in cmd_fix.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve [scene.yaml]",
		Short: "Serve scan/fix over HTTP with live progress and metrics",
		Args:  cobra.ExactArgs(1),
		Run:   runServe, // Defined in cmd_serve.go
	}

	// --- Report History ---
	reportsCmd = &cobra.Command{
		Use:   "reports",
		Short: "Browse archived scan and fix reports",
	}
	reportsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the most recent archived reports",
		Run:   runListReports, // Defined in cmd_reports.go
	}
	reportsShowCmd = &cobra.Command{
		Use:   "show [run_id]",
		Short: "Print one archived report as JSON",
		Args:  cobra.ExactArgs(1),
		Run:   runShowReport, // Defined in cmd_reports.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Emit machine-readable JSON instead of styled output")

	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVarP(&collectionName, "collection", "c", "",
		"Limit the run to one collection (default: whole scene)")
	scanCmd.Flags().StringVar(&exclusionsFlag, "exclusions", "",
		"Comma-separated name prefixes to skip (overrides config)")

	rootCmd.AddCommand(fixCmd)
	fixCmd.Flags().StringVarP(&collectionName, "collection", "c", "",
		"Limit the run to one collection (default: whole scene)")
	fixCmd.Flags().StringVar(&exclusionsFlag, "exclusions", "",
		"Comma-separated name prefixes to skip (overrides config)")
	fixCmd.Flags().IntVar(&batchSize, "batch-size", 0,
		"Objects per transform batch (overrides config)")
	fixCmd.Flags().BoolVar(&shadersOnly, "shaders-only", false,
		"Only rebuild broken shaders, skip every other fix")

	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "listen", "",
		"Listen address, e.g. 127.0.0.1:8640 (overrides config)")

	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsListCmd.Flags().IntVar(&reportLimit, "limit", 20,
		"Maximum number of reports to list")
}
