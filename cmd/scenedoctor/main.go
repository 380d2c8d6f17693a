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

	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/config"
	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/ux"
)

var logger *logging.Logger

func main() {
	defer func() {
		if logger != nil {
			logger.Close()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := config.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger = logging.New(logging.Config{
			Level:   logging.ParseLevel(config.Global.Logging.Level),
			LogDir:  config.Global.Logging.Dir,
			Service: "cli",
			JSON:    config.Global.Logging.JSON,
			Quiet:   jsonOutput,
		})
		if jsonOutput {
			ux.SetPlain(true)
		}
	}
}

// fatal prints a styled error and exits. It is the one exit path the
// run functions share.
func fatal(format string, args ...any) {
	ux.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
