// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/config"
	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/internal/api"
	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/internal/archive"
	"github.com/apexstudio/scenedoctor/pkg/engine"
	"github.com/apexstudio/scenedoctor/pkg/scene/memstore"
	"github.com/apexstudio/scenedoctor/pkg/ux"
)

func runServe(cmd *cobra.Command, args []string) {
	scenePath := args[0]
	store, err := memstore.LoadFile(scenePath)
	if err != nil {
		fatal("Could not load scene %s: %v", scenePath, err)
	}

	registry := prometheus.NewRegistry()
	eng := engine.New(store, logger, engine.NewMetrics(registry))
	eng.ApplyLimits(engine.Limits{
		BatchSize:         config.Global.Fix.BatchSize,
		HighPolyCount:     config.Global.Scan.HighPolyCount,
		VeryHighPolyCount: config.Global.Scan.VeryHighPolyCount,
		MaxTextureSize:    config.Global.Scan.MaxTextureSize,
	})

	var arch *archive.Archive
	if dir := config.Global.Archive.Dir; dir != "" {
		arch, err = archive.Open(dir, logger)
		if err != nil {
			fatal("Could not open report archive at %s: %v", dir, err)
		}
		defer arch.Close()
	}

	listen := config.Global.Server.Listen
	if listenAddr != "" {
		listen = listenAddr
	}

	srv := api.NewServer(eng, arch, registry, config.Global.Scan.Exclusions, logger)
	ux.Info(fmt.Sprintf("Serving %s on http://%s", scenePath, listen))
	if err := srv.Run(listen); err != nil {
		fatal("Server stopped: %v", err)
	}
}
