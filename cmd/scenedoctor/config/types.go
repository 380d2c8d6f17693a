// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"os"
	"path/filepath"
)

// DoctorConfig is the on-disk configuration, stored at
// ~/.scenedoctor/scenedoctor.yaml and created with defaults on first run.
type DoctorConfig struct {
	// Scan: validation pass tuning
	Scan ScanConfig `yaml:"scan"`

	// Fix: repair pass tuning
	Fix FixConfig `yaml:"fix"`

	// Server: HTTP front-end
	Server ServerConfig `yaml:"server"`

	// Archive: report history storage
	Archive ArchiveConfig `yaml:"archive"`

	// Logging: log destination and verbosity
	Logging LoggingConfig `yaml:"logging"`
}

type ScanConfig struct {
	// Exclusions is a comma-separated list of name prefixes to skip,
	// e.g. "WGT-" for rig widget objects.
	Exclusions string `yaml:"exclusions"`

	HighPolyCount     int `yaml:"high_poly_count" validate:"gte=1"`      // e.g. 50000
	VeryHighPolyCount int `yaml:"very_high_poly_count" validate:"gte=1"` // e.g. 100000
	MaxTextureSize    int `yaml:"max_texture_size" validate:"gte=1"`     // e.g. 8192
}

type FixConfig struct {
	// BatchSize bounds how many objects one transform batch touches.
	BatchSize int `yaml:"batch_size" validate:"gte=1,lte=500"`
}

type ServerConfig struct {
	Listen string `yaml:"listen" validate:"required,hostname_port"` // e.g. 127.0.0.1:8640
}

type ArchiveConfig struct {
	// Dir holds the badger report history. Empty disables archiving.
	Dir string `yaml:"dir"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
	Dir   string `yaml:"dir,omitempty"`
}

// DefaultConfig returns the first-run configuration.
func DefaultConfig() DoctorConfig {
	archiveDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		archiveDir = filepath.Join(home, ".scenedoctor", "reports")
	}
	return DoctorConfig{
		Scan: ScanConfig{
			Exclusions:        "WGT-",
			HighPolyCount:     50000,
			VeryHighPolyCount: 100000,
			MaxTextureSize:    8192,
		},
		Fix: FixConfig{
			BatchSize: 15,
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8640",
		},
		Archive: ArchiveConfig{
			Dir: archiveDir,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}
