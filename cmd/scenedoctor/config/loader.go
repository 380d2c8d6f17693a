// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// Global is a singleton instance
	Global DoctorConfig
	once   sync.Once

	validate = validator.New()
)

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".scenedoctor", "scenedoctor.yaml"), nil
}

// Load ensures the config is loaded into the Global variable
func Load() error {
	var err error
	once.Do(func() {
		err = loadInternal()
	})
	return err
}

func loadInternal() error {
	configPath, err := Path()
	if err != nil {
		return err
	}
	// create it if it doesn't exist
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("First run detected, creating the config at %s\n", configPath)
		if err := createDefault(configPath); err != nil {
			return err
		}
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read the config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return err
	}
	Global = cfg
	return nil
}

// Parse unmarshals and validates a config document. Fields the document
// omits keep their defaults.
func Parse(data []byte) (DoctorConfig, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DoctorConfig{}, fmt.Errorf("failed to parse the config: %w", err)
	}
	if err := validate.Struct(cfg); err != nil {
		return DoctorConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
