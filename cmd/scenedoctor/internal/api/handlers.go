// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/internal/archive"
	"github.com/apexstudio/scenedoctor/pkg/engine"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// RunRequest scopes a scan or fix invocation. An empty collection means
// the whole scene; empty exclusions fall back to the server default.
type RunRequest struct {
	Collection string `json:"collection"`
	Exclusions string `json:"exclusions"`
}

func (s *Server) scopeOf(req RunRequest) engine.Scope {
	patterns := req.Exclusions
	if patterns == "" {
		patterns = s.defaultExclusions
	}
	return engine.Scope{
		Collection: req.Collection,
		Exclusions: engine.ParseExclusions(patterns),
	}
}

func (s *Server) handleScan(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var report *engine.ScanReport
	err := s.tryRun(func() error {
		var err error
		report, err = s.engine.Scan(s.scopeOf(req))
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	s.archiveRecord(archive.Record{
		RunID:     report.RunID,
		Kind:      archive.KindScan,
		Timestamp: time.Now(),
		Scope:     report.Scope,
		Findings:  report.Findings,
		Errors:    report.Errors,
		Warnings:  report.Warnings,
	})
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleFix(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var report *engine.FixReport
	err := s.tryRun(func() error {
		var err error
		report, err = s.engine.AutoFix(s.scopeOf(req), s.hub.publish)
		return err
	})
	if err != nil {
		s.fail(c, err)
		return
	}

	s.archiveRecord(archive.Record{
		RunID:     report.RunID,
		Kind:      archive.KindFix,
		Timestamp: time.Now(),
		Scope:     report.Scope,
		Findings:  report.Remaining,
		Counts:    report.Counts,
		Errors:    report.Errors,
		Warnings:  report.Warnings,
	})
	c.JSON(http.StatusOK, report)
}

func (s *Server) handleListReports(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report archive is disabled"})
		return
	}
	records, err := s.archive.List(50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": records})
}

func (s *Server) handleGetReport(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "report archive is disabled"})
		return
	}
	rec, err := s.archive.Get(c.Param("runId"))
	if errors.Is(err, archive.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such run"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// fail maps engine errors to HTTP responses.
func (s *Server) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, scene.ErrCollectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.Error("run failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *Server) archiveRecord(rec archive.Record) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Put(rec); err != nil {
		s.log.Warn("failed to archive report", "run_id", rec.RunID, "error", err)
	}
}
