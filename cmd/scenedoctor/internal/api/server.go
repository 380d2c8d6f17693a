// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package api exposes the validation engine over HTTP: scan and fix
// endpoints, a websocket progress feed, report history and metrics.
package api

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/apexstudio/scenedoctor/cmd/scenedoctor/internal/archive"
	"github.com/apexstudio/scenedoctor/pkg/engine"
	"github.com/apexstudio/scenedoctor/pkg/logging"
)

// ErrBusy is returned when a scan or fix is already running. The engine
// is single-threaded; concurrent runs are refused, not queued.
var ErrBusy = errors.New("api: a run is already in progress")

// Server wires the engine to gin.
type Server struct {
	engine   *engine.Engine
	archive  *archive.Archive // nil disables report history
	log      *logging.Logger
	registry *prometheus.Registry // nil disables /metrics
	hub      *progressHub

	// defaultExclusions applies when a request carries none.
	defaultExclusions string

	// runMu serializes engine invocations; the engine itself must never
	// see concurrent callers.
	runMu sync.Mutex
}

// NewServer creates a server. arch and registry may be nil.
func NewServer(eng *engine.Engine, arch *archive.Archive, registry *prometheus.Registry,
	defaultExclusions string, log *logging.Logger) *Server {
	return &Server{
		engine:            eng,
		archive:           arch,
		log:               log,
		registry:          registry,
		hub:               newProgressHub(),
		defaultExclusions: defaultExclusions,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.handleHealth)
	if s.registry != nil {
		router.GET("/metrics", gin.WrapH(
			promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/scan", s.handleScan)
		v1.POST("/fix", s.handleFix)
		v1.GET("/progress", s.handleProgress)
		v1.GET("/reports", s.handleListReports)
		v1.GET("/reports/:runId", s.handleGetReport)
	}
	return router
}

// Run serves until the listener fails.
func (s *Server) Run(listen string) error {
	s.log.Info("api listening", "addr", listen)
	return s.Router().Run(listen)
}

// tryRun executes fn while holding the run lock, refusing concurrent
// invocations.
func (s *Server) tryRun(fn func() error) error {
	if !s.runMu.TryLock() {
		return ErrBusy
	}
	defer s.runMu.Unlock()
	return fn()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
