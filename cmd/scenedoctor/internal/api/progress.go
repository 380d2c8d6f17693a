// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package api

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/apexstudio/scenedoctor/pkg/engine"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// progressHub fans progress snapshots out to websocket subscribers. A
// slow subscriber drops updates rather than stalling the run.
type progressHub struct {
	mu   sync.Mutex
	subs map[chan engine.Progress]struct{}
	last engine.Progress
}

func newProgressHub() *progressHub {
	return &progressHub{subs: make(map[chan engine.Progress]struct{})}
}

// publish is the engine.Observer attached to fix runs.
func (h *progressHub) publish(p engine.Progress) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = p
	for ch := range h.subs {
		select {
		case ch <- p:
		default:
		}
	}
}

func (h *progressHub) subscribe() chan engine.Progress {
	ch := make(chan engine.Progress, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	ch <- h.last
	h.mu.Unlock()
	return ch
}

func (h *progressHub) unsubscribe(ch chan engine.Progress) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// handleProgress streams progress milestones over a websocket until the
// client disconnects.
func (s *Server) handleProgress(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Error("failed to upgrade the websocket", "error", err)
		return
	}
	defer ws.Close()
	s.log.Debug("progress client connected")

	ch := s.hub.subscribe()
	defer s.hub.unsubscribe(ch)

	// Reader goroutine: its only job is to notice the disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case p := <-ch:
			if err := ws.WriteJSON(p); err != nil {
				s.log.Debug("progress client disconnected", "error", err)
				return
			}
		case <-done:
			return
		}
	}
}
