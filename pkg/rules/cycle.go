// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"strings"

	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// ChainSeparator joins cycle member names when a chain is rendered for a
// finding message.
const ChainSeparator = " → "

// DetectParentLoop walks the parent chain from start and returns the
// minimal cycle as an ordered name list (first occurrence of the repeated
// name through the repeat, inclusive), or nil when the chain terminates.
//
// Every hop re-resolves the parent by name; a parent deleted mid-walk
// terminates the walk without a cycle.
func DetectParentLoop(store scene.Store, start *scene.SceneObject) []string {
	if start == nil {
		return nil
	}
	if _, ok := store.LookupObject(start.Name); !ok {
		return nil
	}

	visited := make(map[string]bool)
	var chain []string

	obj := start
	for {
		if visited[obj.Name] {
			return closeCycle(chain, obj.Name)
		}
		visited[obj.Name] = true
		chain = append(chain, obj.Name)

		if obj.Parent == "" {
			return nil
		}
		parent, ok := store.LookupObject(obj.Parent)
		if !ok {
			// Parent vanished mid-walk: no cycle through this branch.
			return nil
		}
		obj = parent
	}
}

// DetectDriverChain walks the driver dependency graph from start and
// returns the first cycle found, or nil. Unlike the parent chain, a
// driver graph branches: each driver variable target opens a new edge, so
// visited state is copied per branch to keep unrelated branches from
// sharing cycle state.
//
// A target referencing a vanished object terminates that branch; a target
// referencing an object with no animation data is a leaf.
func DetectDriverChain(store scene.Store, start *scene.SceneObject) []string {
	if start == nil {
		return nil
	}
	if _, ok := store.LookupObject(start.Name); !ok {
		return nil
	}
	return walkDriverChain(store, start, make(map[string]bool), nil)
}

func walkDriverChain(store scene.Store, obj *scene.SceneObject, visited map[string]bool, chain []string) []string {
	if visited[obj.Name] {
		return closeCycle(chain, obj.Name)
	}
	visited[obj.Name] = true
	chain = append(chain, obj.Name)

	if obj.Animation == nil {
		return nil
	}
	for _, curve := range obj.Animation.Drivers {
		if curve.Driver == nil {
			continue
		}
		for _, v := range curve.Driver.Variables {
			for _, target := range v.Targets {
				if target.Object == "" || target.Object == obj.Name {
					continue
				}
				next, ok := store.LookupObject(target.Object)
				if !ok {
					// Target vanished: this branch stops here.
					continue
				}
				if cycle := walkDriverChain(store, next, copyVisited(visited), chain[:len(chain):len(chain)]); cycle != nil {
					return cycle
				}
			}
		}
	}
	return nil
}

// closeCycle trims the walked chain to the minimal cycle: the sub-list
// from the first occurrence of repeated through the repeat, inclusive.
func closeCycle(chain []string, repeated string) []string {
	for i, name := range chain {
		if name == repeated {
			cycle := append([]string(nil), chain[i:]...)
			return append(cycle, repeated)
		}
	}
	return nil
}

func copyVisited(visited map[string]bool) map[string]bool {
	cp := make(map[string]bool, len(visited))
	for k, v := range visited {
		cp[k] = v
	}
	return cp
}

// chainString renders a cycle for a finding message.
func chainString(chain []string) string {
	return strings.Join(chain, ChainSeparator)
}

// chainContains reports whether name appears in the chain.
func chainContains(chain []string, name string) bool {
	for _, n := range chain {
		if n == name {
			return true
		}
	}
	return false
}
