// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package memstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// Snapshot is the YAML schema of a serialized scene, the input format of
// the scan/fix/serve commands.
type Snapshot struct {
	Meshes      []MeshSpec          `yaml:"meshes"`
	Images      []ImageSpec         `yaml:"images"`
	Materials   []MaterialSpec      `yaml:"materials"`
	Objects     []ObjectSpec        `yaml:"objects"`
	Collections map[string][]string `yaml:"collections"`
	Files       []string            `yaml:"files"`
}

// MeshSpec describes one shared geometry block.
type MeshSpec struct {
	Name      string         `yaml:"name"`
	Vertices  int            `yaml:"vertices"`
	Edges     int            `yaml:"edges"`
	Polygons  int            `yaml:"polygons"`
	UVLayers  []string       `yaml:"uv_layers"`
	ShapeKeys []ShapeKeySpec `yaml:"shape_keys"`
}

// ShapeKeySpec describes one shape key.
type ShapeKeySpec struct {
	Name        string `yaml:"name"`
	VertexGroup string `yaml:"vertex_group"`
}

// ImageSpec describes one image data block.
type ImageSpec struct {
	Name     string `yaml:"name"`
	Source   string `yaml:"source"`
	Filepath string `yaml:"filepath"`
	Packed   bool   `yaml:"packed"`
	HasData  bool   `yaml:"has_data"`
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
}

// MaterialSpec describes one material and its node graph.
type MaterialSpec struct {
	Name     string     `yaml:"name"`
	UseNodes bool       `yaml:"use_nodes"`
	Nodes    []NodeSpec `yaml:"nodes"`
	Links    []LinkSpec `yaml:"links"`
}

// NodeSpec describes one shading node.
type NodeSpec struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Image string `yaml:"image"`
}

// LinkSpec describes one node link.
type LinkSpec struct {
	From       string `yaml:"from"`
	FromSocket string `yaml:"from_socket"`
	To         string `yaml:"to"`
	ToSocket   string `yaml:"to_socket"`
}

// ObjectSpec describes one scene object.
type ObjectSpec struct {
	Name         string            `yaml:"name"`
	Type         string            `yaml:"type"`
	Scale        *scene.Vec3       `yaml:"scale"`
	Rotation     *scene.Vec3       `yaml:"rotation"`
	Parent       string            `yaml:"parent"`
	Data         string            `yaml:"data"`
	Bones        []string          `yaml:"bones"`
	Slots        []string          `yaml:"slots"`
	Modifiers    []ModifierSpec    `yaml:"modifiers"`
	Drivers      []DriverSpec      `yaml:"drivers"`
	VertexGroups []VertexGroupSpec `yaml:"vertex_groups"`
	Constraints  []ConstraintSpec  `yaml:"constraints"`
}

// ModifierSpec describes one modifier.
type ModifierSpec struct {
	Name            string `yaml:"name"`
	Type            string `yaml:"type"`
	Target          string `yaml:"target"`
	UseObjectOffset bool   `yaml:"use_object_offset"`
	OffsetObject    string `yaml:"offset_object"`
	Bound           bool   `yaml:"bound"`
}

// DriverSpec describes one driver curve.
type DriverSpec struct {
	Property   string      `yaml:"property"`
	Valid      *bool       `yaml:"valid"`
	Scripted   bool        `yaml:"scripted"`
	Expression string      `yaml:"expression"`
	Variables  []DriverVar `yaml:"variables"`
}

// DriverVar describes one driver variable and its targets.
type DriverVar struct {
	Name    string   `yaml:"name"`
	Targets []string `yaml:"targets"`
}

// VertexGroupSpec describes one vertex group.
type VertexGroupSpec struct {
	Name    string          `yaml:"name"`
	Weights map[int]float32 `yaml:"weights"`
}

// ConstraintSpec describes one constraint.
type ConstraintSpec struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Target string `yaml:"target"`
}

// LoadFile reads a snapshot file and builds a store from it.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene snapshot: %w", err)
	}
	return Load(data)
}

// Load builds a store from snapshot YAML.
func Load(data []byte) (*Store, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parsing scene snapshot: %w", err)
	}
	return Build(&snap)
}

// Build assembles a store from a parsed snapshot.
func Build(snap *Snapshot) (*Store, error) {
	s := New()

	meshes := make(map[string]*scene.MeshData, len(snap.Meshes))
	for _, m := range snap.Meshes {
		md := &scene.MeshData{
			Name:         m.Name,
			VertexCount:  m.Vertices,
			EdgeCount:    m.Edges,
			PolygonCount: m.Polygons,
			UVLayers:     m.UVLayers,
		}
		for _, sk := range m.ShapeKeys {
			md.ShapeKeys = append(md.ShapeKeys, &scene.ShapeKey{
				Name:        sk.Name,
				VertexGroup: sk.VertexGroup,
			})
		}
		meshes[m.Name] = md
	}

	for _, path := range snap.Files {
		s.AddFile(path)
	}

	for _, im := range snap.Images {
		source := scene.ImageSource(im.Source)
		if source == "" {
			source = scene.ImageSourceFile
		}
		s.AddImage(&scene.Image{
			Name:     im.Name,
			Source:   source,
			Filepath: im.Filepath,
			Packed:   im.Packed,
			HasData:  im.HasData,
			Width:    im.Width,
			Height:   im.Height,
		})
	}

	for _, ms := range snap.Materials {
		mat := &scene.Material{
			Name:     ms.Name,
			UseNodes: ms.UseNodes,
		}
		if len(ms.Nodes) > 0 || ms.UseNodes {
			tree := &scene.NodeTree{}
			for _, ns := range ms.Nodes {
				tree.Nodes = append(tree.Nodes, &scene.Node{
					Name:  ns.Name,
					Type:  scene.NodeType(ns.Type),
					Image: ns.Image,
				})
			}
			for _, ls := range ms.Links {
				from := tree.FindNode(ls.From)
				to := tree.FindNode(ls.To)
				if from == nil || to == nil {
					return nil, fmt.Errorf("material %q: link references unknown node %q or %q",
						ms.Name, ls.From, ls.To)
				}
				tree.Links = append(tree.Links, &scene.Link{
					FromNode:   ls.From,
					FromSocket: ls.FromSocket,
					ToNode:     ls.To,
					ToSocket:   ls.ToSocket,
				})
			}
			mat.Tree = tree
		}
		s.AddMaterial(mat)
	}

	for _, o := range snap.Objects {
		objType := scene.ObjectType(o.Type)
		if objType == "" {
			objType = scene.ObjectMesh
		}
		obj := &scene.SceneObject{
			Name:   o.Name,
			Type:   objType,
			Scale:  scene.One(),
			Parent: o.Parent,
		}
		if o.Scale != nil {
			obj.Scale = *o.Scale
		}
		if o.Rotation != nil {
			obj.Rotation = *o.Rotation
		}
		if o.Data != "" {
			md, ok := meshes[o.Data]
			if !ok {
				return nil, fmt.Errorf("object %q: unknown mesh data %q", o.Name, o.Data)
			}
			obj.Data = md
		}
		if len(o.Bones) > 0 {
			obj.Armature = &scene.ArmatureData{Bones: o.Bones}
		}
		for _, slot := range o.Slots {
			obj.Slots = append(obj.Slots, &scene.MaterialSlot{Material: slot})
		}
		for _, ms := range o.Modifiers {
			obj.Modifiers = append(obj.Modifiers, &scene.Modifier{
				Name:            ms.Name,
				Type:            scene.ModifierType(ms.Type),
				Target:          ms.Target,
				UseObjectOffset: ms.UseObjectOffset,
				OffsetObject:    ms.OffsetObject,
				Bound:           ms.Bound,
			})
		}
		if len(o.Drivers) > 0 {
			anim := &scene.AnimationData{}
			for _, ds := range o.Drivers {
				valid := true
				if ds.Valid != nil {
					valid = *ds.Valid
				}
				curve := &scene.DriverCurve{
					PropertyPath: ds.Property,
					Driver: &scene.Driver{
						Valid:      valid,
						Scripted:   ds.Scripted,
						Expression: ds.Expression,
					},
				}
				for _, vs := range ds.Variables {
					v := &scene.DriverVariable{Name: vs.Name}
					for _, t := range vs.Targets {
						v.Targets = append(v.Targets, &scene.DriverTarget{Object: t})
					}
					curve.Driver.Variables = append(curve.Driver.Variables, v)
				}
				anim.Drivers = append(anim.Drivers, curve)
			}
			obj.Animation = anim
		}
		for _, vs := range o.VertexGroups {
			weights := vs.Weights
			if weights == nil {
				weights = make(map[int]float32)
			}
			obj.VertexGroups = append(obj.VertexGroups, &scene.VertexGroup{
				Name:    vs.Name,
				Weights: weights,
			})
		}
		for _, cs := range o.Constraints {
			obj.Constraints = append(obj.Constraints, &scene.Constraint{
				Name:   cs.Name,
				Type:   cs.Type,
				Target: cs.Target,
			})
		}
		s.AddObject(obj)
	}

	for name, members := range snap.Collections {
		s.SetCollection(name, members)
	}

	return s, nil
}
