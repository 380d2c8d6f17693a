// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/scene"
	"github.com/apexstudio/scenedoctor/pkg/scene/memstore"
)

// testLog drops everything; rule logging is not under test here.
var testLog = logging.Discard()

// newMesh builds a plain mesh object with its own data block.
func newMesh(name string) *scene.SceneObject {
	return &scene.SceneObject{
		Name:  name,
		Type:  scene.ObjectMesh,
		Scale: scene.One(),
		Data: &scene.MeshData{
			Name:         name + "_mesh",
			VertexCount:  8,
			EdgeCount:    12,
			PolygonCount: 6,
			UVLayers:     []string{"UVMap"},
		},
	}
}

// addHealthyMaterial registers a material with a connected principled
// setup, the shape FixMaterial produces.
func addHealthyMaterial(store *memstore.Store, name string) *scene.Material {
	mat := store.AddMaterial(&scene.Material{Name: name, UseNodes: true, Tree: &scene.NodeTree{}})
	output := mat.Tree.NewNode(scene.NodeOutputMaterial)
	principled := mat.Tree.NewNode(scene.NodeBSDFPrincipled)
	mat.Tree.Connect(principled, "BSDF", output, scene.SocketSurface)
	return mat
}

// addDriver appends a driver curve to an object, creating the animation
// data on first use.
func addDriver(obj *scene.SceneObject, property string, drv *scene.Driver) *scene.DriverCurve {
	if obj.Animation == nil {
		obj.Animation = &scene.AnimationData{}
	}
	curve := &scene.DriverCurve{PropertyPath: property, Driver: drv}
	obj.Animation.Drivers = append(obj.Animation.Drivers, curve)
	return curve
}

// driverOn builds a valid driver targeting the named objects.
func driverOn(targets ...string) *scene.Driver {
	v := &scene.DriverVariable{Name: "var"}
	for _, t := range targets {
		v.Targets = append(v.Targets, &scene.DriverTarget{Object: t})
	}
	return &scene.Driver{Valid: true, Variables: []*scene.DriverVariable{v}}
}
