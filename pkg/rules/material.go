// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package rules

import (
	"fmt"

	"github.com/apexstudio/scenedoctor/pkg/logging"
	"github.com/apexstudio/scenedoctor/pkg/scene"
)

// MarkerMaterialName is the self-illuminating red material assigned to
// slots whose original material cannot be repaired in place.
const MarkerMaterialName = "_BROKEN TO FIX"

// DefaultMaxTextureSize is the edge length past which a texture draws a
// very-large warning.
const DefaultMaxTextureSize = 8192

// Shader output socket names.
const (
	socketBSDF     = "BSDF"
	socketEmission = "Emission"
)

// cyclesOnlyNodes render only under the path-tracing engine.
var cyclesOnlyNodes = map[scene.NodeType]bool{
	scene.NodeBSDFHair:           true,
	scene.NodeBSDFHairPrincipled: true,
	scene.NodeSubsurfaceScatter:  true,
	scene.NodeBSDFAnisotropic:    true,
	scene.NodeBSDFSheen:          true,
	scene.NodeBSDFToon:           true,
}

// deprecatedNodes maps legacy shader nodes to the migration advice.
var deprecatedNodes = map[scene.NodeType]string{
	scene.NodeBSDFDiffuse: "Use Principled BSDF instead",
	scene.NodeBSDFGlossy:  "Use Principled BSDF instead",
	scene.NodeEmission:    "Use Principled BSDF emission",
}

// MaterialRule validates material node graphs, their textures and their
// renderer compatibility. It operates per material slot rather than per
// object, so it sits outside the Rule interface.
type MaterialRule struct {
	store scene.Store
	log   *logging.Logger

	maxTextureSize int
}

// NewMaterialRule creates a material rule bound to a store.
func NewMaterialRule(store scene.Store, log *logging.Logger) *MaterialRule {
	return &MaterialRule{store: store, log: log, maxTextureSize: DefaultMaxTextureSize}
}

// SetMaxTextureSize overrides the very-large texture threshold. Values
// below 1 keep the current setting.
func (r *MaterialRule) SetMaxTextureSize(n int) {
	if n >= 1 {
		r.maxTextureSize = n
	}
}

// CheckBroken runs the breakage ladder on the named material. The first
// failing rung wins; a healthy material returns ok=false.
func (r *MaterialRule) CheckBroken(name string) (Issue, bool) {
	mat, found := r.store.LookupMaterial(name)
	if !found {
		return Issue{CategoryBrokenShader, "Material has been deleted.", SeverityError}, true
	}
	if !mat.UseNodes {
		return Issue{CategoryBrokenShader, "Material does not use Nodes (Legacy).", SeverityError}, true
	}
	tree := mat.Tree
	if tree == nil {
		return Issue{CategoryBrokenShader, "Node tree is None or invalid.", SeverityError}, true
	}
	output := tree.FindByType(scene.NodeOutputMaterial)
	if output == nil {
		return Issue{CategoryBrokenShader, "Missing Material Output node.", SeverityError}, true
	}
	if !tree.InputLinked(output, scene.SocketSurface) {
		return Issue{CategoryBrokenShader, "Material Output surface is disconnected.", SeverityWarning}, true
	}
	return Issue{}, false
}

// FixMaterial resets a material to a clean principled setup, discarding
// whatever graph it had.
func (r *MaterialRule) FixMaterial(mat *scene.Material) {
	mat.UseNodes = true
	if mat.Tree == nil {
		mat.Tree = &scene.NodeTree{}
	}
	tree := mat.Tree
	tree.Clear()

	output := tree.NewNode(scene.NodeOutputMaterial)
	output.Location = [2]float32{300, 0}

	principled := tree.NewNode(scene.NodeBSDFPrincipled)
	principled.Location = [2]float32{0, 0}

	tree.Connect(principled, socketBSDF, output, scene.SocketSurface)
}

// MarkerMaterial returns the shared marker material, creating it on
// first use. Repeated calls return the same data block.
func (r *MaterialRule) MarkerMaterial() *scene.Material {
	if mat, ok := r.store.LookupMaterial(MarkerMaterialName); ok {
		return mat
	}

	mat := r.store.CreateMaterial(MarkerMaterialName)
	mat.UseNodes = true
	mat.Tree = &scene.NodeTree{}
	tree := mat.Tree

	output := tree.NewNode(scene.NodeOutputMaterial)
	output.Location = [2]float32{300, 0}

	emission := tree.NewNode(scene.NodeEmission)
	emission.Location = [2]float32{0, 0}
	emission.Color = [4]float32{1, 0, 0, 1}
	emission.Strength = 2.0

	tree.Connect(emission, socketEmission, output, scene.SocketSurface)
	return mat
}

// MarkBroken replaces the material in one slot with the marker material.
// Returns false for out-of-range slot indices.
func (r *MaterialRule) MarkBroken(obj *scene.SceneObject, slot int) bool {
	if slot < 0 || slot >= len(obj.Slots) {
		return false
	}
	obj.Slots[slot].Material = r.MarkerMaterial().Name
	return true
}

// FixEmptySlots removes material slots holding no material, keeping slot
// order for the rest. Returns the number of slots removed.
func (r *MaterialRule) FixEmptySlots(obj *scene.SceneObject) int {
	if len(obj.Slots) == 0 {
		return 0
	}

	removed := 0
	kept := obj.Slots[:0]
	for _, slot := range obj.Slots {
		if slot.Material == "" {
			removed++
			continue
		}
		// Slots pointing at deleted materials are dropped with the
		// empties rather than carried forward as dangling names.
		if _, ok := r.store.LookupMaterial(slot.Material); !ok {
			removed++
			continue
		}
		kept = append(kept, slot)
	}
	obj.Slots = kept
	return removed
}

// FixDisconnectedOutput wires the material output's surface input to a
// principled shader, reusing an existing one when the graph has it.
// Returns true when a connection was made.
func (r *MaterialRule) FixDisconnectedOutput(mat *scene.Material) bool {
	if !mat.UseNodes || mat.Tree == nil {
		return false
	}
	tree := mat.Tree
	output := tree.FindByType(scene.NodeOutputMaterial)
	if output == nil || tree.InputLinked(output, scene.SocketSurface) {
		return false
	}

	principled := tree.FindByType(scene.NodeBSDFPrincipled)
	if principled == nil {
		principled = tree.NewNode(scene.NodeBSDFPrincipled)
		principled.Location = [2]float32{output.Location[0] - 300, output.Location[1]}
	}
	tree.Connect(principled, socketBSDF, output, scene.SocketSurface)
	return true
}

// ReplaceDeprecatedNodes swaps legacy shader nodes for principled ones,
// rewiring their downstream links. Returns the number of nodes replaced.
func (r *MaterialRule) ReplaceDeprecatedNodes(mat *scene.Material) int {
	if !mat.UseNodes || mat.Tree == nil {
		return 0
	}
	tree := mat.Tree

	replaced := 0
	for _, node := range append([]*scene.Node(nil), tree.Nodes...) {
		if _, deprecated := deprecatedNodes[node.Type]; !deprecated {
			continue
		}

		// Snapshot the outgoing links before the node goes away.
		outgoing := tree.OutgoingLinks(node)

		principled := tree.NewNode(scene.NodeBSDFPrincipled)
		principled.Location = node.Location

		for _, link := range outgoing {
			to := tree.FindNode(link.ToNode)
			if to == nil {
				continue
			}
			tree.Connect(principled, socketBSDF, to, link.ToSocket)
		}

		tree.RemoveNode(node)
		replaced++
	}
	return replaced
}

// ValidateTextures checks image and environment texture nodes for
// missing, unreadable or problematic images.
func (r *MaterialRule) ValidateTextures(mat *scene.Material) []Issue {
	if !mat.UseNodes || mat.Tree == nil {
		return nil
	}

	var issues []Issue
	report := func(msg string, sev Severity) {
		issues = append(issues, Issue{CategoryTexture, msg, sev})
	}

	for _, node := range append([]*scene.Node(nil), mat.Tree.Nodes...) {
		switch node.Type {
		case scene.NodeTexImage:
			if node.Image == "" {
				report("Image Texture node has no image assigned.", SeverityWarning)
				continue
			}
			img, ok := r.store.LookupImage(node.Image)
			if !ok {
				report("Image Texture node has no image assigned.", SeverityWarning)
				continue
			}
			if img.Source != scene.ImageSourceFile {
				continue
			}
			// Packed payloads live inside the file; nothing to verify.
			if img.Packed {
				continue
			}
			switch {
			case img.Filepath == "":
				report(fmt.Sprintf("Image '%s' has no filepath.", img.Name), SeverityError)
			case !r.store.FileExists(img.Filepath):
				report(fmt.Sprintf("Missing texture file: %s (%s)", img.Name, img.Filepath), SeverityError)
			case !img.HasData:
				report(fmt.Sprintf("Image '%s' failed to load.", img.Name), SeverityError)
			default:
				if img.Width <= 0 || img.Height <= 0 {
					continue
				}
				if img.Width > r.maxTextureSize || img.Height > r.maxTextureSize {
					report(fmt.Sprintf("Very large texture: %s (%dx%d)", img.Name, img.Width, img.Height), SeverityWarning)
				}
				if !isPowerOfTwo(img.Width) || !isPowerOfTwo(img.Height) {
					report(fmt.Sprintf("Non-power-of-2 texture: %s (%dx%d)", img.Name, img.Width, img.Height), SeverityWarning)
				}
			}

		case scene.NodeTexEnvironment:
			if node.Image == "" {
				report("Environment Texture node has no image assigned.", SeverityWarning)
				continue
			}
			img, ok := r.store.LookupImage(node.Image)
			if !ok {
				report("Environment Texture node has no image assigned.", SeverityWarning)
				continue
			}
			if img.Source != scene.ImageSourceFile || img.Packed {
				continue
			}
			if img.Filepath == "" || !r.store.FileExists(img.Filepath) {
				report(fmt.Sprintf("Missing environment texture: %s", img.Name), SeverityError)
			}
		}
	}
	return issues
}

// CheckCompatibility flags shader nodes that will not render everywhere.
func (r *MaterialRule) CheckCompatibility(mat *scene.Material) []Issue {
	if !mat.UseNodes || mat.Tree == nil {
		return nil
	}

	var issues []Issue
	for _, node := range mat.Tree.Nodes {
		if cyclesOnlyNodes[node.Type] {
			issues = append(issues, Issue{
				Category: CategoryShaderCompat,
				Message:  fmt.Sprintf("Node '%s' (%s) is Cycles-only, may not render in Eevee.", node.Name, node.Type),
				Severity: SeverityWarning,
			})
		}
		if advice, ok := deprecatedNodes[node.Type]; ok {
			issues = append(issues, Issue{
				Category: CategoryShaderCompat,
				Message:  fmt.Sprintf("Deprecated node '%s' (%s). %s", node.Name, node.Type, advice),
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}

// PackExternalTextures embeds every resolvable file-backed texture the
// material references. Returns the number of images packed.
func (r *MaterialRule) PackExternalTextures(mat *scene.Material) int {
	if !mat.UseNodes || mat.Tree == nil {
		return 0
	}

	packed := 0
	for _, node := range mat.Tree.Nodes {
		if node.Type != scene.NodeTexImage && node.Type != scene.NodeTexEnvironment {
			continue
		}
		if node.Image == "" {
			continue
		}
		img, ok := r.store.LookupImage(node.Image)
		if !ok {
			continue
		}
		if img.Source != scene.ImageSourceFile || img.Packed {
			continue
		}
		if img.Filepath == "" || !r.store.FileExists(img.Filepath) {
			continue
		}
		if err := r.store.PackImage(img); err != nil {
			r.log.Warn("failed to pack texture", "image", img.Name, "error", err)
			continue
		}
		packed++
	}
	return packed
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
