// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scene

import "fmt"

// NodeType tags a shading node.
type NodeType string

const (
	NodeOutputMaterial NodeType = "OUTPUT_MATERIAL"
	NodeBSDFPrincipled NodeType = "BSDF_PRINCIPLED"
	NodeEmission       NodeType = "EMISSION"
	NodeBSDFDiffuse    NodeType = "BSDF_DIFFUSE"
	NodeBSDFGlossy     NodeType = "BSDF_GLOSSY"
	NodeTexImage       NodeType = "TEX_IMAGE"
	NodeTexEnvironment NodeType = "TEX_ENVIRONMENT"

	NodeBSDFHair           NodeType = "BSDF_HAIR"
	NodeBSDFHairPrincipled NodeType = "BSDF_HAIR_PRINCIPLED"
	NodeSubsurfaceScatter  NodeType = "SUBSURFACE_SCATTERING"
	NodeBSDFAnisotropic    NodeType = "BSDF_ANISOTROPIC"
	NodeBSDFSheen          NodeType = "BSDF_SHEEN"
	NodeBSDFToon           NodeType = "BSDF_TOON"
)

// Well-known socket names.
const (
	SocketSurface = "Surface"
	SocketShader  = "Shader"
)

// Material is a shared material data block with a shading node graph.
type Material struct {
	Name string

	// UseNodes gates the node graph. A material with UseNodes unset is a
	// legacy material and is considered broken.
	UseNodes bool

	// Tree is the shading node graph, nil when never built.
	Tree *NodeTree
}

// Node is one shading node. Sockets are addressed by name on links; the
// node itself only carries type-specific payloads.
type Node struct {
	Name string
	Type NodeType

	// Image is the referenced image's name for texture nodes, "" when
	// no image is assigned.
	Image string

	// Location is the node's editor position, preserved across repairs.
	Location [2]float32

	// Color and Strength carry the emission payload for shader nodes
	// that have one; zero for everything else.
	Color    [4]float32
	Strength float32
}

// Link connects an output socket of one node to an input socket of another.
type Link struct {
	FromNode   string
	FromSocket string
	ToNode     string
	ToSocket   string
}

// NodeTree is a material's shading graph.
type NodeTree struct {
	Nodes []*Node
	Links []*Link

	serial int
}

// FindByType returns the first node of the given type, or nil.
func (t *NodeTree) FindByType(nt NodeType) *Node {
	for _, n := range t.Nodes {
		if n.Type == nt {
			return n
		}
	}
	return nil
}

// FindNode returns the node with the given name, or nil.
func (t *NodeTree) FindNode(name string) *Node {
	for _, n := range t.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// NewNode appends a node of the given type with a tree-unique name.
func (t *NodeTree) NewNode(nt NodeType) *Node {
	t.serial++
	n := &Node{
		Name: fmt.Sprintf("%s.%03d", nt, t.serial),
		Type: nt,
	}
	t.Nodes = append(t.Nodes, n)
	return n
}

// Connect links from's output socket to to's input socket. An existing
// link into the same input socket is replaced, matching host semantics
// where an input socket holds at most one link.
func (t *NodeTree) Connect(from *Node, fromSocket string, to *Node, toSocket string) {
	kept := t.Links[:0]
	for _, l := range t.Links {
		if l.ToNode == to.Name && l.ToSocket == toSocket {
			continue
		}
		kept = append(kept, l)
	}
	t.Links = append(kept, &Link{
		FromNode:   from.Name,
		FromSocket: fromSocket,
		ToNode:     to.Name,
		ToSocket:   toSocket,
	})
}

// InputLinked reports whether the named input socket of a node has a link.
func (t *NodeTree) InputLinked(node *Node, socket string) bool {
	for _, l := range t.Links {
		if l.ToNode == node.Name && l.ToSocket == socket {
			return true
		}
	}
	return false
}

// OutgoingLinks returns a snapshot of the links leaving a node. Callers
// about to remove the node must take this snapshot first, because removal
// invalidates the live link list.
func (t *NodeTree) OutgoingLinks(node *Node) []Link {
	var out []Link
	for _, l := range t.Links {
		if l.FromNode == node.Name {
			out = append(out, *l)
		}
	}
	return out
}

// RemoveNode deletes a node and every link touching it.
func (t *NodeTree) RemoveNode(node *Node) {
	nodes := t.Nodes[:0]
	for _, n := range t.Nodes {
		if n != node {
			nodes = append(nodes, n)
		}
	}
	t.Nodes = nodes

	links := t.Links[:0]
	for _, l := range t.Links {
		if l.FromNode != node.Name && l.ToNode != node.Name {
			links = append(links, l)
		}
	}
	t.Links = links
}

// Clear removes every node and link.
func (t *NodeTree) Clear() {
	t.Nodes = nil
	t.Links = nil
}
