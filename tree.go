// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import "sort"

// Attribute pairs an interned name with its value. A node's attribute
// storage is a multimap: InsertAttribute preserves multiplicity,
// SetAttribute does not.
type Attribute struct {
	Name  StringID
	Value AttributeValue
}

// nodeData is the arena-resident representation of one tree node. Nodes
// never hold pointers to each other; every reference is an index into the
// owning Tree's nodes slice. Real mod files nest deeply enough that a
// pointer-chasing, runtime-recursive walk would risk blowing the stack, so
// every traversal in this package (dump, merge, binary encode/decode) uses
// an explicit work stack over these indices instead.
type nodeData struct {
	name     StringID
	attrs    []Attribute
	children []int
}

// Tree bundles a root node with the Interner that owns every string id
// reachable from it. Trees are independent: an operation that reaches
// across two trees (merge, binary load) must translate string ids through
// the source tree's Interner into the destination's.
type Tree struct {
	Interner *Interner
	nodes    []nodeData
}

// NewTree creates a tree with a freshly allocated Interner and a root node
// named rootName.
func NewTree(rootName string) *Tree {
	t := &Tree{Interner: NewInterner()}
	t.nodes = append(t.nodes, nodeData{})
	t.nodes[0].name = t.Interner.Add(rootName)
	return t
}

// Root returns a handle to the tree's root node.
func (t *Tree) Root() Node { return Node{tree: t, idx: 0} }

// NodeCount returns the total number of nodes in the tree, root included.
func (t *Tree) NodeCount() int { return len(t.nodes) }

// translateID interns, into this tree, the string that id names in
// srcInterner. Used by merge and the binary loader whenever a payload
// carries a foreign string id.
func (t *Tree) translateID(srcInterner *Interner, id StringID) StringID {
	return t.Interner.Add(srcInterner.Get(id))
}

// Node is a lightweight handle to one node in a Tree's arena. It is cheap
// to copy and safe to hold across appends to the tree (appends never move
// existing entries, only grow the slice).
type Node struct {
	tree *Tree
	idx  int
}

// Tree returns the owning tree.
func (n Node) Tree() *Tree { return n.tree }

// Name returns the node's interned name id.
func (n Node) Name() StringID { return n.tree.nodes[n.idx].name }

// SetName reassigns the node's name id.
func (n Node) SetName(id StringID) { n.tree.nodes[n.idx].name = id }

// NameString resolves the node's name through its tree's interner.
func (n Node) NameString() string { return n.tree.Interner.Get(n.Name()) }

// InsertAttribute appends an attribute, preserving multiplicity: calling it
// twice with the same name leaves two attributes with that name.
func (n Node) InsertAttribute(name StringID, v AttributeValue) {
	nd := &n.tree.nodes[n.idx]
	nd.attrs = append(nd.attrs, Attribute{Name: name, Value: v})
}

// SetAttribute leaves exactly one attribute with the given name: it
// overwrites the first existing occurrence in place and drops any further
// duplicates, or appends a new attribute if none existed.
func (n Node) SetAttribute(name StringID, v AttributeValue) {
	nd := &n.tree.nodes[n.idx]

	filtered := nd.attrs[:0]
	replaced := false
	for _, a := range nd.attrs {
		if a.Name == name {
			if !replaced {
				filtered = append(filtered, Attribute{Name: name, Value: v})
				replaced = true
			}
			continue
		}
		filtered = append(filtered, a)
	}
	if !replaced {
		filtered = append(filtered, Attribute{Name: name, Value: v})
	}
	nd.attrs = filtered
}

// GetAttribute returns the first attribute with the given name, in
// insertion order.
func (n Node) GetAttribute(name StringID) (AttributeValue, bool) {
	for _, a := range n.tree.nodes[n.idx].attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return AttributeValue{}, false
}

// GetAttributes returns every attribute with the given name, in insertion
// order.
func (n Node) GetAttributes(name StringID) []AttributeValue {
	var out []AttributeValue
	for _, a := range n.tree.nodes[n.idx].attrs {
		if a.Name == name {
			out = append(out, a.Value)
		}
	}
	return out
}

// Attributes returns a copy of the node's attributes ordered primarily by
// name id, with insertion order preserved among attributes that share a
// name. This is the order the text and binary dumpers serialize in.
func (n Node) Attributes() []Attribute {
	nd := n.tree.nodes[n.idx]
	out := make([]Attribute, len(nd.attrs))
	copy(out, nd.attrs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AttributesInInsertOrder returns the node's attributes in raw insertion
// order, the order the merge engine iterates source attributes in.
func (n Node) AttributesInInsertOrder() []Attribute {
	nd := n.tree.nodes[n.idx]
	out := make([]Attribute, len(nd.attrs))
	copy(out, nd.attrs)
	return out
}

// AppendChild creates a new child node named name, appends it to n's
// subnode list (subnode order is significant and preserves insertion
// order), and returns a handle to it.
func (n Node) AppendChild(name StringID) Node {
	t := n.tree
	t.nodes = append(t.nodes, nodeData{name: name})
	childIdx := len(t.nodes) - 1
	t.nodes[n.idx].children = append(t.nodes[n.idx].children, childIdx)
	return Node{tree: t, idx: childIdx}
}

// Subnodes returns handles to this node's children, in order.
func (n Node) Subnodes() []Node {
	nd := n.tree.nodes[n.idx]
	out := make([]Node, len(nd.children))
	for i, c := range nd.children {
		out[i] = Node{tree: n.tree, idx: c}
	}
	return out
}

// NumSubnodes returns the number of direct children.
func (n Node) NumSubnodes() int { return len(n.tree.nodes[n.idx].children) }

// RemoveSubnode drops the child at position i (0-based, in subnode order).
// The removed node's own arena slot is left unreferenced, not reclaimed:
// trees are build-once, write-once structures in this compiler, so arena
// compaction is not worth the bookkeeping.
func (n Node) RemoveSubnode(i int) {
	nd := &n.tree.nodes[n.idx]
	nd.children = append(nd.children[:i], nd.children[i+1:]...)
}
