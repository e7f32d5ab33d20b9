// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

// AttributeReplaceMode controls how MergeNode reconciles an attribute that
// already exists on a destination node.
type AttributeReplaceMode int

const (
	// ReplaceAll overwrites every existing attribute of the same name at
	// every depth of the merged subtree.
	ReplaceAll AttributeReplaceMode = iota
	// ReplaceAtRoot overwrites existing attributes only on the node the
	// merge was called against; every merged descendant accumulates
	// attributes instead (as DontReplace would). Used for BASEFILE chain
	// resolution, where a derived unit's own attributes must win over its
	// base's, but nested subnodes are pure accumulation.
	ReplaceAtRoot
	// DontReplace always appends, regardless of depth: a node merged
	// twice ends up with duplicate attributes, by design (see MergeNode).
	DontReplace
)

// mergeFrame tracks progress walking one source node's children during a
// merge.
type mergeFrame struct {
	node     Node
	children []Node
	nextIdx  int
}

// MergeNode copies srcNode (and everything beneath it) from srcTree into
// dstNode of dstTree. Every string id the source subtree references -
// node names, and the payload of STRING/TRANSLATE attributes - is
// translated through srcTree.Interner and re-interned into dstTree.
//
// Every source subnode becomes a newly appended child of the matching
// destination node; there is no by-name matching against existing
// children. Calling MergeNode twice with the same source therefore
// duplicates its subnodes in the destination - this mirrors the engine's
// BASEFILE/wardrobe resolution, which relies on repeated merges
// accumulating content rather than deduplicating it.
//
// The walk uses an explicit stack rather than recursion: a mod's tree can
// nest far deeper than is comfortable to walk with one stack frame per
// node.
func MergeNode(srcTree *Tree, srcNode Node, dstTree *Tree, dstNode Node, mode AttributeReplaceMode) {
	srcStack := []mergeFrame{{node: srcNode, children: srcNode.Subnodes()}}
	dstStack := []Node{dstNode}

	for len(dstStack) > 0 {
		sf := &srcStack[len(srcStack)-1]
		target := dstStack[len(dstStack)-1]

		if sf.nextIdx == 0 {
			replace := mode == ReplaceAll || (mode == ReplaceAtRoot && len(dstStack) == 1)
			mergeNodeAttributes(srcTree, sf.node, dstTree, target, replace)
		}

		if sf.nextIdx < len(sf.children) {
			child := sf.children[sf.nextIdx]
			sf.nextIdx++

			newChild := target.AppendChild(dstTree.translateID(srcTree.Interner, child.Name()))

			srcStack = append(srcStack, mergeFrame{node: child, children: child.Subnodes()})
			dstStack = append(dstStack, newChild)
		} else {
			srcStack = srcStack[:len(srcStack)-1]
			dstStack = dstStack[:len(dstStack)-1]
		}
	}
}

// mergeNodeAttributes copies srcNode's own attributes (not its subnodes')
// into dstNode, translating every name and string-like payload through the
// two trees' interners.
func mergeNodeAttributes(srcTree *Tree, srcNode Node, dstTree *Tree, dstNode Node, replace bool) {
	for _, a := range srcNode.AttributesInInsertOrder() {
		name := dstTree.translateID(srcTree.Interner, a.Name)

		val := a.Value
		if val.IsStringLike() {
			val.StringID = dstTree.translateID(srcTree.Interner, val.StringID)
		}

		if replace {
			dstNode.SetAttribute(name, val)
		} else {
			dstNode.InsertAttribute(name, val)
		}
	}
}
