// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import "testing"

func TestMergeNodeDontReplaceAccumulates(t *testing.T) {
	src := NewTree("ROOT")
	srcRoot := src.Root()
	srcRoot.SetAttribute(src.Interner.Add("NAME"), StringAttr(src.Interner.Add("Base")))
	srcChild := srcRoot.AppendChild(src.Interner.Add("WARDROBE"))
	srcChild.SetAttribute(src.Interner.Add("CLASS"), StringAttr(src.Interner.Add("ALCHEMIST")))

	dst := NewTree("ROOT")
	dstRoot := dst.Root()
	dstRoot.SetAttribute(dst.Interner.Add("NAME"), StringAttr(dst.Interner.Add("Derived")))

	MergeNode(src, srcRoot, dst, dstRoot, DontReplace)

	nameID := dst.Interner.Add("NAME")
	attrs := dstRoot.GetAttributes(nameID)
	if len(attrs) != 2 {
		t.Fatalf("got %d NAME attributes after DontReplace merge, want 2 (accumulated)", len(attrs))
	}
	if dst.Interner.Get(attrs[0].StringID) != "Derived" {
		t.Errorf("first NAME = %q, want Derived (the destination's own, inserted before merge)", dst.Interner.Get(attrs[0].StringID))
	}
	if dst.Interner.Get(attrs[1].StringID) != "Base" {
		t.Errorf("second NAME = %q, want Base (merged in)", dst.Interner.Get(attrs[1].StringID))
	}

	if n := dstRoot.NumSubnodes(); n != 1 {
		t.Fatalf("got %d subnodes, want 1 (WARDROBE copied over)", n)
	}
	wardrobe := dstRoot.Subnodes()[0]
	if got := wardrobe.NameString(); got != "WARDROBE" {
		t.Errorf("subnode name = %q, want WARDROBE", got)
	}
	classVal, ok := wardrobe.GetAttribute(dst.Interner.Add("CLASS"))
	if !ok || dst.Interner.Get(classVal.StringID) != "ALCHEMIST" {
		t.Errorf("WARDROBE.CLASS not translated correctly into destination tree")
	}
}

func TestMergeNodeReplaceAllOverwritesRootAttribute(t *testing.T) {
	src := NewTree("ROOT")
	srcRoot := src.Root()
	srcRoot.SetAttribute(src.Interner.Add("VALUE"), Int(2))

	dst := NewTree("ROOT")
	dstRoot := dst.Root()
	dstRoot.SetAttribute(dst.Interner.Add("VALUE"), Int(1))

	MergeNode(src, srcRoot, dst, dstRoot, ReplaceAll)

	attrs := dstRoot.GetAttributes(dst.Interner.Add("VALUE"))
	if len(attrs) != 1 {
		t.Fatalf("got %d VALUE attributes after ReplaceAll, want 1 (overwritten in place)", len(attrs))
	}
	if attrs[0].I32 != 2 {
		t.Errorf("VALUE after ReplaceAll = %d, want 2 (the merged-in value)", attrs[0].I32)
	}
}

func TestMergeNodeReplaceAtRootOnlyAffectsRoot(t *testing.T) {
	src := NewTree("ROOT")
	srcRoot := src.Root()
	srcRoot.SetAttribute(src.Interner.Add("NAME"), StringAttr(src.Interner.Add("Base")))
	srcChild := srcRoot.AppendChild(src.Interner.Add("WARDROBE"))
	srcChild.InsertAttribute(src.Interner.Add("SLOT"), Int(1))

	dst := NewTree("ROOT")
	dstRoot := dst.Root()
	dstRoot.SetAttribute(dst.Interner.Add("NAME"), StringAttr(dst.Interner.Add("Derived")))
	dstChild := dstRoot.AppendChild(dst.Interner.Add("WARDROBE"))
	dstChild.InsertAttribute(dst.Interner.Add("SLOT"), Int(2))

	MergeNode(src, srcRoot, dst, dstRoot, ReplaceAtRoot)

	// At the root, the merged-in NAME attribute must replace the
	// destination's own: since MergeNode visits attributes before appending
	// new children, and ReplaceAtRoot calls SetAttribute only at depth 1,
	// the root ends up with exactly one NAME - the merged-in value
	// overwriting the original.
	nameAttrs := dstRoot.GetAttributes(dst.Interner.Add("NAME"))
	if len(nameAttrs) != 1 {
		t.Fatalf("got %d NAME attributes at root under ReplaceAtRoot, want 1", len(nameAttrs))
	}

	// Nested nodes (here, the pre-existing WARDROBE child plus the new one
	// merged in) are untouched by the "replace" behavior: both survive as
	// siblings, and neither's own SLOT attribute is touched by the other.
	if n := dstRoot.NumSubnodes(); n != 2 {
		t.Fatalf("got %d subnodes, want 2 (original WARDROBE plus merged-in one)", n)
	}
}
