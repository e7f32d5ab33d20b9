// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import "testing"

func TestTreeRootAndAppendChild(t *testing.T) {
	tree := NewTree("ROOT")
	root := tree.Root()

	if got := root.NameString(); got != "ROOT" {
		t.Fatalf("root name = %q, want ROOT", got)
	}

	child := root.AppendChild(tree.Interner.Add("WARDROBE"))
	if got := child.NameString(); got != "WARDROBE" {
		t.Errorf("child name = %q, want WARDROBE", got)
	}
	if n := root.NumSubnodes(); n != 1 {
		t.Errorf("NumSubnodes = %d, want 1", n)
	}
}

func TestNodeSetAttributeOverwritesInPlace(t *testing.T) {
	tree := NewTree("ROOT")
	root := tree.Root()
	name := tree.Interner.Add("PRIORITY")

	root.SetAttribute(name, Int(1))
	root.SetAttribute(name, Int(2))

	attrs := root.AttributesInInsertOrder()
	if len(attrs) != 1 {
		t.Fatalf("got %d attributes, want 1", len(attrs))
	}
	if attrs[0].Value.I32 != 2 {
		t.Errorf("attribute value = %d, want 2", attrs[0].Value.I32)
	}
}

func TestNodeInsertAttributePreservesMultiplicity(t *testing.T) {
	tree := NewTree("ROOT")
	root := tree.Root()
	name := tree.Interner.Add("TAG")

	root.InsertAttribute(name, Int(1))
	root.InsertAttribute(name, Int(2))

	got := root.GetAttributes(name)
	if len(got) != 2 {
		t.Fatalf("GetAttributes returned %d values, want 2", len(got))
	}
	if got[0].I32 != 1 || got[1].I32 != 2 {
		t.Errorf("GetAttributes = %+v, want [1, 2] in insertion order", got)
	}
}

func TestNodeGetAttributeReturnsFirst(t *testing.T) {
	tree := NewTree("ROOT")
	root := tree.Root()
	name := tree.Interner.Add("TAG")

	root.InsertAttribute(name, Int(1))
	root.InsertAttribute(name, Int(2))

	v, ok := root.GetAttribute(name)
	if !ok {
		t.Fatal("GetAttribute reported no attribute")
	}
	if v.I32 != 1 {
		t.Errorf("GetAttribute = %d, want 1 (the first insertion)", v.I32)
	}
}

func TestNodeRemoveSubnode(t *testing.T) {
	tree := NewTree("ROOT")
	root := tree.Root()

	a := root.AppendChild(tree.Interner.Add("A"))
	_ = a
	root.AppendChild(tree.Interner.Add("B"))
	root.AppendChild(tree.Interner.Add("C"))

	root.RemoveSubnode(1) // drop B

	names := make([]string, 0, root.NumSubnodes())
	for _, c := range root.Subnodes() {
		names = append(names, c.NameString())
	}
	if len(names) != 2 || names[0] != "A" || names[1] != "C" {
		t.Errorf("Subnodes after removal = %v, want [A C]", names)
	}
}

func TestNodeAttributesSortedByName(t *testing.T) {
	tree := NewTree("ROOT")
	root := tree.Root()

	zID := tree.Interner.Add("ZNAME")
	aID := tree.Interner.Add("ANAME")
	root.InsertAttribute(zID, Int(1))
	root.InsertAttribute(aID, Int(2))

	sorted := root.Attributes()
	if len(sorted) != 2 {
		t.Fatalf("got %d attributes, want 2", len(sorted))
	}
	if sorted[0].Name != minStringID(zID, aID) {
		t.Errorf("Attributes() is not sorted by name id ascending: %+v", sorted)
	}
}

func minStringID(a, b StringID) StringID {
	if a < b {
		return a
	}
	return b
}
