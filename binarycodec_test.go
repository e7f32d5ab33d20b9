// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"errors"
	"testing"
)

func TestDumpBinaryLoadBinaryRoundTrip(t *testing.T) {
	tree := NewTree("UNIT")
	root := tree.Root()
	root.InsertAttribute(tree.Interner.Add("NAME"), StringAttr(tree.Interner.Add("Alchemist")))
	root.InsertAttribute(tree.Interner.Add("LEVEL"), Int(5))
	root.InsertAttribute(tree.Interner.Add("SPEED"), Float(1.5))
	root.InsertAttribute(tree.Interner.Add("MASS"), Double(2.25))
	root.InsertAttribute(tree.Interner.Add("FLAGS"), Uint(0xdeadbeef))
	root.InsertAttribute(tree.Interner.Add("SEED"), Int64(-123456789012345))
	root.InsertAttribute(tree.Interner.Add("ACTIVE"), Bool(true))
	root.InsertAttribute(tree.Interner.Add("HINT"), TranslateAttr(tree.Interner.Add("TEXT_HINT")))

	wardrobe := root.AppendChild(tree.Interner.Add("WARDROBE"))
	wardrobe.InsertAttribute(tree.Interner.Add("CLASS"), StringAttr(tree.Interner.Add("ALCHEMIST")))

	data := DumpBinary(tree)

	reloaded, err := LoadBinary(data, nil)
	if err != nil {
		t.Fatalf("LoadBinary(DumpBinary(tree)) failed: %v", err)
	}

	rRoot := reloaded.Root()
	if rRoot.NameString() != "UNIT" {
		t.Fatalf("round-tripped root name = %q, want UNIT", rRoot.NameString())
	}

	nameAttr, ok := rRoot.GetAttribute(reloaded.Interner.Add("NAME"))
	if !ok || reloaded.Interner.Get(nameAttr.StringID) != "Alchemist" {
		t.Error("NAME did not round-trip")
	}
	if v, ok := rRoot.GetAttribute(reloaded.Interner.Add("LEVEL")); !ok || v.I32 != 5 {
		t.Errorf("LEVEL did not round-trip: %+v", v)
	}
	if v, ok := rRoot.GetAttribute(reloaded.Interner.Add("SPEED")); !ok || v.F32 != 1.5 {
		t.Errorf("SPEED did not round-trip: %+v", v)
	}
	if v, ok := rRoot.GetAttribute(reloaded.Interner.Add("MASS")); !ok || v.F64 != 2.25 {
		t.Errorf("MASS did not round-trip: %+v", v)
	}
	if v, ok := rRoot.GetAttribute(reloaded.Interner.Add("FLAGS")); !ok || v.U32 != 0xdeadbeef {
		t.Errorf("FLAGS did not round-trip: %+v", v)
	}
	if v, ok := rRoot.GetAttribute(reloaded.Interner.Add("SEED")); !ok || v.I64 != -123456789012345 {
		t.Errorf("SEED did not round-trip: %+v", v)
	}
	if v, ok := rRoot.GetAttribute(reloaded.Interner.Add("ACTIVE")); !ok || !v.BoolValue() {
		t.Errorf("ACTIVE did not round-trip: %+v", v)
	}
	if v, ok := rRoot.GetAttribute(reloaded.Interner.Add("HINT")); !ok || reloaded.Interner.Get(v.StringID) != "TEXT_HINT" {
		t.Errorf("HINT did not round-trip: %+v", v)
	}

	if n := rRoot.NumSubnodes(); n != 1 {
		t.Fatalf("got %d subnodes, want 1", n)
	}
	rWardrobe := rRoot.Subnodes()[0]
	if rWardrobe.NameString() != "WARDROBE" {
		t.Errorf("subnode name = %q, want WARDROBE", rWardrobe.NameString())
	}
}

func TestLoadBinaryTruncatedStreamFails(t *testing.T) {
	_, err := LoadBinary([]byte{0x01, 0x00}, nil)
	if err != ErrTruncatedBinary {
		t.Errorf("LoadBinary on a truncated stream = %v, want ErrTruncatedBinary", err)
	}
}

func TestLoadBinaryUnknownVersionWarnsNotFails(t *testing.T) {
	tree := NewTree("UNIT")
	data := DumpBinary(tree)

	// Corrupt the version field (the first 4 bytes, little-endian).
	data[0] = 99

	_, err := LoadBinary(data, nil)
	if err != nil {
		t.Errorf("LoadBinary with an unexpected version returned an error, want a warning only: %v", err)
	}
}

func TestLoadBinaryUnknownAttributeTagFails(t *testing.T) {
	// Hand-build a minimal stream: version, a one-entry string table naming
	// id 0x1000 "A", a root node named 0x1000 with one attribute of that
	// same name carrying an unrecognized tag value, and zero children.
	var data []byte
	data = appendU32(data, binaryFormatVersion)
	data = appendU32(data, 1)      // string table: 1 entry
	data = appendU32(data, 0x1000) // id
	data = appendU32(data, 1)      // 1 UTF-16 code unit
	data = append(data, 'A', 0x00) // "A"
	data = appendU32(data, 0x1000) // root name id
	data = appendU32(data, 1)      // attribute count
	data = appendU32(data, 0x1000) // attribute name id
	data = appendU32(data, 0xff)   // unrecognized tag
	data = appendU32(data, 0)      // value placeholder (never read)
	data = appendU32(data, 0)      // child count

	_, err := LoadBinary(data, nil)
	if err == nil {
		t.Fatal("expected an error for an unrecognized binary attribute tag")
	}
	if !errors.Is(err, ErrUnknownBinaryAttributeType) {
		t.Errorf("error = %v, want it to wrap ErrUnknownBinaryAttributeType", err)
	}
}
