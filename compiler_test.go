// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCompilerCompileEndToEnd(t *testing.T) {
	gameDataRoot := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(gameDataRoot, "media", "skills", "fireball.dat"),
		"[SKILL]\n<STRING>NAME:Fireball\n[/SKILL]\n")
	writeFile(t, filepath.Join(gameDataRoot, "media", "units", "items", "sword", "sword.dat"),
		"[UNIT]\n<STRING>NAME:Sword\n[/UNIT]\n")
	writeFile(t, filepath.Join(gameDataRoot, "media", "icons", "sword.png"), "not-really-a-png")

	files := NewVirtualDir("")
	if err := files.LoadFromDir(gameDataRoot, &WarningList{}); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	compiler := NewCompiler(files, outputDir, &Options{})
	if err := compiler.Compile(); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	assertFileExists(t, filepath.Join(outputDir, "media", "skills", "fireball.dat.adm"))
	assertFileExists(t, filepath.Join(outputDir, "media", "units", "items", "sword", "sword.dat.adm"))

	iconBytes, err := os.ReadFile(filepath.Join(outputDir, "media", "icons", "sword.png"))
	if err != nil {
		t.Fatalf("expected sword.png to be byte-copied: %v", err)
	}
	if string(iconBytes) != "not-really-a-png" {
		t.Errorf("copied file contents = %q, want the original bytes unchanged", iconBytes)
	}

	massfileData, err := os.ReadFile(filepath.Join(outputDir, "media", "MASSFILE.DAT.ADM"))
	if err != nil {
		t.Fatalf("expected media/MASSFILE.DAT.ADM to be written: %v", err)
	}
	massfileTree, err := LoadBinary(massfileData, nil)
	if err != nil {
		t.Fatalf("could not parse MASSFILE.DAT.ADM: %v", err)
	}
	if massfileTree.Root().NumSubnodes() != 1 {
		t.Fatalf("MASSFILE has %d subnodes, want 1 (the whitelisted skill file)", massfileTree.Root().NumSubnodes())
	}
	if got := massfileTree.Root().Subnodes()[0].NameString(); got != "MEDIA/SKILLS/FIREBALL.DAT" {
		t.Errorf("MASSFILE subnode name = %q, want MEDIA/SKILLS/FIREBALL.DAT", got)
	}

	unitsData, err := os.ReadFile(filepath.Join(outputDir, "media", "MASTERRESOURCEUNITS.DAT.ADM"))
	if err != nil {
		t.Fatalf("expected media/MASTERRESOURCEUNITS.DAT.ADM to be written: %v", err)
	}
	unitsTree, err := LoadBinary(unitsData, nil)
	if err != nil {
		t.Fatalf("could not parse MASTERRESOURCEUNITS.DAT.ADM: %v", err)
	}
	if unitsTree.Root().NumSubnodes() != 1 {
		t.Fatalf("MASTERRESOURCEUNITS has %d subnodes, want 1 (the sword item unit)", unitsTree.Root().NumSubnodes())
	}
	unitNode := unitsTree.Root().Subnodes()[0]
	fileItemAttr, ok := unitNode.GetAttribute(unitsTree.Interner.Add("FILEITEM"))
	if !ok || unitsTree.Interner.Get(fileItemAttr.StringID) != "SWORD.DAT" {
		t.Errorf("unit FILEITEM = %+v, want SWORD.DAT", fileItemAttr)
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func TestCompilerAddToMasterResourceUnitsSkipsDontCreate(t *testing.T) {
	gameDataRoot := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(gameDataRoot, "media", "units", "items", "hidden", "hidden.dat"),
		"[UNIT]\n<BOOL>DONTCREATE:true\n[/UNIT]\n")

	files := NewVirtualDir("")
	if err := files.LoadFromDir(gameDataRoot, &WarningList{}); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	compiler := NewCompiler(files, outputDir, &Options{})
	if err := compiler.Compile(); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if n := compiler.masterResourceUnits.Tree.Root().NumSubnodes(); n != 0 {
		t.Errorf("got %d units recorded, want 0 (DONTCREATE must suppress it)", n)
	}
}

func TestCompilerBaseFileChainResolution(t *testing.T) {
	gameDataRoot := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(gameDataRoot, "media", "units", "items", "base", "base.dat"),
		"[UNIT]\n<STRING>NAME:Base\n<INTEGER>POWER:1\n[/UNIT]\n")
	writeFile(t, filepath.Join(gameDataRoot, "media", "units", "items", "derived", "derived.dat"),
		"[UNIT]\n<STRING>BASEFILE:media/units/items/base/base.dat\n<STRING>NAME:Derived\n[/UNIT]\n")

	files := NewVirtualDir("")
	if err := files.LoadFromDir(gameDataRoot, &WarningList{}); err != nil {
		t.Fatalf("LoadFromDir failed: %v", err)
	}

	compiler := NewCompiler(files, outputDir, &Options{})
	if err := compiler.Compile(); err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	if n := compiler.masterResourceUnits.Tree.Root().NumSubnodes(); n != 2 {
		t.Fatalf("got %d units recorded, want 2", n)
	}

	var derivedNode Node
	found := false
	nameID := compiler.masterResourceUnits.Tree.Interner.Add("NAME")
	for _, node := range compiler.masterResourceUnits.Tree.Root().Subnodes() {
		if attr, ok := node.GetAttribute(nameID); ok {
			if compiler.masterResourceUnits.Tree.Interner.Get(attr.StringID) == "Derived" {
				derivedNode = node
				found = true
			}
		}
	}
	if !found {
		t.Fatal("could not find the derived unit in MASTERRESOURCEUNITS")
	}

	powerAttr, ok := derivedNode.GetAttribute(compiler.masterResourceUnits.Tree.Interner.Add("POWER"))
	if !ok || powerAttr.I32 != 1 {
		t.Errorf("derived unit's POWER = %+v, want 1 (inherited from its BASEFILE)", powerAttr)
	}
}
