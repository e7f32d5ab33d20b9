// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/torchmodder/tlmc"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tlmc-classcreate <new-class-name> <base-class-name>",
		Short: "Scaffolds a new playable class mod from an existing one",
		Long:  "Copies a base class's player unit and every item wardrobe it defines into a fresh mod directory under the new class's name, ready for further editing.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, args[0], args[1])
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "./tlmodder.cfg", "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, className, baseClassName string) error {
	opts := &tlmc.Options{}

	cfg := tlmc.DefaultConfig()
	if data, err := os.ReadFile(configPath); err != nil {
		fmt.Fprintln(os.Stderr, "WARNING: could not open configuration file, using defaults.")
	} else if loaded, err := tlmc.LoadConfig(data, opts); err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: could not load configuration file: %s, using defaults.\n", err)
	} else {
		cfg = loaded
	}

	gameData := tlmc.NewVirtualDir("")
	if err := gameData.LoadFromDir(cfg.OriginalGameData, &tlmc.WarningList{}); err != nil {
		return fmt.Errorf("could not load game data: %w", err)
	}

	classNameUpper := tlmc.UpperFoldASCII(className)
	baseClassNameUpper := tlmc.UpperFoldASCII(baseClassName)

	modDir := filepath.Join(cfg.ModDir, className)

	if err := createClassDatFile(gameData, modDir, className, baseClassName, opts); err != nil {
		return err
	}
	return copyItems(gameData, modDir, classNameUpper, baseClassNameUpper, opts)
}

func createClassDatFile(gameData *tlmc.VirtualDir, modDir, className, baseClassName string, opts *tlmc.Options) error {
	baseFile, ok := gameData.LookupFile("media/units/players/" + baseClassName + "/" + baseClassName + ".dat")
	if !ok || len(baseFile.Paths) == 0 {
		return fmt.Errorf("cannot find base class %s", baseClassName)
	}

	outDir := filepath.Join(modDir, "media", "units", "players", className)
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return err
	}

	tree, err := tlmc.LoadADMOrDatFile(baseFile.Paths[0], opts)
	if err != nil {
		return err
	}

	root := tree.Root()
	root.SetAttribute(tree.Interner.Add("NAME"), tlmc.StringAttr(tree.Interner.Add(className)))
	root.SetAttribute(tree.Interner.Add("DISPLAYNAME"), tlmc.StringAttr(tree.Interner.Add(className)))

	return os.WriteFile(filepath.Join(outDir, className+".dat"), tlmc.DumpText(tree), 0640)
}

// copyItems walks media/units/items in the original game data and, for
// every item DAT file that defines a WARDROBE for baseClassNameUpper,
// writes a copy of that item into modDir with a matching WARDROBE added
// for classNameUpper - so the new class immediately has appropriate gear
// art instead of showing the engine's default placeholder.
func copyItems(gameData *tlmc.VirtualDir, modDir, classNameUpper, baseClassNameUpper string, opts *tlmc.Options) error {
	itemsDir, ok := gameData.LookupDir("media/units/items")
	if !ok {
		return fmt.Errorf("cannot find media/units/items")
	}

	type walkState struct {
		dir      *tlmc.VirtualDir
		relPath  string
		names    []string
		nextIdx  int
		didFiles bool
	}

	stack := []*walkState{{dir: itemsDir, names: dirNames(itemsDir)}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if !top.didFiles {
			outDir := filepath.Join(modDir, "media", "units", "items", top.relPath)
			if err := os.MkdirAll(outDir, 0750); err != nil {
				return err
			}

			for _, name := range fileNames(top.dir) {
				if tlmc.UpperFoldASCII(filepath.Ext(name)) != ".DAT" {
					continue
				}
				vf := top.dir.Files[tlmc.UpperFoldASCII(name)]
				if err := maybeCreateItem(vf, outDir, classNameUpper, baseClassNameUpper, opts); err != nil {
					fmt.Fprintf(os.Stderr, "WARNING: skipping %s: %s\n", name, err)
				}
			}
			top.didFiles = true
		}

		if top.nextIdx < len(top.names) {
			name := top.names[top.nextIdx]
			top.nextIdx++
			child := top.dir.Dirs[tlmc.UpperFoldASCII(name)]
			stack = append(stack, &walkState{dir: child, relPath: filepath.Join(top.relPath, child.Name), names: dirNames(child)})
		} else {
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}

func dirNames(d *tlmc.VirtualDir) []string {
	names := make([]string, 0, len(d.Dirs))
	for _, c := range d.Dirs {
		names = append(names, c.Name)
	}
	return names
}

func fileNames(d *tlmc.VirtualDir) []string {
	names := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		names = append(names, f.Name)
	}
	return names
}

func maybeCreateItem(vf *tlmc.VirtualFile, outDir, classNameUpper, baseClassNameUpper string, opts *tlmc.Options) error {
	if len(vf.Paths) == 0 {
		return fmt.Errorf("no on-disk candidates")
	}

	tree, err := tlmc.LoadADMOrDatFile(vf.Paths[0], opts)
	if err != nil {
		return err
	}

	wardrobes := collectWardrobes(tree, vf.Paths, opts)

	baseWardrobe, ok := wardrobes[baseClassNameUpper]
	if !ok {
		return nil // this item has no wardrobe for the base class, nothing to do
	}

	classWardrobe, ok := wardrobes[classNameUpper]
	var classNode tlmc.Node
	if ok {
		classNode = classWardrobe
		dropAllSubnodes(classNode)
	} else {
		classNode = tree.Root().AppendChild(tree.Interner.Add("WARDROBE"))
	}

	tlmc.MergeNode(tree, baseWardrobe, tree, classNode, tlmc.DontReplace)
	classNode.SetAttribute(tree.Interner.Add("CLASS"), tlmc.StringAttr(tree.Interner.Add(classNameUpper)))

	return os.WriteFile(filepath.Join(outDir, vf.Name), tlmc.DumpText(tree), 0640)
}

// collectWardrobes returns, for one item, every WARDROBE subnode keyed by
// its upper-folded CLASS name: first the ones already on the loaded tree
// (deduplicated, first wins), then any additional ones found on
// lower-priority on-disk candidates for the same logical file that the
// loaded tree doesn't already define a class for.
func collectWardrobes(tree *tlmc.Tree, candidatePaths []string, opts *tlmc.Options) map[string]tlmc.Node {
	wardrobes := make(map[string]tlmc.Node)

	wardrobeID, wardrobeOK := tree.Interner.Find("WARDROBE")
	classID, classOK := tree.Interner.Find("CLASS")

	if wardrobeOK && classOK {
		children := tree.Root().Subnodes()
		kept := children[:0]
		for _, child := range children {
			if child.Name() != wardrobeID {
				kept = append(kept, child)
				continue
			}
			attr, ok := child.GetAttribute(classID)
			if !ok || attr.Tag != tlmc.TagString {
				kept = append(kept, child)
				continue
			}
			name := tlmc.UpperFoldASCII(tree.Interner.Get(attr.StringID))
			if _, dup := wardrobes[name]; dup {
				continue
			}
			wardrobes[name] = child
			kept = append(kept, child)
		}
		dropSubnodesAfter(tree.Root(), kept)
	}

	for _, path := range candidatePaths[1:] {
		prev, err := tlmc.LoadADMOrDatFile(path, opts)
		if err != nil {
			continue
		}
		prevWardrobeID, ok := prev.Interner.Find("WARDROBE")
		if !ok {
			continue
		}
		prevClassID, ok := prev.Interner.Find("CLASS")
		if !ok {
			continue
		}
		for _, node := range prev.Root().Subnodes() {
			if node.Name() != prevWardrobeID {
				continue
			}
			attr, ok := node.GetAttribute(prevClassID)
			if !ok || attr.Tag != tlmc.TagString {
				continue
			}
			name := tlmc.UpperFoldASCII(prev.Interner.Get(attr.StringID))
			if _, dup := wardrobes[name]; dup {
				continue
			}
			newNode := tree.Root().AppendChild(tree.Interner.Add("WARDROBE"))
			tlmc.MergeNode(prev, node, tree, newNode, tlmc.DontReplace)
			wardrobes[name] = newNode
		}
	}

	return wardrobes
}

// dropSubnodesAfter removes every current subnode of node not present in
// kept (matched by identity, not position), walking back-to-front so each
// removal leaves earlier positions valid.
func dropSubnodesAfter(node tlmc.Node, kept []tlmc.Node) {
	keep := make(map[tlmc.Node]bool, len(kept))
	for _, k := range kept {
		keep[k] = true
	}

	current := node.Subnodes()
	for i := len(current) - 1; i >= 0; i-- {
		if !keep[current[i]] {
			node.RemoveSubnode(i)
		}
	}
}

func dropAllSubnodes(node tlmc.Node) {
	for i := node.NumSubnodes() - 1; i >= 0; i-- {
		node.RemoveSubnode(i)
	}
}
