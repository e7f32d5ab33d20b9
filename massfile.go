// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

// massfileWhitelist names the MEDIA subdirectories whose .dat/.animation
// files get rolled into the MASSFILE aggregate manifest. Every DAT-family
// file is still compiled to its own .adm file as well, whether or not its
// directory is on this list.
var massfileWhitelist = []string{
	"MEDIA/AFFIXES",
	"MEDIA/CINEMATICS",
	"MEDIA/DUNGEONS",
	"MEDIA/FORMATIONS",
	"MEDIA/GRAPHS",
	"MEDIA/LAYOUTS",
	"MEDIA/LEVELSETS",
	"MEDIA/PARTICLES",
	"MEDIA/PERKS",
	"MEDIA/QUESTS",
	"MEDIA/RECIPES",
	"MEDIA/SETS",
	"MEDIA/SKILLS",
	"MEDIA/SOUNDS",
	"MEDIA/SPAWNCLASSES",
	"MEDIA/TRANSLATIONS",
	"MEDIA/UNITTHEMES",
	"MEDIA/MODELS",
	"MEDIA/UI",
}

// MassFileIsDirWhitelisted reports whether a mod directory (given in
// upper-folded, '/'-separated form, e.g. "MEDIA/SKILLS/FOO") belongs under
// one of the whitelisted MASSFILE directories.
func MassFileIsDirWhitelisted(modDirUpper string) bool {
	for _, entry := range massfileWhitelist {
		if pathIsParentOf(entry, modDirUpper) {
			return true
		}
	}
	return false
}

// MassFile is the MAINDATA aggregate tree: one subnode per whitelisted
// source file (the winning candidate of each logical file), each merged
// into its own fresh subnode with DontReplace, so duplicate attributes
// within a file are kept as they are.
type MassFile struct {
	Tree *Tree
}

// NewMassFile creates an empty MASSFILE tree, rooted at MAINDATA.
func NewMassFile() *MassFile {
	return &MassFile{Tree: NewTree("MAINDATA")}
}

// AddFile appends one source file's contents as a named subnode of the
// aggregate root.
func (mf *MassFile) AddFile(srcTree *Tree, srcRoot Node, fileName string) {
	child := mf.Tree.Root().AppendChild(mf.Tree.Interner.Add(fileName))
	MergeNode(srcTree, srcRoot, mf.Tree, child, DontReplace)
}
