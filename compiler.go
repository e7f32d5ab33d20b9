// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"io"
	"os"
	"sort"

	"github.com/go-kratos/kratos/v2/log"
)

// LoadADMOrDatFile memory-maps a single mod asset file and dispatches on
// its extension: a path ending in .adm (case-insensitive) is parsed as
// binary, anything else as DAT text. The compiler loads every DAT-family
// file it compiles this way, so mapping rather than reading avoids a full
// copy for files most mods never revisit.
func LoadADMOrDatFile(path string, opts *Options) (*Tree, error) {
	mf, err := OpenMappedFile(path)
	if err != nil {
		return nil, err
	}
	defer mf.Close()

	if upperFoldASCII(pathExtension(path)) == "ADM" {
		return LoadBinary(mf.Bytes(), opts)
	}
	tree, _, err := LoadText(mf.Bytes(), opts)
	return tree, err
}

// extInfo classifies one logical output file the way processFile/processDat
// in the original compiler did, before deciding how to handle it.
type extInfo struct {
	isDat       bool
	isAnimation bool
	isLayout    bool
	isAdm       bool
	isDatFile   bool
}

// Compiler walks a merged VirtualDir (the original game data with every
// enabled mod overlaid on top, highest priority last) and emits a compiled
// asset tree: DAT/ANIMATION/LAYOUT files are parsed and re-dumped as
// binary .adm, everything else is byte-copied as-is. Along the way it
// rolls eligible files into MASSFILE and MASTERRESOURCEUNITS, and - if
// MergeClasses is set - regenerates the character-creation screen layout.
type Compiler struct {
	Files   *VirtualDir
	Options *Options

	MergeClasses bool
	OutputDir    string

	massfile            *MassFile
	masterResourceUnits *MasterResourceUnits
	classes             map[string]string // class NAME -> DISPLAYNAME
	pets                map[string]string // pet NAME -> DISPLAYNAME
	currentDir          string            // filesystem output path so far
	currentModDir       string            // in-mod path so far, original case
	currentModDirUpper  string            // same, upper-folded
}

// NewCompiler creates a Compiler over an already-merged VirtualDir.
func NewCompiler(files *VirtualDir, outputDir string, opts *Options) *Compiler {
	return &Compiler{
		Files:     files,
		Options:   opts,
		OutputDir: outputDir,

		massfile:            NewMassFile(),
		masterResourceUnits: NewMasterResourceUnits(),
		classes:             make(map[string]string),
		pets:                make(map[string]string),
	}
}

func (c *Compiler) helper() *log.Helper {
	return helperOrDefault(c.Options.logger())
}

// loadClasses scans MEDIA/UNITS/PLAYERS for a "<dirname>/<dirname>.dat"
// UNIT file in each subdirectory and records its display name, building
// the registry createCharacterCreateLayout later iterates.
func (c *Compiler) loadClasses() {
	playersDir, ok := c.Files.LookupDir("MEDIA/UNITS/PLAYERS")
	if !ok {
		return
	}

	for _, player := range playersDir.Dirs {
		file, ok := player.Files[upperFoldASCII(player.Name+".dat")]
		if !ok || len(file.Paths) == 0 {
			continue
		}

		tree, err := LoadADMOrDatFile(file.Paths[0], c.Options)
		if err != nil {
			continue
		}

		info, ok := ClassRegistryFromUnitTree(tree)
		if !ok {
			continue
		}
		c.classes[info.Name] = info.DisplayName
	}
}

// tryAddPet inspects a fully BASEFILE-resolved monster unit and, if it is
// a pet (UNITTYPE == PET), records its display name.
func (c *Compiler) tryAddPet(tree *Tree) {
	info, ok := PetInfoFromUnitTree(tree)
	if !ok {
		return
	}
	c.pets[info.Name] = info.DisplayName
}

// addToMasterResourceUnits resolves a unit's BASEFILE chain (the game's
// inheritance mechanism: a unit DAT can declare a BASEFILE it extends),
// merges the chain youngest-base-first so the derived unit's own
// attributes win, then folds the result into MASTERRESOURCEUNITS.
func (c *Compiler) addToMasterResourceUnits(fileItem string, tree *Tree) error {
	dontCreateID, ok := tree.Interner.Find("DONTCREATE")
	if ok {
		if attr, ok := tree.Root().GetAttribute(dontCreateID); ok && attr.Tag == TagBool && attr.BoolValue() {
			return nil
		}
	}

	var chain []*Tree
	cur := tree
	for {
		baseFileID, ok := cur.Interner.Find("BASEFILE")
		if !ok {
			break
		}
		attr, ok := cur.Root().GetAttribute(baseFileID)
		if !ok || attr.Tag != TagString {
			break
		}

		baseFn := upperFoldASCII(winSlashesToPosix(cur.Interner.Get(attr.StringID)))

		vf, ok := c.Files.LookupFile(baseFn)
		if !ok || len(vf.Paths) == 0 {
			return ErrBaseFileNotFound
		}

		base, err := LoadADMOrDatFile(vf.Paths[0], c.Options)
		if err != nil {
			return err
		}

		chain = append(chain, cur)
		cur = base
	}

	// cur is now the oldest ancestor; merge each descendant back onto it
	// in youngest-base-first order so the most-derived unit's own
	// attributes take precedence at the root.
	for i := len(chain) - 1; i >= 0; i-- {
		MergeNode(chain[i], chain[i].Root(), cur, cur.Root(), ReplaceAtRoot)
	}
	tree = cur

	switch {
	case pathIsParentOf("MEDIA/UNITS/ITEMS", c.currentModDirUpper):
		olderPaths := c.olderCandidatePaths(fileItem)
		MergeClassWardrobes(tree, olderPaths, c.Options)
	case pathIsParentOf("MEDIA/UNITS/MONSTERS", c.currentModDirUpper):
		c.tryAddPet(tree)
	}

	c.masterResourceUnits.AddUnit(upperFoldASCII(fileItem), c.currentModDirUpper, tree, tree.Root())
	return nil
}

// olderCandidatePaths returns the shadowed (lower-priority) on-disk
// candidates for fileItem in the directory currently being compiled,
// excluding the winning candidate at the front of the list.
func (c *Compiler) olderCandidatePaths(fileItem string) []string {
	vf, ok := c.Files.LookupFile(pathBuild(c.currentModDir, fileItem))
	if !ok || len(vf.Paths) < 2 {
		return nil
	}
	return vf.Paths[1:]
}

// processDat loads one DAT-family file, contributes it to MASSFILE or
// MASTERRESOURCEUNITS when eligible, and always writes its compiled
// binary form. LAYOUT files also get a copy of their original text form
// placed alongside, unless the source was already binary .adm.
func (c *Compiler) processDat(fileName string, candidatePaths []string, info extInfo) error {
	c.helper().Infof("compiling %s", pathBuild(c.currentModDir, fileName))

	tree, err := LoadADMOrDatFile(candidatePaths[0], c.Options)
	if err != nil {
		return err
	}

	if info.isLayout && !info.isAdm {
		if err := c.copyFile(candidatePaths[0], pathBuild(c.currentDir, fileName)); err != nil {
			return err
		}
	}

	switch {
	case (info.isDat || info.isAnimation) && MassFileIsDirWhitelisted(c.currentModDirUpper):
		c.helper().Infof("adding %s to massfile", pathBuild(c.currentModDir, fileName))
		c.massfile.AddFile(tree, tree.Root(), pathBuild(c.currentModDirUpper, upperFoldASCII(fileName)))
	case info.isDat && pathIsParentOf("MEDIA/UNITS", c.currentModDirUpper):
		c.helper().Infof("adding %s to masterresourceunits", pathBuild(c.currentModDir, fileName))
		if err := c.addToMasterResourceUnits(fileName, tree); err != nil {
			return err
		}
	}

	return os.WriteFile(pathBuild(c.currentDir, fileName)+".adm", DumpBinary(tree), 0640)
}

// processFile dispatches one virtual file to either processDat or a raw
// byte copy, based on its extension.
func (c *Compiler) processFile(fileName string, vf *VirtualFile) error {
	ext := upperFoldASCII(pathExtension(fileName))
	admExt := upperFoldASCII(pathExtension(vf.Paths[0]))

	info := extInfo{
		isDat:       ext == "DAT",
		isAnimation: ext == "ANIMATION",
		isLayout:    ext == "LAYOUT",
		isAdm:       admExt == "ADM",
	}
	if info.isLayout && !info.isAdm && pathIsParentOf("MEDIA/UI", c.currentModDirUpper) {
		info.isLayout = false
	}
	info.isDatFile = info.isDat || info.isAnimation || info.isLayout

	if info.isDatFile {
		return c.processDat(fileName, vf.Paths, info)
	}
	return c.copyFile(vf.Paths[0], pathBuild(c.currentDir, fileName))
}

func (c *Compiler) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0640)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

// Compile walks Files depth-first, materializing the compiled tree under
// OutputDir, then writes the two generated aggregate manifests and,
// optionally, the regenerated character-creation layout.
func (c *Compiler) Compile() error {
	c.currentDir = c.OutputDir
	c.currentModDir = ""
	c.currentModDirUpper = ""

	c.loadClasses()

	if err := os.MkdirAll(c.currentDir, 0750); err != nil {
		return ErrOutputDirFailed
	}

	type walkState struct {
		dir        *VirtualDir
		dirNames   []string
		nextDirIdx int
		didFiles   bool
	}

	root := &walkState{dir: c.Files, dirNames: sortedDirNames(c.Files)}
	stack := []*walkState{root}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if !top.didFiles {
			for _, name := range sortedFileNames(top.dir) {
				if err := c.processFile(name, top.dir.Files[upperFoldASCII(name)]); err != nil {
					return err
				}
			}
			top.didFiles = true
		}

		if top.nextDirIdx < len(top.dirNames) {
			name := top.dirNames[top.nextDirIdx]
			top.nextDirIdx++

			child := top.dir.Dirs[upperFoldASCII(name)]
			c.currentDir = pathBuild(c.currentDir, child.Name)
			c.currentModDir = pathBuild(c.currentModDir, child.Name)
			c.currentModDirUpper = pathBuild(c.currentModDirUpper, upperFoldASCII(child.Name))

			if err := os.MkdirAll(c.currentDir, 0750); err != nil {
				return ErrOutputDirFailed
			}

			stack = append(stack, &walkState{dir: child, dirNames: sortedDirNames(child)})
		} else {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				c.currentDir = pathParent(c.currentDir)
				c.currentModDir = pathParent(c.currentModDir)
				c.currentModDirUpper = pathParent(c.currentModDirUpper)
			}
		}
	}

	c.helper().Infof("generating media/MASSFILE.DAT.ADM")
	if err := os.WriteFile(pathBuild(c.OutputDir, "media/MASSFILE.DAT.ADM"), DumpBinary(c.massfile.Tree), 0640); err != nil {
		return err
	}

	c.helper().Infof("generating media/MASTERRESOURCEUNITS.DAT.ADM")
	if err := os.WriteFile(pathBuild(c.OutputDir, "media/MASTERRESOURCEUNITS.DAT.ADM"), DumpBinary(c.masterResourceUnits.Tree), 0640); err != nil {
		return err
	}

	if c.MergeClasses {
		c.helper().Infof("generating media/UI/charactercreate.layout")
		if err := c.createCharacterCreateLayout(); err != nil {
			return err
		}
	}

	return nil
}

func sortedDirNames(d *VirtualDir) []string {
	names := make([]string, 0, len(d.Dirs))
	for _, child := range d.Dirs {
		names = append(names, child.Name)
	}
	sort.Slice(names, func(i, j int) bool { return upperFoldASCII(names[i]) < upperFoldASCII(names[j]) })
	return names
}

func sortedFileNames(d *VirtualDir) []string {
	names := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		names = append(names, f.Name)
	}
	sort.Slice(names, func(i, j int) bool { return upperFoldASCII(names[i]) < upperFoldASCII(names[j]) })
	return names
}
