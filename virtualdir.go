// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"os"
	"path/filepath"
	"strings"
)

// VirtualFile is one logical file position in a VirtualDir: a name
// as it will appear in the compiled output, and the on-disk candidates
// that can satisfy it, front-to-back in priority order (the front entry
// always wins).
type VirtualFile struct {
	Name  string
	Paths []string
}

// VirtualDir is a case-insensitive, in-memory overlay of one or more
// on-disk directory trees: the original game data plus every installed
// mod, merged on top of each other in priority order. Lookups are
// case-insensitive (folded through upperFoldASCII) but the original
// casing is preserved for output.
type VirtualDir struct {
	Name  string
	Files map[string]*VirtualFile
	Dirs  map[string]*VirtualDir
}

func newVirtualDir(name string) *VirtualDir {
	return &VirtualDir{
		Name:  name,
		Files: make(map[string]*VirtualFile),
		Dirs:  make(map[string]*VirtualDir),
	}
}

// NewVirtualDir creates an empty VirtualDir, ready for LoadFromDir or
// Merge. Callers building the aggregate overlay (original game data plus
// every mod, in priority order) start with one of these.
func NewVirtualDir(name string) *VirtualDir {
	return newVirtualDir(name)
}

// LookupDir resolves a '/'-separated path to a subdirectory.
func (d *VirtualDir) LookupDir(name string) (*VirtualDir, bool) {
	cur := d
	for _, seg := range strings.Split(name, "/") {
		if seg == "" {
			continue
		}
		next, ok := cur.Dirs[upperFoldASCII(seg)]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// LookupFile resolves a '/'-separated path to a file entry.
func (d *VirtualDir) LookupFile(name string) (*VirtualFile, bool) {
	dir, file := pathParent(name), pathBaseName(name)
	if dir == "" {
		f, ok := d.Files[upperFoldASCII(file)]
		return f, ok
	}
	sub, ok := d.LookupDir(dir)
	if !ok {
		return nil, false
	}
	f, ok := sub.Files[upperFoldASCII(file)]
	return f, ok
}

// massfileExcludedNames are the root manifest files every mod's own copy
// must be hidden behind: the compiler writes the merged MASSFILE and
// MASTERRESOURCEUNITS itself at the end of a build.
var massfileExcludedNames = map[string]bool{
	"MASSFILE.DAT":                true,
	"MASTERRESOURCEUNITS.DAT":     true,
	"MASSFILE.DAT.ADM":            true,
	"MASTERRESOURCEUNITS.DAT.ADM": true,
}

// loadDirState is one frame of the explicit-stack walk LoadFromDir uses to
// overlay an on-disk directory tree without recursing per nesting level.
type loadDirState struct {
	virtual    *VirtualDir
	osPath     string
	modPath    string // logical path so far, original case
	modPathKey string // same, upper-folded, used for MEDIA/whitelist checks
	depth      int
}

// LoadFromDir walks an on-disk directory tree (a mod's root, or the
// original game data directory) and overlays it onto d. Root-level files
// are ignored; of root-level directories, only one named "media"
// (case-insensitively) is admitted, and it is always renamed to lowercase
// "media" so the compiled output is where Torchlight expects it. Inside
// media, MASSFILE.DAT(.ADM) and MASTERRESOURCEUNITS.DAT(.ADM) are excluded,
// since the compiler always regenerates those itself.
//
// A ".X.ADM" file and its plain ".X" twin (X one of DAT, ANIMATION,
// LAYOUT) share one logical entry: encountering both in the very same
// on-disk directory resolves to whichever of the two os.ReadDir visits
// last winning the front of the candidate list - since ReadDir visits
// entries in name order and ".X.ADM" sorts after plain ".X", the
// compiled binary form wins over its text source when both sit next to
// each other. Encountering a logical name already claimed by an earlier
// directory in this same walk instead prepends the new path, giving the
// later directory priority regardless of form.
func (d *VirtualDir) LoadFromDir(root string, warnings *WarningList) error {
	stack := []*loadDirState{{virtual: d, osPath: root}}

	for len(stack) > 0 {
		state := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(state.osPath)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			name := entry.Name()
			osChildPath := filepath.Join(state.osPath, name)

			if entry.IsDir() {
				if state.depth == 0 && upperFoldASCII(name) != "MEDIA" {
					continue
				}

				childVirtualName := name
				if state.depth == 0 {
					childVirtualName = "media"
				}

				key := upperFoldASCII(childVirtualName)
				if existing, ok := state.virtual.Files[upperFoldASCII(name)]; ok {
					warnings.Add("directory %q conflicts with file %q, replacing", childVirtualPath(state, name), existing.Paths[0])
					delete(state.virtual.Files, upperFoldASCII(name))
				}

				child, ok := state.virtual.Dirs[key]
				if !ok {
					child = newVirtualDir(childVirtualName)
					state.virtual.Dirs[key] = child
				}

				stack = append(stack, &loadDirState{
					virtual:    child,
					osPath:     osChildPath,
					modPath:    pathBuild(state.modPath, childVirtualName),
					modPathKey: pathBuild(state.modPathKey, key),
					depth:      state.depth + 1,
				})
				continue
			}

			if !entry.Type().IsRegular() {
				continue
			}
			if state.depth == 0 {
				// Root-level files are never part of the compiled output.
				continue
			}

			nameUpper := upperFoldASCII(name)
			if state.depth == 1 && massfileExcludedNames[nameUpper] {
				continue
			}

			logicalName := name
			ext := upperFoldASCII(pathExtension(nameUpper))
			isAdm := ext == "ADM"
			if isAdm {
				logicalName = pathStripExt(logicalName)
				ext = upperFoldASCII(pathExtension(logicalName))
			}
			isDatFamily := ext == "DAT" || ext == "ANIMATION" || ext == "LAYOUT"

			key := upperFoldASCII(logicalName)
			if conflict, ok := state.virtual.Dirs[key]; ok {
				warnings.Add("file %q conflicts with directory %q, replacing", childVirtualPath(state, name), conflict.Name)
				delete(state.virtual.Dirs, key)
			}

			vf, existed := state.virtual.Files[key]
			if !existed {
				vf = &VirtualFile{Name: logicalName}
				state.virtual.Files[key] = vf
			}

			if (isAdm || isDatFamily) && len(vf.Paths) > 0 {
				if pathParent(vf.Paths[0]) == state.osPath {
					if isDatFamily {
						vf.Paths[0] = osChildPath
					}
				} else {
					vf.Paths = append([]string{osChildPath}, vf.Paths...)
				}
			} else {
				vf.Paths = append([]string{osChildPath}, vf.Paths...)
			}
		}
	}

	return nil
}

func childVirtualPath(state *loadDirState, name string) string {
	return pathBuild(state.modPath, name)
}

// Merge splices src into d, giving everything in src priority over what
// is already in d: every file src contributes is prepended to the front
// of the matching logical entry's candidate list (creating the entry if
// it doesn't exist), and a name/directory conflict is resolved by the
// incoming side winning outright. The walk is iterative (an explicit
// stack of directory pairs), matching the style the rest of this package
// uses for tree and node traversal.
//
// Calling Merge is how the compiler layers mods on top of the original
// game data: the aggregate VirtualDir starts as the original data loaded
// directly, and each mod - in ascending priority order - is loaded into
// its own fresh VirtualDir and merged into the aggregate in turn, so the
// last mod merged wins any conflict.
func (d *VirtualDir) Merge(src *VirtualDir) {
	type pair struct {
		dst, src *VirtualDir
	}
	stack := []pair{{dst: d, src: src}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for key, srcFile := range p.src.Files {
			delete(p.dst.Dirs, key)

			dstFile, ok := p.dst.Files[key]
			if !ok {
				dstFile = &VirtualFile{Name: srcFile.Name}
				p.dst.Files[key] = dstFile
			}
			dstFile.Paths = append(append([]string{}, srcFile.Paths...), dstFile.Paths...)
		}

		for key, srcDir := range p.src.Dirs {
			delete(p.dst.Files, key)

			dstDir, ok := p.dst.Dirs[key]
			if !ok {
				dstDir = newVirtualDir(srcDir.Name)
				p.dst.Dirs[key] = dstDir
			}
			stack = append(stack, pair{dst: dstDir, src: srcDir})
		}
	}
}
