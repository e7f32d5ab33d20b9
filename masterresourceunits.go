// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

// Resource group ids, stored verbatim as the RESOURCEGROUP attribute value
// of each unit subnode.
const (
	ResourceGroupItems = iota
	ResourceGroupMonsters
	ResourceGroupPlayers
	ResourceGroupProps
)

// MasterResourceUnits is the UNITS aggregate tree: one subnode per unit
// file under MEDIA/UNITS, grouped under ITEMS/MONSTERS/PLAYERS/PROPS by
// which subdirectory it came from.
type MasterResourceUnits struct {
	Tree *Tree

	dataFileID      StringID
	fileItemID      StringID
	resourceGroupID StringID
	dontCreateID    StringID
	groupNameID     [4]StringID
}

// NewMasterResourceUnits creates an empty MASTERRESOURCEUNITS tree, rooted
// at UNITS, and interns the handful of well-known attribute/group names it
// writes on every unit.
func NewMasterResourceUnits() *MasterResourceUnits {
	m := &MasterResourceUnits{Tree: NewTree("UNITS")}

	m.dataFileID = m.Tree.Interner.Add("DATAFILE")
	m.fileItemID = m.Tree.Interner.Add("FILEITEM")
	m.resourceGroupID = m.Tree.Interner.Add("RESOURCEGROUP")
	m.dontCreateID = m.Tree.Interner.Add("DONTCREATE")

	m.groupNameID[ResourceGroupItems] = m.Tree.Interner.Add("ITEMS")
	m.groupNameID[ResourceGroupMonsters] = m.Tree.Interner.Add("MONSTERS")
	m.groupNameID[ResourceGroupPlayers] = m.Tree.Interner.Add("PLAYERS")
	m.groupNameID[ResourceGroupProps] = m.Tree.Interner.Add("PROPS")

	return m
}

// AddUnit appends unit as a subnode grouped by which MEDIA/UNITS/*
// subdirectory modDirUpper (upper-folded, '/'-separated) names. It reports
// false, doing nothing, if modDirUpper doesn't fall under one of the four
// known subdirectories.
func (m *MasterResourceUnits) AddUnit(fileItem string, modDirUpper string, srcTree *Tree, srcRoot Node) bool {
	var group int
	switch {
	case pathIsParentOf("MEDIA/UNITS/ITEMS", modDirUpper):
		group = ResourceGroupItems
	case pathIsParentOf("MEDIA/UNITS/MONSTERS", modDirUpper):
		group = ResourceGroupMonsters
	case pathIsParentOf("MEDIA/UNITS/PLAYERS", modDirUpper):
		group = ResourceGroupPlayers
	case pathIsParentOf("MEDIA/UNITS/PROPS", modDirUpper):
		group = ResourceGroupProps
	default:
		return false
	}

	node := m.Tree.Root().AppendChild(m.groupNameID[group])
	MergeNode(srcTree, srcRoot, m.Tree, node, DontReplace)

	node.SetAttribute(m.dontCreateID, Bool(false))
	node.SetAttribute(m.resourceGroupID, Uint(uint32(group)))
	node.SetAttribute(m.dataFileID, StringAttr(m.Tree.Interner.Add(pathBuild(modDirUpper, fileItem))))
	node.SetAttribute(m.fileItemID, StringAttr(m.Tree.Interner.Add(fileItem)))
	return true
}

// ClassInfo is a playable class discovered while scanning MEDIA/UNITS/PLAYERS.
type ClassInfo struct {
	Name        string // the UNIT tree's NAME attribute, used as its key
	DisplayName string // DISPLAYNAME if present, otherwise Name again
}

// ClassRegistryFromUnitTree inspects a single loaded unit .dat tree and
// reports the ClassInfo it declares, if it looks like a player class: the
// root node must be named UNIT and carry a STRING NAME attribute.
func ClassRegistryFromUnitTree(tree *Tree) (ClassInfo, bool) {
	unitID, ok := tree.Interner.Find("UNIT")
	if !ok || tree.Root().Name() != unitID {
		return ClassInfo{}, false
	}
	nameID, ok := tree.Interner.Find("NAME")
	if !ok {
		return ClassInfo{}, false
	}
	nameAttr, ok := tree.Root().GetAttribute(nameID)
	if !ok || nameAttr.Tag != TagString {
		return ClassInfo{}, false
	}
	name := tree.Interner.Get(nameAttr.StringID)

	info := ClassInfo{Name: name, DisplayName: name}

	if displayNameID, ok := tree.Interner.Find("DISPLAYNAME"); ok {
		if attr, ok := tree.Root().GetAttribute(displayNameID); ok && attr.IsStringLike() {
			info.DisplayName = tree.Interner.Get(attr.StringID)
		}
	}
	return info, true
}

// PetInfo is a pet monster discovered while resolving a MEDIA/UNITS/MONSTERS unit.
type PetInfo struct {
	Name        string
	DisplayName string
}

// PetInfoFromUnitTree inspects a fully BASEFILE-resolved monster unit tree
// and reports the PetInfo it declares, if it looks like a pet: root node
// UNIT, with UNITTYPE a STRING equal to "PET", and a STRING NAME attribute.
func PetInfoFromUnitTree(tree *Tree) (PetInfo, bool) {
	unitID, ok := tree.Interner.Find("UNIT")
	if !ok || tree.Root().Name() != unitID {
		return PetInfo{}, false
	}
	unitTypeID, ok := tree.Interner.Find("UNITTYPE")
	if !ok {
		return PetInfo{}, false
	}
	petID, ok := tree.Interner.Find("PET")
	if !ok {
		return PetInfo{}, false
	}
	nameID, ok := tree.Interner.Find("NAME")
	if !ok {
		return PetInfo{}, false
	}

	typeAttr, ok := tree.Root().GetAttribute(unitTypeID)
	if !ok || typeAttr.Tag != TagString || typeAttr.StringID != petID {
		return PetInfo{}, false
	}

	nameAttr, ok := tree.Root().GetAttribute(nameID)
	if !ok || nameAttr.Tag != TagString {
		return PetInfo{}, false
	}
	name := tree.Interner.Get(nameAttr.StringID)

	info := PetInfo{Name: name, DisplayName: name}
	if displayNameID, ok := tree.Interner.Find("DISPLAYNAME"); ok {
		if attr, ok := tree.Root().GetAttribute(displayNameID); ok && attr.IsStringLike() {
			info.DisplayName = tree.Interner.Get(attr.StringID)
		}
	}
	return info, true
}

// MergeClassWardrobes is the single canonical implementation of the
// class-wardrobe merge: it collects every WARDROBE subnode of unit (keyed
// by its CLASS attribute, deduplicating same-class wardrobes in favor of
// the first one found) and then folds in any WARDROBE node with a CLASS
// attribute found on the older unit trees named by olderUnitPaths, for a
// class not already present. The compiler calls this function; the
// tlmc-classcreate tool does not, and keeps its own copy of the same
// collection logic (collectWardrobes in cmd/tlmc-classcreate).
func MergeClassWardrobes(unit *Tree, olderUnitPaths []string, opts *Options) {
	wardrobeID, wardrobeOK := unit.Interner.Find("WARDROBE")
	classID, classOK := unit.Interner.Find("CLASS")

	seen := make(map[string]bool)

	if wardrobeOK && classOK {
		children := unit.Root().Subnodes()
		kept := children[:0]
		for _, child := range children {
			if child.Name() != wardrobeID {
				kept = append(kept, child)
				continue
			}
			attr, ok := child.GetAttribute(classID)
			if !ok || attr.Tag != TagString {
				kept = append(kept, child)
				continue
			}
			className := upperFoldASCII(unit.Interner.Get(attr.StringID))
			if seen[className] {
				continue // drop: keep only the first wardrobe per class
			}
			seen[className] = true
			kept = append(kept, child)
		}
		dropSubnodesAfter(unit.Root(), kept)
	}

	for _, olderPath := range olderUnitPaths {
		olderTree, err := LoadADMOrDatFile(olderPath, opts)
		if err != nil {
			continue
		}

		olderWardrobeID, ok := olderTree.Interner.Find("WARDROBE")
		if !ok {
			continue
		}
		olderClassID, ok := olderTree.Interner.Find("CLASS")
		if !ok {
			continue
		}

		for _, node := range olderTree.Root().Subnodes() {
			if node.Name() != olderWardrobeID {
				continue
			}
			attr, ok := node.GetAttribute(olderClassID)
			if !ok || attr.Tag != TagString {
				continue
			}
			className := upperFoldASCII(olderTree.Interner.Get(attr.StringID))
			if seen[className] {
				continue
			}
			seen[className] = true

			newWardrobe := unit.Root().AppendChild(unit.Interner.Add("WARDROBE"))
			MergeNode(olderTree, node, unit, newWardrobe, DontReplace)
		}
	}
}

// dropSubnodesAfter replaces node's subnode list with kept, in place. kept
// must be a subset of node's current subnodes, in any order; every current
// subnode not present in kept (by identity, not position) is removed. Node
// exposes no bulk-replace operation - only single-index RemoveSubnode - so
// this walks the current list back-to-front, since removing a position
// only invalidates positions after it.
func dropSubnodesAfter(node Node, kept []Node) {
	keep := make(map[Node]bool, len(kept))
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
