// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

// StringID is the 32-bit id a tree's Interner hands out for every distinct
// string it has seen. IDs are stable for the lifetime of the tree.
type StringID uint32

// firstInternedID is the first id the interner allocates. IDs below this
// are never produced by Add, which leaves room for a caller to reserve a
// fixed block of well-known ids ahead of time if it ever needs to (the
// teacher's own string ids for directory-entry structures follow the same
// "small ids are reserved" convention).
const firstInternedID StringID = 0x1000

// Interner is a bidirectional map between StringIDs and strings, owned by
// exactly one Tree. Cross-tree operations (merge, binary load) must
// translate ids explicitly through the source tree's Interner into the
// destination's; sharing an Interner across trees is a bug, not a shortcut.
type Interner struct {
	idToString map[StringID]string
	stringToID map[string]StringID
	nextID     StringID
}

// NewInterner returns an empty interner, ready to hand out ids starting at
// firstInternedID.
func NewInterner() *Interner {
	return &Interner{
		idToString: make(map[StringID]string),
		stringToID: make(map[string]StringID),
		nextID:     firstInternedID,
	}
}

// Add interns s, returning its existing id if present. Add is idempotent:
// calling it twice with the same string returns the same id both times.
func (in *Interner) Add(s string) StringID {
	if id, ok := in.stringToID[s]; ok {
		return id
	}

	id := in.nextID
	for {
		if _, taken := in.idToString[id]; !taken {
			break
		}
		id++
	}
	in.nextID = id + 1

	in.stringToID[s] = id
	in.idToString[id] = s
	return id
}

// Find reports whether s has already been interned, and its id if so.
func (in *Interner) Find(s string) (StringID, bool) {
	id, ok := in.stringToID[s]
	return id, ok
}

// Get returns the string for id, or "" if id is unknown.
func (in *Interner) Get(id StringID) string {
	return in.idToString[id]
}
