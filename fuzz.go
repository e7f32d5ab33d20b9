// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

// Fuzz exercises the binary ADM loader, the codec most exposed to
// untrusted input: mod archives routinely carry hand-edited .adm files.
func Fuzz(data []byte) int {
	tree, err := LoadBinary(data, nil)
	if err != nil {
		return 0
	}
	_ = DumpBinary(tree)
	return 1
}
