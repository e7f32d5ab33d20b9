// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedFile memory-maps an on-disk asset file read-only. LoadADMOrDatFile
// reads every DAT/ADM file it parses through one of these instead of
// copying the file into memory; files the compiler byte-copies unchanged
// do not go through it.
type MappedFile struct {
	data mmap.MMap
}

// OpenMappedFile memory-maps name for reading. The file descriptor is
// closed as soon as the mapping has been made; the mapping stays valid
// until Close.
func OpenMappedFile(name string) (*MappedFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	f.Close()
	if err != nil {
		return nil, err
	}

	return &MappedFile{data: data}, nil
}

// Bytes returns the mapped file's contents. The slice is only valid until
// Close is called.
func (m *MappedFile) Bytes() []byte { return m.data }

// Close unmaps the file. Calling it again after the first call is a no-op.
func (m *MappedFile) Close() error {
	if m.data == nil {
		return nil
	}
	return m.data.Unmap()
}
