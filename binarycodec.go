// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

const binaryFormatVersion uint32 = 1

// byteReader is a bounds-checked cursor over an in-memory buffer, in the
// spirit of the teacher's structUnpack helpers: every read either returns
// exactly the bytes asked for or fails with ErrTruncatedBinary, never
// panics on a short buffer.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, ErrTruncatedBinary
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *byteReader) u32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *byteReader) u64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (r *byteReader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *byteReader) f64() (float64, error) {
	v, err := r.u64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// LoadBinary parses a little-endian ADM binary stream into a fresh Tree.
// A version field other than 1 is logged as a warning, not treated as
// fatal: every ADM file observed in the wild carries version 1, and
// rejecting outright would make the loader more fragile than the engine
// it is compatible with.
func LoadBinary(data []byte, opts *Options) (*Tree, error) {
	helper := helperOrDefault(opts.logger())
	r := &byteReader{buf: data}

	version, err := r.u32()
	if err != nil {
		return nil, err
	}
	if version != binaryFormatVersion {
		helper.Warnf("adm: binary stream declares version %d, expected %d", version, binaryFormatVersion)
	}

	tree := NewTree("")

	replacements, err := loadBinaryStringTable(r, tree)
	if err != nil {
		return nil, err
	}

	rootNameSrc, err := r.u32()
	if err != nil {
		return nil, err
	}
	root := tree.Root()
	root.SetName(replacements.translate(tree, rootNameSrc))

	childCount, err := loadBinaryNodeBody(r, tree, root, replacements)
	if err != nil {
		return nil, err
	}

	type loadFrame struct {
		node      Node
		remaining uint32
	}
	stack := []loadFrame{{node: root, remaining: childCount}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.remaining == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		top.remaining--

		childNameSrc, err := r.u32()
		if err != nil {
			return nil, err
		}
		child := top.node.AppendChild(replacements.translate(tree, childNameSrc))

		grandChildCount, err := loadBinaryNodeBody(r, tree, child, replacements)
		if err != nil {
			return nil, err
		}
		stack = append(stack, loadFrame{node: child, remaining: grandChildCount})
	}

	return tree, nil
}

// stringReplacementMap translates the string ids a binary stream used
// internally into ids freshly interned into the destination tree,
// auto-vivifying an empty string for any id the stream never declared in
// its table (a quirk of mods hand-edited with a binary patcher that leaves
// dangling ids behind).
type stringReplacementMap struct {
	m map[uint32]StringID
}

func (s *stringReplacementMap) translate(tree *Tree, srcID uint32) StringID {
	if id, ok := s.m[srcID]; ok {
		return id
	}
	id := tree.Interner.Add("")
	s.m[srcID] = id
	return id
}

func loadBinaryStringTable(r *byteReader, tree *Tree) (*stringReplacementMap, error) {
	count, err := r.u32()
	if err != nil {
		return nil, err
	}

	repl := &stringReplacementMap{m: make(map[uint32]StringID, count)}

	for i := uint32(0); i < count; i++ {
		id, err := r.u32()
		if err != nil {
			return nil, err
		}
		units, err := r.u32()
		if err != nil {
			return nil, err
		}
		raw, err := r.take(int(units) * 2)
		if err != nil {
			return nil, err
		}

		codeUnits := make([]uint16, units)
		for j := range codeUnits {
			codeUnits[j] = binary.LittleEndian.Uint16(raw[j*2:])
		}

		repl.m[id] = tree.Interner.Add(string(utf16.Decode(codeUnits)))
	}

	return repl, nil
}

// loadBinaryNodeBody reads a node's attribute block and its declared child
// count, assuming the caller already established the node's name. It
// returns the child count so the caller can continue the iterative
// descent.
func loadBinaryNodeBody(r *byteReader, tree *Tree, node Node, repl *stringReplacementMap) (uint32, error) {
	attrCount, err := r.u32()
	if err != nil {
		return 0, err
	}

	for i := uint32(0); i < attrCount; i++ {
		nameSrc, err := r.u32()
		if err != nil {
			return 0, err
		}
		tagRaw, err := r.u32()
		if err != nil {
			return 0, err
		}

		value, err := loadBinaryAttributeValue(r, tree, AttributeTag(tagRaw), repl)
		if err != nil {
			return 0, err
		}

		node.InsertAttribute(repl.translate(tree, nameSrc), value)
	}

	return r.u32()
}

func loadBinaryAttributeValue(r *byteReader, tree *Tree, tag AttributeTag, repl *stringReplacementMap) (AttributeValue, error) {
	switch tag {
	case TagInt:
		v, err := r.u32()
		return Int(int32(v)), err
	case TagUint:
		v, err := r.u32()
		return Uint(v), err
	case TagBool:
		v, err := r.u32()
		return Bool(v != 0), err
	case TagString:
		v, err := r.u32()
		if err != nil {
			return AttributeValue{}, err
		}
		return StringAttr(repl.translate(tree, v)), nil
	case TagTranslate:
		v, err := r.u32()
		if err != nil {
			return AttributeValue{}, err
		}
		return TranslateAttr(repl.translate(tree, v)), nil
	case TagInt64:
		v, err := r.u64()
		return Int64(int64(v)), err
	case TagFloat:
		v, err := r.f32()
		return Float(v), err
	case TagDouble:
		v, err := r.f64()
		return Double(v), err
	default:
		return AttributeValue{}, fmt.Errorf("%w: tag %d", ErrUnknownBinaryAttributeType, tag)
	}
}

// DumpBinary serializes tree to the little-endian ADM binary format: a
// version field, a string table carrying every interned string as UTF-16,
// then the node tree itself written in preorder. The string table is
// emitted in ascending id order so two dumps of the same tree are
// byte-identical.
func DumpBinary(tree *Tree) []byte {
	var buf []byte
	buf = appendU32(buf, binaryFormatVersion)
	buf = appendBinaryStringTable(buf, tree)
	buf = appendBinaryTree(buf, tree)
	return buf
}

func appendU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func appendU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func appendBinaryStringTable(buf []byte, tree *Tree) []byte {
	ids := make([]StringID, 0, len(tree.Interner.idToString))
	for id := range tree.Interner.idToString {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf = appendU32(buf, uint32(len(ids)))

	for _, id := range ids {
		units := stringToUTF16Lenient(tree.Interner.Get(id))
		buf = appendU32(buf, uint32(id))
		buf = appendU32(buf, uint32(len(units)))
		for _, u := range units {
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], u)
			buf = append(buf, b[:]...)
		}
	}
	return buf
}

// stringToUTF16Lenient transcodes a Go UTF-8 string to UTF-16 code units,
// decoding each rune through utf32ToUTF16 so an ill-formed source rune
// becomes the replacement character rather than corrupting the stream.
func stringToUTF16Lenient(s string) []uint16 {
	var out []uint16
	for _, r := range s {
		if r == utf8.RuneError {
			r = replacementRune
		}
		out = append(out, utf32ToUTF16(r)...)
	}
	return out
}

func appendBinaryTree(buf []byte, tree *Tree) []byte {
	type frame struct {
		node     Node
		children []Node
		nextIdx  int
		wroteHdr bool
	}

	stack := []frame{{node: tree.Root(), children: tree.Root().Subnodes()}}

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		if !f.wroteHdr {
			buf = appendU32(buf, uint32(f.node.Name()))
			buf = appendBinaryAttributes(buf, f.node)
			buf = appendU32(buf, uint32(len(f.children)))
			f.wroteHdr = true
		}

		if f.nextIdx < len(f.children) {
			child := f.children[f.nextIdx]
			f.nextIdx++
			stack = append(stack, frame{node: child, children: child.Subnodes()})
		} else {
			stack = stack[:len(stack)-1]
		}
	}

	return buf
}

func appendBinaryAttributes(buf []byte, node Node) []byte {
	attrs := node.Attributes()
	buf = appendU32(buf, uint32(len(attrs)))

	for _, a := range attrs {
		buf = appendU32(buf, uint32(a.Name))
		buf = appendU32(buf, uint32(a.Value.Tag))

		switch a.Value.Tag {
		case TagInt:
			buf = appendU32(buf, uint32(a.Value.I32))
		case TagUint, TagBool:
			buf = appendU32(buf, a.Value.U32)
		case TagString, TagTranslate:
			buf = appendU32(buf, uint32(a.Value.StringID))
		case TagInt64:
			buf = appendU64(buf, uint64(a.Value.I64))
		case TagFloat:
			buf = appendU32(buf, math.Float32bits(a.Value.F32))
		case TagDouble:
			buf = appendU64(buf, math.Float64bits(a.Value.F64))
		}
	}
	return buf
}
