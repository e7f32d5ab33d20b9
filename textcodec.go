// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"fmt"
	"strconv"
	"strings"
)

// textAttrKeyword maps the bracketed type keyword of an attribute line to
// its tag. "UNSIGNED INT" is the only multi-word keyword the grammar uses.
var textAttrKeyword = map[string]AttributeTag{
	"INTEGER":      TagInt,
	"FLOAT":        TagFloat,
	"DOUBLE":       TagDouble,
	"UNSIGNED INT": TagUint,
	"STRING":       TagString,
	"BOOL":         TagBool,
	"INTEGER64":    TagInt64,
	"TRANSLATE":    TagTranslate,
}

// LoadText parses a DAT-grammar byte stream into a fresh Tree. The stream's
// encoding is sniffed from any BOM, falling back to a zero-byte heuristic,
// defaulting to UTF-8 (see sniffEncoding).
//
// LoadText returns the populated tree, the warnings accumulated along the
// way (missing ']' brackets, and - when opts.IgnoreWrongNodeClosed is set -
// section/close-name mismatches), and a *ParseError for any condition the
// grammar treats as fatal.
func LoadText(data []byte, opts *Options) (*Tree, *WarningList, error) {
	tree := NewTree("")
	warnings := &WarningList{}

	lines := decodeToUTF8Lines(data)

	var nodeStack []Node
	hasRoot := false
	lineNum := 0

	for _, rawLine := range lines {
		lineNum++
		line := rawLine

		start := 0
		for start < len(line) && isASCIISpace(line[start]) {
			start++
		}
		if start == len(line) {
			continue
		}

		switch line[start] {
		case '[':
			if err := parseSectionLine(tree, &nodeStack, &hasRoot, line, start, lineNum, warnings, opts); err != nil {
				return tree, warnings, err
			}
		case '<':
			if err := parseAttributeLine(tree, nodeStack, line, start, lineNum); err != nil {
				return tree, warnings, err
			}
		default:
			// Treated as a comment: mods in the wild prefix stray
			// characters before a section to "comment it out", and
			// genuine "//" comments show up too.
		}
	}

	if len(nodeStack) > 0 {
		return tree, warnings, newParseError(lineNum+1, ErrUnclosedSection)
	}
	if !hasRoot {
		return tree, warnings, newParseError(lineNum+1, ErrNoRootSection)
	}

	return tree, warnings, nil
}

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

func parseSectionLine(tree *Tree, nodeStack *[]Node, hasRoot *bool, line string, start, lineNum int, warnings *WarningList, opts *Options) error {
	start++ // past '['

	closing := false
	if start < len(line) && line[start] == '/' {
		closing = true
		start++
	}

	var name string
	if bracket := strings.IndexByte(line[start:], ']'); bracket >= 0 {
		name = line[start : start+bracket]
	} else {
		warnings.Add("line %d: missing closing ']' bracket at the end of section name", lineNum)
		name = line[start:]
	}

	if closing {
		if len(*nodeStack) == 0 {
			return newParseError(lineNum, fmt.Errorf("%w: section %q is being closed, but no section is open", ErrUnclosedSection, name))
		}

		top := (*nodeStack)[len(*nodeStack)-1]
		openName := top.NameString()

		if openName != name {
			if !opts.ignoreWrongNodeClosed() {
				return newParseError(lineNum, &WrongNodeClosedError{OpenNode: openName, ClosedNode: name})
			}
			warnings.Add("line %d: node %q is open, but node %q is being closed", lineNum, openName, name)
		}

		*nodeStack = (*nodeStack)[:len(*nodeStack)-1]
		return nil
	}

	nameID := tree.Interner.Add(name)

	var node Node
	if len(*nodeStack) == 0 {
		if *hasRoot {
			return newParseError(lineNum, ErrMultipleRootSections)
		}
		*hasRoot = true
		node = tree.Root()
		node.SetName(nameID)
	} else {
		node = (*nodeStack)[len(*nodeStack)-1].AppendChild(nameID)
	}

	*nodeStack = append(*nodeStack, node)
	return nil
}

func parseAttributeLine(tree *Tree, nodeStack []Node, line string, start, lineNum int) error {
	if len(nodeStack) == 0 {
		return newParseError(lineNum, ErrRootLevelAttribute)
	}

	start++ // past '<'

	gt := strings.IndexByte(line[start:], '>')
	if gt < 0 {
		return newParseError(lineNum, fmt.Errorf("%w: missing '>' character after attribute type", ErrMalformedAttribute))
	}
	typeStr := line[start : start+gt]
	start += gt + 1

	tag, ok := textAttrKeyword[typeStr]
	if !ok {
		return newParseError(lineNum, fmt.Errorf("%w: %q", ErrUnknownAttributeType, typeStr))
	}

	colon := strings.IndexByte(line[start:], ':')
	if colon < 0 {
		return newParseError(lineNum, fmt.Errorf("%w: missing ':' character after attribute value", ErrMalformedAttribute))
	}
	attrName := line[start : start+colon]
	rawValue := line[start+colon+1:]

	value, err := parseTextAttributeValue(tree, tag, rawValue)
	if err != nil {
		return newParseError(lineNum, fmt.Errorf("%w: %s", ErrMalformedAttribute, err))
	}

	target := nodeStack[len(nodeStack)-1]
	target.InsertAttribute(tree.Interner.Add(attrName), value)
	return nil
}

func parseTextAttributeValue(tree *Tree, tag AttributeTag, raw string) (AttributeValue, error) {
	switch tag {
	case TagInt:
		v, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return AttributeValue{}, err
		}
		return Int(int32(v)), nil
	case TagFloat:
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return AttributeValue{}, err
		}
		return Float(float32(v)), nil
	case TagDouble:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return AttributeValue{}, err
		}
		return Double(v), nil
	case TagUint:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return AttributeValue{}, err
		}
		if v > 0xffffffff {
			return AttributeValue{}, fmt.Errorf("value out of range")
		}
		return Uint(uint32(v)), nil
	case TagBool:
		folded := upperFoldASCII(raw)
		switch {
		case strings.HasPrefix(folded, "TRUE"):
			return Bool(true), nil
		case strings.HasPrefix(folded, "FALSE"):
			return Bool(false), nil
		default:
			v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return AttributeValue{}, err
			}
			return Bool(v != 0), nil
		}
	case TagInt64:
		// A handful of mods store values that only fit in an unsigned
		// 64-bit range here. The original engine's signed parse falls
		// through to an unsigned parse on overflow and reinterprets the
		// bits as signed, which is undefined behavior in C++ but
		// well-defined two's-complement reinterpretation on the
		// platforms it actually shipped on; Go's bit-identical uint64 to
		// int64 conversion reproduces that behavior exactly.
		v, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			return Int64(v), nil
		}
		u, uerr := strconv.ParseUint(raw, 10, 64)
		if uerr != nil {
			return AttributeValue{}, err
		}
		return Int64(int64(u)), nil
	case TagString:
		return StringAttr(tree.Interner.Add(raw)), nil
	case TagTranslate:
		return TranslateAttr(tree.Interner.Add(raw)), nil
	default:
		return AttributeValue{}, fmt.Errorf("unsupported attribute tag %v", tag)
	}
}

// DumpText serializes tree to the DAT grammar, matching the loader's
// section/attribute spelling exactly so LoadText(DumpText(t)) round-trips
// to a tree equal to t modulo string-id renumbering. The walk uses an
// explicit stack, mirroring MergeNode.
func DumpText(tree *Tree) []byte {
	var b strings.Builder

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
			fmt.Fprintf(&b, "[%s]\n", f.node.NameString())
			dumpTextAttributes(&b, tree, f.node)
			f.wroteHdr = true
		}

		if f.nextIdx < len(f.children) {
			child := f.children[f.nextIdx]
			f.nextIdx++
			stack = append(stack, frame{node: child, children: child.Subnodes()})
		} else {
			fmt.Fprintf(&b, "[/%s]\n", f.node.NameString())
			stack = stack[:len(stack)-1]
		}
	}

	return []byte(b.String())
}

func dumpTextAttributes(b *strings.Builder, tree *Tree, node Node) {
	for _, a := range node.Attributes() {
		name := tree.Interner.Get(a.Name)

		switch a.Value.Tag {
		case TagInt:
			fmt.Fprintf(b, "<INTEGER>%s:%d\n", name, a.Value.I32)
		case TagFloat:
			fmt.Fprintf(b, "<FLOAT>%s:%s\n", name, strconv.FormatFloat(float64(a.Value.F32), 'g', -1, 32))
		case TagDouble:
			fmt.Fprintf(b, "<DOUBLE>%s:%s\n", name, strconv.FormatFloat(a.Value.F64, 'g', -1, 64))
		case TagUint:
			fmt.Fprintf(b, "<UNSIGNED INT>%s:%d\n", name, a.Value.U32)
		case TagString:
			fmt.Fprintf(b, "<STRING>%s:%s\n", name, tree.Interner.Get(a.Value.StringID))
		case TagBool:
			if a.Value.BoolValue() {
				fmt.Fprintf(b, "<BOOL>%s:true\n", name)
			} else {
				fmt.Fprintf(b, "<BOOL>%s:false\n", name)
			}
		case TagInt64:
			fmt.Fprintf(b, "<INTEGER64>%s:%d\n", name, a.Value.I64)
		case TagTranslate:
			fmt.Fprintf(b, "<TRANSLATE>%s:%s\n", name, tree.Interner.Get(a.Value.StringID))
		}
	}
}
