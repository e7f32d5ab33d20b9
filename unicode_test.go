// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

import (
	"reflect"
	"testing"
)

func TestSniffEncodingBOMs(t *testing.T) {
	cases := []struct {
		name     string
		data     []byte
		wantEnc  textEncoding
		wantSkip int
	}{
		{"utf8 bom", []byte{0xef, 0xbb, 0xbf, 'a'}, encodingUTF8, 3},
		{"utf16be bom", []byte{0xfe, 0xff, 0x00, 'a'}, encodingUTF16BE, 2},
		{"utf16le bom", []byte{0xff, 0xfe, 'a', 0x00}, encodingUTF16LE, 2},
		{"no bom ascii", []byte("hello"), encodingUTF8, 0},
		{"no bom utf16be heuristic", []byte{0x00, 'a', 0x00, 'b'}, encodingUTF16BE, 0},
		{"no bom utf16le heuristic", []byte{'a', 0x00, 'b', 0x00}, encodingUTF16LE, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			enc, skip := sniffEncoding(c.data)
			if enc != c.wantEnc || skip != c.wantSkip {
				t.Errorf("sniffEncoding(%v) = (%v, %d), want (%v, %d)", c.data, enc, skip, c.wantEnc, c.wantSkip)
			}
		})
	}
}

func TestDecodeToUTF8LinesASCII(t *testing.T) {
	got := decodeToUTF8Lines([]byte("foo\r\nbar\nbaz\rqux"))
	want := []string{"foo", "bar", "baz", "qux"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("decodeToUTF8Lines = %v, want %v", got, want)
	}
}

func TestDecodeToUTF8LinesUTF16LE(t *testing.T) {
	// "ab\n" as UTF-16LE with BOM.
	data := []byte{0xff, 0xfe, 'a', 0x00, 'b', 0x00, '\n', 0x00}
	got := decodeToUTF8Lines(data)
	want := []string{"ab"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("decodeToUTF8Lines(UTF-16LE) = %v, want %v", got, want)
	}
}

func TestUTF16CodeUnitsToUTF8SurrogatePair(t *testing.T) {
	// U+1F600 (grinning face) as a UTF-16 surrogate pair.
	units := []uint16{0xd83d, 0xde00}
	got := utf16CodeUnitsToUTF8(units)
	want := "😀"
	if got != want {
		t.Errorf("utf16CodeUnitsToUTF8(surrogate pair) = %q, want %q", got, want)
	}
}

func TestUTF16CodeUnitsToUTF8UnpairedSurrogate(t *testing.T) {
	units := []uint16{0xd83d, 'x'}
	got := utf16CodeUnitsToUTF8(units)
	want := string(replacementRune) + "x"
	if got != want {
		t.Errorf("utf16CodeUnitsToUTF8(unpaired surrogate) = %q, want %q", got, want)
	}
}

func TestUpperFoldASCII(t *testing.T) {
	cases := map[string]string{
		"foo.dat":      "FOO.DAT",
		"Media/Units":  "MEDIA/UNITS",
		"already_UP":   "ALREADY_UP",
		"non-ascii-é":  "NON-ASCII-é",
	}
	for in, want := range cases {
		if got := upperFoldASCII(in); got != want {
			t.Errorf("upperFoldASCII(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUpperFoldASCIIExportedWrapper(t *testing.T) {
	if UpperFoldASCII("abc") != upperFoldASCII("abc") {
		t.Error("UpperFoldASCII must behave identically to the unexported upperFoldASCII")
	}
}

func TestDecodeUTF8LenientMalformedSequence(t *testing.T) {
	// 0xff is never valid in UTF-8; the decoder must emit exactly one
	// replacement rune and resume immediately after it.
	data := []byte{'a', 0xff, 'b'}
	got := decodeUTF8Lenient(data)
	want := []rune{'a', replacementRune, 'b'}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("decodeUTF8Lenient(%v) = %v, want %v", data, got, want)
	}
}

func TestUTF32ToUTF8SurrogateRangeSubstituted(t *testing.T) {
	got := utf32ToUTF8(0xd800)
	want := string(replacementRune)
	if got != want {
		t.Errorf("utf32ToUTF8(surrogate) = %q, want %q", got, want)
	}
}
