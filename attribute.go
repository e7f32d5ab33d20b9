// Copyright 2024 The tlmc Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package tlmc

// AttributeTag identifies which field of AttributeValue is live. The eight
// tags below are exhaustive; TagInvalid is reserved and never appears in a
// serialized stream.
type AttributeTag uint32

const (
	TagInvalid AttributeTag = iota
	TagInt
	TagFloat
	TagDouble
	TagUint
	TagString
	TagBool
	TagInt64
	TagTranslate
)

// String names the tag the way the text codec spells it.
func (t AttributeTag) String() string {
	switch t {
	case TagInt:
		return "INTEGER"
	case TagFloat:
		return "FLOAT"
	case TagDouble:
		return "DOUBLE"
	case TagUint:
		return "UNSIGNED INT"
	case TagString:
		return "STRING"
	case TagBool:
		return "BOOL"
	case TagInt64:
		return "INTEGER64"
	case TagTranslate:
		return "TRANSLATE"
	default:
		return "INVALID"
	}
}

// AttributeValue is a closed tagged union over the eight attribute value
// shapes the ADM format supports. It is a struct with one field per shape
// rather than an interface hierarchy: there is no third kind of attribute
// value coming, so a variant is simpler and avoids both boxing and type
// assertions at every read site.
type AttributeValue struct {
	Tag AttributeTag

	I32      int32    // TagInt
	U32      uint32   // TagUint, TagBool (0/1)
	I64      int64    // TagInt64
	F32      float32  // TagFloat
	F64      float64  // TagDouble
	StringID StringID // TagString, TagTranslate
}

// Int returns an INT attribute value.
func Int(v int32) AttributeValue { return AttributeValue{Tag: TagInt, I32: v} }

// Uint returns an UNSIGNED INT attribute value.
func Uint(v uint32) AttributeValue { return AttributeValue{Tag: TagUint, U32: v} }

// Int64 returns an INTEGER64 attribute value.
func Int64(v int64) AttributeValue { return AttributeValue{Tag: TagInt64, I64: v} }

// Float returns a FLOAT attribute value.
func Float(v float32) AttributeValue { return AttributeValue{Tag: TagFloat, F32: v} }

// Double returns a DOUBLE attribute value.
func Double(v float64) AttributeValue { return AttributeValue{Tag: TagDouble, F64: v} }

// Bool returns a BOOL attribute value.
func Bool(v bool) AttributeValue {
	av := AttributeValue{Tag: TagBool}
	if v {
		av.U32 = 1
	}
	return av
}

// BoolValue reports the truthiness of a BOOL attribute value (non-zero is
// true, matching the text-codec and binary-codec BOOL encoding).
func (v AttributeValue) BoolValue() bool { return v.U32 != 0 }

// StringAttr returns a STRING attribute value referencing an already
// interned string id.
func StringAttr(id StringID) AttributeValue { return AttributeValue{Tag: TagString, StringID: id} }

// TranslateAttr returns a TRANSLATE attribute value referencing an already
// interned string id.
func TranslateAttr(id StringID) AttributeValue {
	return AttributeValue{Tag: TagTranslate, StringID: id}
}

// IsStringLike reports whether the value's payload is an interned string id
// (STRING or TRANSLATE), the two tags whose payload must be translated
// across trees during merge and binary load.
func (v AttributeValue) IsStringLike() bool {
	return v.Tag == TagString || v.Tag == TagTranslate
}
