package model

import (
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt32
	KindFloat32
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "String"
	case KindBool:
		return "Bool"
	case KindInt32:
		return "Int32"
	case KindFloat32:
		return "Float32"
	default:
		return "Invalid"
	}
}

// Value is a property value. Exactly one variant is set, selected by Kind.
// The zero Value is invalid and is never stored in a property map.
type Value struct {
	kind Kind
	str  string
	num  int32
	flt  float32
	bit  bool
}

// String returns a String value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, bit: b} }

// Int32 returns an Int32 value.
func Int32(n int32) Value { return Value{kind: KindInt32, num: n} }

// Float32 returns a Float32 value.
func Float32(f float32) Value { return Value{kind: KindFloat32, flt: f} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string variant.
func (v Value) Str() (string, bool) { return v.str, v.kind == KindString }

// Bool returns the bool variant.
func (v Value) Bool() (bool, bool) { return v.bit, v.kind == KindBool }

// Int32 returns the int32 variant.
func (v Value) Int32() (int32, bool) { return v.num, v.kind == KindInt32 }

// Float32 returns the float32 variant.
func (v Value) Float32() (float32, bool) { return v.flt, v.kind == KindFloat32 }

// Interface returns the held variant as a plain Go value, or nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.bit
	case KindInt32:
		return v.num
	case KindFloat32:
		return v.flt
	default:
		return nil
	}
}

// String formats the held variant as text.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return strconv.FormatBool(v.bit)
	case KindInt32:
		return strconv.FormatInt(int64(v.num), 10)
	case KindFloat32:
		return strconv.FormatFloat(float64(v.flt), 'g', -1, 32)
	default:
		return "<invalid>"
	}
}
