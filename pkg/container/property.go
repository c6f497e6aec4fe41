package container

import (
	"fmt"

	"github.com/goopsie/assetdecode/pkg/binio"
	"github.com/goopsie/assetdecode/pkg/model"
)

// PropertyType is the type tag of a PROP chunk.
type PropertyType uint8

const (
	PropertyString    PropertyType = 0x01
	PropertyBool      PropertyType = 0x02
	PropertyInt       PropertyType = 0x03
	PropertyFloat     PropertyType = 0x04
	PropertyDouble    PropertyType = 0x05
	PropertyUDim      PropertyType = 0x06
	PropertyUDim2     PropertyType = 0x07
	PropertyRay       PropertyType = 0x08
	PropertyFaces     PropertyType = 0x09
	PropertyAxes      PropertyType = 0x0a
	PropertyBrickCol  PropertyType = 0x0b
	PropertyColor3    PropertyType = 0x0c
	PropertyVector2   PropertyType = 0x0d
	PropertyVector3   PropertyType = 0x0e
	PropertyCFrame    PropertyType = 0x10
	PropertyEnum      PropertyType = 0x12
	PropertyReference PropertyType = 0x13
	PropertyInt64     PropertyType = 0x1b
)

var propertyTypeNames = map[PropertyType]string{
	PropertyString:    "String",
	PropertyBool:      "Bool",
	PropertyInt:       "Int",
	PropertyFloat:     "Float",
	PropertyDouble:    "Double",
	PropertyUDim:      "UDim",
	PropertyUDim2:     "UDim2",
	PropertyRay:       "Ray",
	PropertyFaces:     "Faces",
	PropertyAxes:      "Axes",
	PropertyBrickCol:  "BrickColor",
	PropertyColor3:    "Color3",
	PropertyVector2:   "Vector2",
	PropertyVector3:   "Vector3",
	PropertyCFrame:    "CFrame",
	PropertyEnum:      "Enum",
	PropertyReference: "Reference",
	PropertyInt64:     "Int64",
}

// String returns the property type name.
func (t PropertyType) String() string {
	if s, ok := propertyTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown(0x%02x)", uint8(t))
}

// valueDecoder reads n values of one property type.
type valueDecoder func(r *binio.Reader, n int) ([]model.Value, error)

// Supported reports whether values of this type are decoded. Every other
// type is dropped without reading its payload.
func (t PropertyType) Supported() bool {
	return t.decoder() != nil
}

func (t PropertyType) decoder() valueDecoder {
	switch t {
	case PropertyString:
		return decodeStrings
	case PropertyBool:
		return decodeBools
	case PropertyInt, PropertyEnum:
		return decodeInts
	case PropertyFloat:
		return decodeFloats
	default:
		return nil
	}
}

func decodeStrings(r *binio.Reader, n int) ([]model.Value, error) {
	out := make([]model.Value, n)
	for i := range out {
		s, err := r.ReadLengthPrefixedString()
		if err != nil {
			return nil, fmt.Errorf("string %d of %d: %w", i, n, err)
		}
		out[i] = model.String(s)
	}
	return out, nil
}

func decodeBools(r *binio.Reader, n int) ([]model.Value, error) {
	raw, err := r.ReadBytes(n)
	if err != nil {
		return nil, fmt.Errorf("%d bools: %w", n, err)
	}
	out := make([]model.Value, n)
	for i, b := range raw {
		out[i] = model.Bool(b != 0)
	}
	return out, nil
}

func decodeInts(r *binio.Reader, n int) ([]model.Value, error) {
	ints, err := r.ReadPlaneI32Array(n)
	if err != nil {
		return nil, fmt.Errorf("%d ints: %w", n, err)
	}
	out := make([]model.Value, n)
	for i, v := range ints {
		out[i] = model.Int32(v)
	}
	return out, nil
}

func decodeFloats(r *binio.Reader, n int) ([]model.Value, error) {
	floats, err := r.ReadPlaneF32Array(n)
	if err != nil {
		return nil, fmt.Errorf("%d floats: %w", n, err)
	}
	out := make([]model.Value, n)
	for i, v := range floats {
		out[i] = model.Float32(v)
	}
	return out, nil
}
