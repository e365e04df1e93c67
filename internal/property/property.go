// Package property models the host's building data record: named properties
// looked up by numeric id, each holding a typed value.
package property

import (
	"errors"
	"fmt"
)

// Type is the variant type of a property value.
type Type uint16

const (
	TypeUint32Array Type = iota + 1
	TypeSint64Array
	TypeFloat32Array
)

var (
	ErrPropertyMissing = errors.New("property not found")
	ErrPropertyType    = errors.New("property has the wrong type")
	ErrGroupArity      = errors.New("property value count is not a whole number of groups")
)

// Value is a typed property value. Only the slice matching Type is used.
type Value struct {
	Type     Type
	Uint32s  []uint32
	Sint64s  []int64
	Float32s []float32
}

// Holder is the read-only property lookup a building exposes.
type Holder interface {
	Property(id uint32) (Value, bool)
}

// Uint32s returns a Uint32Array value.
func Uint32s(values ...uint32) Value {
	return Value{Type: TypeUint32Array, Uint32s: values}
}

// Sint64s returns a Sint64Array value.
func Sint64s(values ...int64) Value {
	return Value{Type: TypeSint64Array, Sint64s: values}
}

// Float32s returns a Float32Array value.
func Float32s(values ...float32) Value {
	return Value{Type: TypeFloat32Array, Float32s: values}
}

// Len returns the number of elements in the value.
func (v Value) Len() int {
	switch v.Type {
	case TypeUint32Array:
		return len(v.Uint32s)
	case TypeSint64Array:
		return len(v.Sint64s)
	case TypeFloat32Array:
		return len(v.Float32s)
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case TypeUint32Array:
		return "uint32"
	case TypeSint64Array:
		return "sint64"
	case TypeFloat32Array:
		return "float32"
	default:
		return fmt.Sprintf("Type(%d)", uint16(t))
	}
}

// Map is an in-memory Holder.
type Map map[uint32]Value

func (m Map) Property(id uint32) (Value, bool) {
	v, ok := m[id]
	return v, ok
}

// GetUint32s reads a Uint32Array property. The returned slice is a copy.
func GetUint32s(h Holder, id uint32) ([]uint32, error) {
	v, err := lookup(h, id, TypeUint32Array)
	if err != nil {
		return nil, err
	}
	return append([]uint32(nil), v.Uint32s...), nil
}

// GetSint64s reads a Sint64Array property. The returned slice is a copy.
func GetSint64s(h Holder, id uint32) ([]int64, error) {
	v, err := lookup(h, id, TypeSint64Array)
	if err != nil {
		return nil, err
	}
	return append([]int64(nil), v.Sint64s...), nil
}

// Uint32Groups reads a Uint32Array property laid out as consecutive groups of
// arity values. An empty array or a count that is not a multiple of arity is
// reported as ErrGroupArity.
func Uint32Groups(h Holder, id uint32, arity int) ([][]uint32, error) {
	values, err := GetUint32s(h, id)
	if err != nil {
		return nil, err
	}
	if err := checkArity(id, len(values), arity); err != nil {
		return nil, err
	}
	groups := make([][]uint32, 0, len(values)/arity)
	for i := 0; i < len(values); i += arity {
		groups = append(groups, values[i:i+arity])
	}
	return groups, nil
}

// Sint64Groups is the Sint64Array counterpart of Uint32Groups.
func Sint64Groups(h Holder, id uint32, arity int) ([][]int64, error) {
	values, err := GetSint64s(h, id)
	if err != nil {
		return nil, err
	}
	if err := checkArity(id, len(values), arity); err != nil {
		return nil, err
	}
	groups := make([][]int64, 0, len(values)/arity)
	for i := 0; i < len(values); i += arity {
		groups = append(groups, values[i:i+arity])
	}
	return groups, nil
}

func lookup(h Holder, id uint32, want Type) (Value, error) {
	if h == nil {
		return Value{}, fmt.Errorf("0x%08x: %w", id, ErrPropertyMissing)
	}
	v, ok := h.Property(id)
	if !ok {
		return Value{}, fmt.Errorf("0x%08x: %w", id, ErrPropertyMissing)
	}
	if v.Type != want {
		return Value{}, fmt.Errorf("0x%08x: %w: got %v, want %v", id, ErrPropertyType, v.Type, want)
	}
	return v, nil
}

func checkArity(id uint32, count, arity int) error {
	if arity < 1 || count < arity || count%arity != 0 {
		return fmt.Errorf("0x%08x: %w: %d values, groups of %d", id, ErrGroupArity, count, arity)
	}
	return nil
}
