package dtype

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Type is an element type. The zero value is Invalid.
type Type uint8

const (
	Invalid Type = iota
	Int8
	Int16
	Int32
	Uint8
	Uint16
	Uint32
	Float32
)

// Category is the numeric category of a Type.
type Category uint8

const (
	CategorySigned Category = iota + 1
	CategoryUnsigned
	CategoryFloat
)

func (c Category) String() string {
	switch c {
	case CategorySigned:
		return "signed"
	case CategoryUnsigned:
		return "unsigned"
	case CategoryFloat:
		return "float"
	default:
		return "unknown"
	}
}

// ErrUnsupportedType is returned for names and width/category pairs outside
// the closed variant set.
var ErrUnsupportedType = errors.New("unsupported element type")

// All lists every valid Type in declaration order.
var All = []Type{Int8, Int16, Int32, Uint8, Uint16, Uint32, Float32}

var names = map[Type]string{
	Int8:    "int8",
	Int16:   "int16",
	Int32:   "int32",
	Uint8:   "uint8",
	Uint16:  "uint16",
	Uint32:  "uint32",
	Float32: "float32",
}

var aliases = map[string]Type{
	"int8": Int8, "s8": Int8, "char": Int8,
	"int16": Int16, "s16": Int16, "short": Int16,
	"int32": Int32, "s32": Int32, "int": Int32,
	"uint8": Uint8, "u8": Uint8,
	"uint16": Uint16, "u16": Uint16,
	"uint32": Uint32, "u32": Uint32,
	"float32": Float32, "f32": Float32, "float": Float32,
}

// Parse resolves a type name or alias.
func Parse(name string) (Type, error) {
	t, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Invalid, fmt.Errorf("%w: %q", ErrUnsupportedType, name)
	}
	return t, nil
}

// Lookup finds the variant for a byte width and category. Widths other than
// 1, 2 and 4, and floats of any width but 4, are rejected.
func Lookup(size int, cat Category) (Type, error) {
	switch {
	case cat == CategorySigned && size == 1:
		return Int8, nil
	case cat == CategorySigned && size == 2:
		return Int16, nil
	case cat == CategorySigned && size == 4:
		return Int32, nil
	case cat == CategoryUnsigned && size == 1:
		return Uint8, nil
	case cat == CategoryUnsigned && size == 2:
		return Uint16, nil
	case cat == CategoryUnsigned && size == 4:
		return Uint32, nil
	case cat == CategoryFloat && size == 4:
		return Float32, nil
	}
	return Invalid, fmt.Errorf("%w: %s width %d", ErrUnsupportedType, cat, size)
}

func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return fmt.Sprintf("dtype(%d)", uint8(t))
}

// Valid reports whether t is a member of the variant set.
func (t Type) Valid() bool {
	_, ok := names[t]
	return ok
}

// Size returns the element width in bytes.
func (t Type) Size() int {
	switch t {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	default:
		return 0
	}
}

// Category returns the numeric category.
func (t Type) Category() Category {
	switch t {
	case Int8, Int16, Int32:
		return CategorySigned
	case Uint8, Uint16, Uint32:
		return CategoryUnsigned
	case Float32:
		return CategoryFloat
	default:
		return 0
	}
}

// Signed reports whether negative values are representable.
func (t Type) Signed() bool {
	c := t.Category()
	return c == CategorySigned || c == CategoryFloat
}

// Float reports whether t is a floating point type.
func (t Type) Float() bool { return t == Float32 }

// Range returns the default sample range for t. Unsigned types span
// [0, 2^(8w)-1]; signed and float types span [-2^(8w-1), 2^(8w-1)-1].
func (t Type) Range() (lo, hi float64) {
	bits := float64(8 * t.Size())
	if t.Category() == CategoryUnsigned {
		return 0, math.Exp2(bits) - 1
	}
	half := math.Exp2(bits - 1)
	return -half, half - 1
}

// Clamp pins v to Range.
func (t Type) Clamp(v float64) float64 {
	lo, hi := t.Range()
	return math.Max(lo, math.Min(hi, v))
}

// Encode writes v into dst, which must hold at least Size bytes. Integer
// variants truncate toward zero and wrap to the width.
func (t Type) Encode(dst []byte, v float64) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if len(dst) < t.Size() {
		return fmt.Errorf("encode %s: need %d bytes, have %d", t, t.Size(), len(dst))
	}
	switch t {
	case Int8:
		dst[0] = byte(int8(int64(v)))
	case Uint8:
		dst[0] = byte(uint8(int64(v)))
	case Int16:
		binary.LittleEndian.PutUint16(dst, uint16(int16(int64(v))))
	case Uint16:
		binary.LittleEndian.PutUint16(dst, uint16(int64(v)))
	case Int32:
		binary.LittleEndian.PutUint32(dst, uint32(int32(int64(v))))
	case Uint32:
		binary.LittleEndian.PutUint32(dst, uint32(int64(v)))
	case Float32:
		binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
	}
	return nil
}

// Decode reads one element from src.
func (t Type) Decode(src []byte) (float64, error) {
	if !t.Valid() {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	if len(src) < t.Size() {
		return 0, fmt.Errorf("decode %s: need %d bytes, have %d", t, t.Size(), len(src))
	}
	switch t {
	case Int8:
		return float64(int8(src[0])), nil
	case Uint8:
		return float64(src[0]), nil
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(src))), nil
	case Uint16:
		return float64(binary.LittleEndian.Uint16(src)), nil
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(src))), nil
	case Uint32:
		return float64(binary.LittleEndian.Uint32(src)), nil
	default:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(src))), nil
	}
}

// Quantize returns the value a Decode of an Encode of v yields.
func (t Type) Quantize(v float64) float64 {
	var buf [4]byte
	if err := t.Encode(buf[:], v); err != nil {
		return v
	}
	out, _ := t.Decode(buf[:])
	return out
}

// EncodeAll packs values into a new byte slice.
func (t Type) EncodeAll(values []float64) ([]byte, error) {
	size := t.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	out := make([]byte, len(values)*size)
	for i, v := range values {
		if err := t.Encode(out[i*size:], v); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DecodeAll unpacks every whole element in src.
func (t Type) DecodeAll(src []byte) ([]float64, error) {
	size := t.Size()
	if size == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	out := make([]float64, len(src)/size)
	for i := range out {
		v, err := t.Decode(src[i*size:])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
