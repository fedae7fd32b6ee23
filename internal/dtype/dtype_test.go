package dtype

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		want Type
	}{
		{"int8", Int8},
		{"S16", Int16},
		{"int", Int32},
		{" uint8 ", Uint8},
		{"u16", Uint16},
		{"uint32", Uint32},
		{"float", Float32},
		{"f32", Float32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Unsupported(t *testing.T) {
	for _, name := range []string{"", "int64", "complex64", "float64"} {
		_, err := Parse(name)
		assert.ErrorIs(t, err, ErrUnsupportedType, name)
	}
}

func TestLookup(t *testing.T) {
	got, err := Lookup(2, CategoryUnsigned)
	require.NoError(t, err)
	assert.Equal(t, Uint16, got)

	_, err = Lookup(8, CategorySigned)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Lookup(2, CategoryFloat)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "float width 2")
}

func TestRange(t *testing.T) {
	tests := []struct {
		typ    Type
		lo, hi float64
	}{
		{Int8, -128, 127},
		{Uint8, 0, 255},
		{Int16, -32768, 32767},
		{Uint16, 0, 65535},
		{Int32, math.MinInt32, math.MaxInt32},
		{Uint32, 0, math.MaxUint32},
		{Float32, math.MinInt32, math.MaxInt32},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			lo, hi := tt.typ.Range()
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestEncodeDecode_Extremes(t *testing.T) {
	for _, typ := range All {
		t.Run(typ.String(), func(t *testing.T) {
			lo, hi := typ.Range()
			for _, v := range []float64{lo, hi, 0, 1} {
				want := v
				if typ.Float() {
					want = float64(float32(v))
				}
				buf := make([]byte, typ.Size())
				require.NoError(t, typ.Encode(buf, v))
				got, err := typ.Decode(buf)
				require.NoError(t, err)
				assert.Equal(t, want, got)
			}
		})
	}
}

func TestEncode_LittleEndian(t *testing.T) {
	buf := make([]byte, 4)
	require.NoError(t, Int32.Encode(buf, -2))
	assert.Equal(t, []byte{0xfe, 0xff, 0xff, 0xff}, buf)

	require.NoError(t, Uint16.Encode(buf, 0x1234))
	assert.Equal(t, []byte{0x34, 0x12}, buf[:2])
}

func TestEncode_TruncatesAndWraps(t *testing.T) {
	assert.Equal(t, float64(3), Int8.Quantize(3.9))
	assert.Equal(t, float64(-3), Int8.Quantize(-3.9))
	assert.Equal(t, float64(-128), Int8.Quantize(128))
	assert.Equal(t, float64(0), Uint8.Quantize(256))
	assert.Equal(t, float64(float32(0.1)), Float32.Quantize(0.1))
}

func TestEncode_ShortBuffer(t *testing.T) {
	err := Int32.Encode(make([]byte, 3), 1)
	require.Error(t, err)

	_, err = Uint16.Decode([]byte{1})
	require.Error(t, err)
}

func TestEncode_InvalidType(t *testing.T) {
	err := Invalid.Encode(make([]byte, 4), 1)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Type(99).EncodeAll([]float64{1})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestEncodeAllDecodeAll(t *testing.T) {
	values := []float64{-5, 0, 7, 32767}
	raw, err := Int16.EncodeAll(values)
	require.NoError(t, err)
	assert.Len(t, raw, 8)

	got, err := Int16.DecodeAll(raw)
	require.NoError(t, err)
	assert.Equal(t, values, got)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, float64(255), Uint8.Clamp(1000))
	assert.Equal(t, float64(0), Uint8.Clamp(-3))
	assert.Equal(t, float64(12), Uint8.Clamp(12))
}

func TestTextMarshaling(t *testing.T) {
	b, err := Uint32.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "uint32", string(b))

	var typ Type
	require.NoError(t, typ.UnmarshalText([]byte("short")))
	assert.Equal(t, Int16, typ)

	assert.Error(t, typ.UnmarshalText([]byte("bogus")))
}
