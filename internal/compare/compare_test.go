package compare

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	i8  int8
	u16 uint16
	i64 int64
	u64 uint64
	sz  uintptr
	s   string
	ref *string
}

func TestOrdered(t *testing.T) {
	c := Ordered(func(r *row) int64 { return r.i64 })
	a, b := &row{i64: -5}, &row{i64: 7}
	assert.Negative(t, c(a, b))
	assert.Positive(t, c(b, a))
	assert.Zero(t, c(a, a))

	rc := Reverse(c)
	assert.Positive(t, rc(a, b))
}

func TestByRef(t *testing.T) {
	c := ByRef(func(r *row) *string { return r.ref })
	x, y := "apple", "banana"

	assert.Negative(t, c(&row{ref: &x}, &row{ref: &y}))
	assert.Negative(t, c(&row{}, &row{ref: &x}), "nil orders first")
	assert.Positive(t, c(&row{ref: &x}, &row{}))
	assert.Zero(t, c(&row{}, &row{}))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Int8, KindOf[int8]())
	assert.Equal(t, Uint16, KindOf[uint16]())
	assert.Equal(t, Int64, KindOf[int64]())
	assert.Equal(t, Size, KindOf[int]())
	assert.Equal(t, Size, KindOf[uintptr]())

	type priority uint32
	assert.Equal(t, Uint32, KindOf[priority]())
}

func TestKind(t *testing.T) {
	assert.True(t, Int32.Valid())
	assert.False(t, (Int32 | String).Valid())
	assert.False(t, Kind(0).Valid())
	assert.True(t, Integer.Any(Uint8))
	assert.False(t, Text.Any(Identity))
	assert.Equal(t, "int8|string", (Int8 | String).String())
	assert.Equal(t, "none", Kind(0).String())
}

func TestPromoteInteger(t *testing.T) {
	tests := []struct {
		name  string
		probe func() (Probe[row], error)
		rec   row
		want  int
	}{
		{
			name: "int literal vs int8",
			probe: func() (Probe[row], error) {
				return PromoteInteger(func(r *row) int8 { return r.i8 }, 3)
			},
			rec:  row{i8: 3},
			want: 0,
		},
		{
			name: "out of range immediate orders after int8",
			probe: func() (Probe[row], error) {
				return PromoteInteger(func(r *row) int8 { return r.i8 }, 1000)
			},
			rec:  row{i8: math.MaxInt8},
			want: 1,
		},
		{
			name: "negative immediate orders before unsigned",
			probe: func() (Probe[row], error) {
				return PromoteInteger(func(r *row) uint16 { return r.u16 }, -1)
			},
			rec:  row{u16: 0},
			want: -1,
		},
		{
			name: "large unsigned immediate vs negative signed key",
			probe: func() (Probe[row], error) {
				return PromoteInteger(func(r *row) int64 { return r.i64 }, uint64(math.MaxUint64))
			},
			rec:  row{i64: -1},
			want: 1,
		},
		{
			name: "uint64 beyond int64 range",
			probe: func() (Probe[row], error) {
				return PromoteInteger(func(r *row) uint64 { return r.u64 }, uint64(math.MaxUint64))
			},
			rec:  row{u64: math.MaxUint64 - 1},
			want: 1,
		},
		{
			name: "size key",
			probe: func() (Probe[row], error) {
				return PromoteInteger(func(r *row) uintptr { return r.sz }, int16(4))
			},
			rec:  row{sz: 9},
			want: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.probe()
			require.NoError(t, err)
			rec := tt.rec
			got := p(&rec)
			switch {
			case tt.want < 0:
				assert.Negative(t, got)
			case tt.want > 0:
				assert.Positive(t, got)
			default:
				assert.Zero(t, got)
			}
		})
	}
}

func TestPromoteRejectsWrongType(t *testing.T) {
	_, err := PromoteInteger(func(r *row) int64 { return r.i64 }, "seven")
	require.Error(t, err)

	_, err = PromoteString(func(r *row) string { return r.s }, 7)
	require.Error(t, err)

	_, err = PromoteStringRef(func(r *row) *string { return r.ref }, 7)
	require.Error(t, err)
}

func TestPromoteString(t *testing.T) {
	p, err := PromoteString(func(r *row) string { return r.s }, "m")
	require.NoError(t, err)
	assert.Positive(t, p(&row{s: "a"}))
	assert.Zero(t, p(&row{s: "m"}))

	rp := ReverseProbe(p)
	assert.Negative(t, rp(&row{s: "a"}))

	s := "k"
	q, err := PromoteStringRef(func(r *row) *string { return r.ref }, &s)
	require.NoError(t, err)
	assert.Zero(t, q(&row{ref: &s}))
	assert.Positive(t, q(&row{}))
}
