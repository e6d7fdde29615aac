package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	w := NewWriter()
	h := Header{
		CompilerVersion: Version{Major: 1, Minor: 2, Patch: 3},
		HasBytecode:     true,
		BytecodeVersion: Version{Major: 1, Minor: 0, Patch: 0},
		CompiledAtUtc:   "2026-07-30T00:00:00Z",
		CurrentFilename: "a.ht",
		SourceType:      SourceModule,
	}
	w.WriteHeader(h)
	pool := ConstantPool{Ints: []int64{40, 2}, Floats: []float64{1.5}, Strings: []string{"hi"}}
	w.WriteConstantPools(pool)

	r := NewReader(w.Bytes(), nil)
	got, err := ReadHeader(r)
	require.NoError(t, err)
	assert.Equal(t, h.CompilerVersion, got.CompilerVersion)
	assert.Equal(t, h.CompiledAtUtc, got.CompiledAtUtc)
	assert.Equal(t, h.CurrentFilename, got.CurrentFilename)
	assert.Equal(t, SourceModule, got.SourceType)

	require.NoError(t, r.ReadConstantPools())
	iv, err := r.GetConstInt(0)
	require.NoError(t, err)
	assert.Equal(t, int64(40), iv)
	sv, err := r.GetConstString(0)
	require.NoError(t, err)
	assert.Equal(t, "hi", sv)
}

func TestReaderOutOfRange(t *testing.T) {
	r := NewReader([]byte{1, 2}, nil)
	_, err := r.ReadInt64()
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestVersionCompatible(t *testing.T) {
	v1 := Version{Major: 1, Minor: 0, Patch: 0}
	v2 := Version{Major: 1, Minor: 5, Patch: 2}
	assert.True(t, v1.Compatible(v2))

	z1 := Version{Major: 0, Minor: 1, Patch: 0}
	z2 := Version{Major: 0, Minor: 1, Patch: 1}
	assert.False(t, z1.Compatible(z2))
}
