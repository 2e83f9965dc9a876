package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeVectorRoundTrip(t *testing.T) {
	in := []float32{0.5, -0.25, 1.0, -1.0, 0.0, 3.14159}
	buf := EncodeVector(in)
	assert.Len(t, buf, len(in)*4)

	out := DecodeVector(buf)
	assert.Equal(t, in, out)
}

func TestCosineToL2AndBack(t *testing.T) {
	cases := []float64{1.0, 0.99, 0.5, 0.0, -1.0}
	for _, cos := range cases {
		l2 := CosineToL2(cos)
		assert.GreaterOrEqual(t, l2, 0.0)
		got := L2ToCosine(l2)
		assert.InDelta(t, cos, got, 1e-9)
	}
}

func TestCosineToL2ClampsNegativeSquared(t *testing.T) {
	// cosine > 1 would make 2*(1-cos) negative; guard against a NaN sqrt.
	l2 := CosineToL2(1.5)
	assert.False(t, math.IsNaN(l2))
	assert.Equal(t, 0.0, l2)
}

func TestEnsureDim(t *testing.T) {
	assert.NoError(t, EnsureDim(make([]float32, 384), 384))
	assert.Error(t, EnsureDim(make([]float32, 10), 384))
	assert.Error(t, EnsureDim(nil, 384))
}
