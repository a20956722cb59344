// Package matrix_test contains unit tests for the Dense implementation.
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/relfit/matrix"
	"github.com/stretchr/testify/require"
)

// TestNewDenseInvalidDimensions ensures that constructors reject bad shapes.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(0, 5)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDense(5, 0)
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)

	_, err = matrix.NewDenseFrom(2, 2, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions)
}

// TestAtSetOutOfBounds ensures At() and Set() return ErrOutOfRange on invalid access.
func TestAtSetOutOfBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(-1, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	_, err = m.At(0, 2)
	require.ErrorIs(t, err, matrix.ErrIndexOutOfBounds)

	require.ErrorIs(t, m.Set(2, 0, 1.23), matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)
}

// TestCloneIndependence checks that Clone, Diag and ToRows never alias storage.
func TestCloneIndependence(t *testing.T) {
	m, err := matrix.NewIdentity(3)
	require.NoError(t, err)

	c := m.Clone()
	require.NoError(t, c.Set(0, 0, 7))
	v, _ := m.At(0, 0)
	require.Equal(t, 1.0, v)

	d := m.Diag()
	d[1] = 42
	v, _ = m.At(1, 1)
	require.Equal(t, 1.0, v)

	rows := m.ToRows()
	rows[2][2] = -1
	v, _ = m.At(2, 2)
	require.Equal(t, 1.0, v)
	require.Equal(t, "[1, 0, 0]\n[0, 1, 0]\n[0, 0, 1]\n", m.String())
}

// NewDenseFrom keeps NaN entries verbatim (used for "undefined" covariance).
func TestNewDenseFromKeepsNaN(t *testing.T) {
	m, err := matrix.NewDenseFrom(1, 2, []float64{math.NaN(), 1})
	require.NoError(t, err)
	require.False(t, m.IsFinite())
	require.ErrorIs(t, matrix.ValidateFinite(m), matrix.ErrNaNInf)
}
