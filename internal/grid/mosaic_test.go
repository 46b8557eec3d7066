package grid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOffset(t *testing.T) {
	a := build(t, FVA0, Transform{OriginX: 0, OriginY: 10, CellSize: 2}, [][]float64{{1}})
	b := build(t, FVA1, Transform{OriginX: 4, OriginY: 6, CellSize: 2}, [][]float64{{1}})

	dr, dc, err := Offset(a, b)
	require.NoError(t, err)
	assert.Equal(t, 2, dr)
	assert.Equal(t, 2, dc)

	dr, dc, err = Offset(b, a)
	require.NoError(t, err)
	assert.Equal(t, -2, dr)
	assert.Equal(t, -2, dc)
}

func TestOffsetMisaligned(t *testing.T) {
	a := build(t, FVA0, Transform{OriginX: 0, OriginY: 10, CellSize: 2}, [][]float64{{1}})

	shifted := build(t, FVA1, Transform{OriginX: 1, OriginY: 10, CellSize: 2}, [][]float64{{1}})
	_, _, err := Offset(a, shifted)
	assert.ErrorIs(t, err, ErrMisaligned)

	coarser := build(t, FVA1, Transform{OriginX: 0, OriginY: 10, CellSize: 3}, [][]float64{{1}})
	_, _, err = Offset(a, coarser)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestMosaicLastWins(t *testing.T) {
	target := build(t, FVA1, unit, [][]float64{
		{10, 10, 10},
		{10, 9.5, 10},
		{10, 10, 10},
	})
	patch := build(t, FVA1, unit, [][]float64{
		{nd, nd, nd},
		{nd, 11, nd},
		{nd, nd, nd},
	})

	n, err := Mosaic(target, patch)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	v, _ := target.At(1, 1)
	assert.Equal(t, 11.0, v)
	assert.Equal(t, 9, target.DataCount(), "nodata patch cells leave target untouched")
}

func TestMosaicGrowsExtent(t *testing.T) {
	target := build(t, FVA1, Transform{OriginX: 1, OriginY: 2, CellSize: 1}, [][]float64{
		{5},
	})
	patch := build(t, FVA1, Transform{OriginX: 0, OriginY: 3, CellSize: 1}, [][]float64{
		{1, nd, nd},
		{nd, nd, 3},
	})

	n, err := Mosaic(target, patch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, Transform{OriginX: 0, OriginY: 3, CellSize: 1}, target.Transform)
	assert.Equal(t, 2, target.Rows)
	assert.Equal(t, 3, target.Cols)

	got := [][]bool{}
	for r := 0; r < target.Rows; r++ {
		row := []bool{}
		for c := 0; c < target.Cols; c++ {
			row = append(row, target.HasData(r, c))
		}
		got = append(got, row)
	}
	want := [][]bool{
		{true, false, false},
		{false, true, true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("footprint mismatch (-want +got):\n%s", diff)
	}

	v, _ := target.At(1, 1)
	assert.Equal(t, 5.0, v, "original value keeps its map position")
}

func TestMosaicRejectsMisaligned(t *testing.T) {
	target := build(t, FVA1, unit, [][]float64{{1}})
	patch := build(t, FVA1, Transform{OriginX: 0.5, OriginY: 3, CellSize: 1}, [][]float64{{2}})

	_, err := Mosaic(target, patch)
	assert.ErrorIs(t, err, ErrMisaligned)
}

func TestMosaicIgnoresNoDataMargins(t *testing.T) {
	target := build(t, FVA1, Transform{OriginX: 1, OriginY: 2, CellSize: 1}, [][]float64{
		{5},
	})
	patch := build(t, FVA1, Transform{OriginX: 0, OriginY: 3, CellSize: 1}, [][]float64{
		{nd, nd, nd},
		{nd, 6, nd},
		{nd, nd, nd},
	})

	n, err := Mosaic(target, patch)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, target.Rows)
	assert.Equal(t, 1, target.Cols)
	v, _ := target.At(0, 0)
	assert.Equal(t, 6.0, v)
}

