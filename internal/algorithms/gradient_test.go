package algorithms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"live-contours/internal/core"
)

func TestSobelFilter_HorizontalStripe(t *testing.T) {
	src := bufferFrom(t, [][]uint8{
		{0, 0, 0},
		{255, 255, 255},
		{0, 0, 0},
	})
	dst := newFilled(t, 3, 3, 7)

	require.NoError(t, NewSobelFilter(BorderClip).Apply(src, dst, 3))

	// Clipped neighborhoods leave a horizontal gradient at the stripe ends;
	// only the stripe's center has no response.
	assert.Equal(t, [][]uint8{
		{255, 255, 255},
		{255, 0, 255},
		{255, 255, 255},
	}, rowsOf(dst))
}

func TestSobelFilter_VerticalStep(t *testing.T) {
	src := bufferFrom(t, [][]uint8{
		{0, 0, 10, 10},
		{0, 0, 10, 10},
		{0, 0, 10, 10},
	})
	dst := newFilled(t, 4, 3, 0)

	require.NoError(t, NewSobelFilter(BorderClip).Apply(src, dst, 3))
	assert.Equal(t, uint8(40), dst.At(1, 1))
	assert.Equal(t, uint8(40), dst.At(2, 1))
}

func TestSobelFilter_UniformInput(t *testing.T) {
	tests := []struct {
		name   string
		value  uint8
		border Border
		// interiorOnly is set when clipped borders are expected to respond
		interiorOnly bool
	}{
		{name: "black clip", value: 0, border: BorderClip},
		{name: "gray clip", value: 100, border: BorderClip, interiorOnly: true},
		{name: "white clip", value: 255, border: BorderClip, interiorOnly: true},
		{name: "gray replicate", value: 100, border: BorderReplicate},
		{name: "white replicate", value: 255, border: BorderReplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newFilled(t, 6, 5, tt.value)
			dst := newFilled(t, 6, 5, 42)

			require.NoError(t, NewSobelFilter(tt.border).Apply(src, dst, 3))
			for y := 0; y < 5; y++ {
				for x := 0; x < 6; x++ {
					interior := x > 0 && x < 5 && y > 0 && y < 4
					if tt.interiorOnly && !interior {
						continue
					}
					assert.Equal(t, uint8(0), dst.At(x, y), "pixel (%d,%d)", x, y)
				}
			}
		})
	}
}

func TestSobelFilter_ClippedCornerOfUniformImage(t *testing.T) {
	src := newFilled(t, 3, 3, 100)
	dst := newFilled(t, 3, 3, 0)

	require.NoError(t, NewSobelFilter(BorderClip).Apply(src, dst, 3))
	// gx = 100*(2+1) = 300, gy = 100*(2+1) = 300, magnitude saturates
	assert.Equal(t, uint8(255), dst.At(0, 0))
}

func TestSobelFilter_InvalidWindowPerformsNoWrites(t *testing.T) {
	src := bufferFrom(t, [][]uint8{
		{0, 0, 0},
		{255, 255, 255},
		{0, 0, 0},
	})
	dst := newFilled(t, 3, 3, 13)

	for _, size := range []int{5, 1, 0, 4, -3} {
		err := NewSobelFilter(BorderClip).Apply(src, dst, size)
		require.ErrorIs(t, err, ErrInvalidParameter, "window %d", size)
	}
	assert.Equal(t, [][]uint8{{13, 13, 13}, {13, 13, 13}, {13, 13, 13}}, rowsOf(dst))
}

func TestSobelFilter_DimensionMismatch(t *testing.T) {
	err := NewSobelFilter(BorderClip).Apply(newFilled(t, 3, 3, 0), newFilled(t, 2, 3, 0), 3)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestSobelFilter_NeverReadsPadding(t *testing.T) {
	samples := make([]uint8, 5*3)
	for i := range samples {
		samples[i] = 255
	}
	src, err := core.WrapSamples(3, 3, 5, samples)
	require.NoError(t, err)
	src.Fill(0)
	dst := newFilled(t, 3, 3, 99)

	require.NoError(t, NewSobelFilter(BorderClip).Apply(src, dst, 3))
	assert.Equal(t, [][]uint8{{0, 0, 0}, {0, 0, 0}, {0, 0, 0}}, rowsOf(dst))
}

func TestSobelFilter_Checkerboard(t *testing.T) {
	src := newFilled(t, 8, 8, 0)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if (x+y)%2 == 0 {
				src.Set(x, y, 255)
			}
		}
	}
	dst := newFilled(t, 8, 8, 0)

	require.NoError(t, NewSobelFilter(BorderClip).Apply(src, dst, 3))
	// Output is a uint8 so the range holds by construction; the diagonal symmetry of
	// a checkerboard cancels both gradients on interior pixels.
	for y := 1; y < 7; y++ {
		for x := 1; x < 7; x++ {
			assert.Equal(t, uint8(0), dst.At(x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestMagnitude(t *testing.T) {
	tests := []struct {
		gx, gy int
		want   uint8
	}{
		{0, 0, 0},
		{3, 4, 5},
		{-3, -4, 5},
		{1, 1, 1},
		{180, 180, 254},
		{181, 181, 255},
		{255, 765, 255},
		{-1020, 0, 255},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Magnitude(tt.gx, tt.gy), "Magnitude(%d, %d)", tt.gx, tt.gy)
	}
}
