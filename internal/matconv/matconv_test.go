package matconv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"live-contours/internal/core"
)

func TestRoundTrip_StridedBuffer(t *testing.T) {
	src, err := core.NewPixelBufferStride(3, 2, 8)
	require.NoError(t, err)
	src.Set(0, 0, 1)
	src.Set(2, 1, 200)

	mat, err := ToMat(src)
	require.NoError(t, err)
	defer mat.Close()
	assert.Equal(t, 2, mat.Rows())
	assert.Equal(t, 3, mat.Cols())
	assert.Equal(t, uint8(200), mat.GetUCharAt(1, 2))

	var dst core.PixelBuffer
	require.NoError(t, FromMat(&dst, mat))
	assert.Equal(t, src.Compact(), dst.Compact())
	assert.Equal(t, 3, dst.Stride())
}

func TestValidateGray(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	assert.Error(t, ValidateGray(empty))

	color := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC3)
	defer color.Close()
	assert.Error(t, ValidateGray(color))

	var dst core.PixelBuffer
	assert.Error(t, FromMat(&dst, color))
}

func TestToGray(t *testing.T) {
	color := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(10, 10, 10, 0), 2, 3, gocv.MatTypeCV8UC3)
	defer color.Close()
	gray := gocv.NewMat()
	defer gray.Close()

	require.NoError(t, ToGray(color, &gray))
	assert.Equal(t, 1, gray.Channels())

	var dst core.PixelBuffer
	require.NoError(t, FromMat(&dst, gray))
	assert.Equal(t, []uint8{10, 10, 10, 10, 10, 10}, dst.Compact())
}

func TestToMat_OwnsPixels(t *testing.T) {
	buf, err := core.NewPixelBuffer(2, 2)
	require.NoError(t, err)
	buf.Fill(40)

	mat, err := ToMat(buf)
	require.NoError(t, err)
	defer mat.Close()

	buf.Fill(0)
	assert.Equal(t, uint8(40), mat.GetUCharAt(0, 0))
	assert.Equal(t, uint8(40), mat.GetUCharAt(1, 1))
}
