// Conversions between OpenCV matrices and grayscale pixel buffers
package matconv

import (
	"fmt"
	"runtime"

	"gocv.io/x/gocv"

	"live-contours/internal/core"
)

// ValidateGray checks that mat is a non-empty single channel 8-bit image
func ValidateGray(mat gocv.Mat) error {
	if mat.Empty() {
		return fmt.Errorf("image is empty")
	}

	if mat.Cols() <= 0 || mat.Rows() <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", mat.Cols(), mat.Rows())
	}

	if mat.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("unsupported mat type %v: want 8-bit single channel", mat.Type())
	}

	if mat.Cols() > core.MaxDimension || mat.Rows() > core.MaxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", mat.Cols(), mat.Rows(), core.MaxDimension)
	}

	return nil
}

// FromMat copies a grayscale mat into dst, resizing dst to the mat's size
func FromMat(dst *core.PixelBuffer, mat gocv.Mat) error {
	if err := ValidateGray(mat); err != nil {
		return err
	}

	src := mat
	if !mat.IsContinuous() {
		src = mat.Clone()
		defer src.Close()
	}

	data, err := src.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("read mat data: %w", err)
	}

	if err := dst.Reset(src.Cols(), src.Rows()); err != nil {
		return err
	}
	return dst.CopyRows(data, src.Step())
}

// ToMat returns a new single channel mat holding a copy of buf. The caller closes it.
func ToMat(buf *core.PixelBuffer) (gocv.Mat, error) {
	data := buf.Compact()
	// NewMatFromBytes wraps data without copying; the clone owns its pixels.
	view, err := gocv.NewMatFromBytes(buf.Height(), buf.Width(), gocv.MatTypeCV8UC1, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("create mat from buffer: %w", err)
	}
	mat := view.Clone()
	view.Close()
	runtime.KeepAlive(data)
	return mat, nil
}

// ToGray converts a BGR, BGRA or grayscale mat into dst, a caller owned mat
func ToGray(src gocv.Mat, dst *gocv.Mat) error {
	var err error
	switch src.Channels() {
	case 1:
		err = src.CopyTo(dst)
	case 3:
		err = gocv.CvtColor(src, dst, gocv.ColorBGRToGray)
	case 4:
		err = gocv.CvtColor(src, dst, gocv.ColorBGRAToGray)
	default:
		return fmt.Errorf("unsupported number of channels: %d", src.Channels())
	}
	if err != nil {
		return fmt.Errorf("convert to grayscale: %w", err)
	}
	return nil
}
