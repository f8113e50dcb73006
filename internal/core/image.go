// Core grayscale pixel buffer shared by filters, capture and image I/O
package core

import (
	"fmt"
	"image"
)

// MaxDimension bounds width and height to keep allocations reasonable
const MaxDimension = 16384

// PixelBuffer is a 2D grid of 8-bit intensity samples with a row stride.
// Pixel (x, y) lives at samples[y*stride+x]; bytes past width in a row are padding.
type PixelBuffer struct {
	width   int
	height  int
	stride  int
	samples []uint8
}

// NewPixelBuffer allocates a tightly packed buffer (stride == width)
func NewPixelBuffer(width, height int) (*PixelBuffer, error) {
	return NewPixelBufferStride(width, height, width)
}

// NewPixelBufferStride allocates a buffer whose rows are stride bytes apart
func NewPixelBufferStride(width, height, stride int) (*PixelBuffer, error) {
	if err := validateDimensions(width, height, stride); err != nil {
		return nil, err
	}
	return &PixelBuffer{
		width:   width,
		height:  height,
		stride:  stride,
		samples: make([]uint8, stride*height),
	}, nil
}

// WrapSamples builds a buffer over existing samples without copying
func WrapSamples(width, height, stride int, samples []uint8) (*PixelBuffer, error) {
	if err := validateDimensions(width, height, stride); err != nil {
		return nil, err
	}
	if len(samples) < stride*height {
		return nil, fmt.Errorf("sample slice too short: have %d, need %d", len(samples), stride*height)
	}
	return &PixelBuffer{width: width, height: height, stride: stride, samples: samples}, nil
}

func validateDimensions(width, height, stride int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid dimensions: %dx%d", width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("image too large: %dx%d (max: %d)", width, height, MaxDimension)
	}
	if stride < width {
		return fmt.Errorf("stride %d is smaller than width %d", stride, width)
	}
	return nil
}

// Width returns the number of addressable columns
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the number of rows
func (b *PixelBuffer) Height() int { return b.height }

// Stride returns the distance in bytes between the starts of two rows
func (b *PixelBuffer) Stride() int { return b.stride }

// Bounds returns the addressable rectangle, origin at (0, 0)
func (b *PixelBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// In reports whether (x, y) is an addressable pixel
func (b *PixelBuffer) In(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// At returns the sample at (x, y), or 0 when the coordinate is out of bounds.
func (b *PixelBuffer) At(x, y int) uint8 {
	if !b.In(x, y) {
		return 0
	}
	return b.samples[y*b.stride+x]
}

// Set writes v at (x, y). Out-of-bounds writes are ignored so padding is never touched.
func (b *PixelBuffer) Set(x, y int, v uint8) {
	if !b.In(x, y) {
		return
	}
	b.samples[y*b.stride+x] = v
}

// Row returns the width addressable samples of row y, or nil if y is out of range.
// The slice aliases the buffer.
func (b *PixelBuffer) Row(y int) []uint8 {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.samples[start : start+b.width : start+b.width]
}

// SameSize reports whether both buffers address the same width and height
func (b *PixelBuffer) SameSize(other *PixelBuffer) bool {
	return other != nil && b.width == other.width && b.height == other.height
}

// Fill sets every addressable pixel to v
func (b *PixelBuffer) Fill(v uint8) {
	for y := 0; y < b.height; y++ {
		row := b.Row(y)
		for x := range row {
			row[x] = v
		}
	}
}

// Reset resizes the buffer to a tightly packed width x height grid, reusing
// the existing allocation when it is large enough. Contents are undefined afterwards.
func (b *PixelBuffer) Reset(width, height int) error {
	if err := validateDimensions(width, height, width); err != nil {
		return err
	}
	n := width * height
	if cap(b.samples) < n {
		b.samples = make([]uint8, n)
	}
	b.samples = b.samples[:n]
	b.width = width
	b.height = height
	b.stride = width
	return nil
}

// Clone returns a deep copy with the same stride
func (b *PixelBuffer) Clone() *PixelBuffer {
	samples := make([]uint8, len(b.samples))
	copy(samples, b.samples)
	return &PixelBuffer{width: b.width, height: b.height, stride: b.stride, samples: samples}
}

// Compact returns the addressable samples packed row after row (width*height bytes).
// When the buffer has no padding the returned slice aliases the buffer.
func (b *PixelBuffer) Compact() []uint8 {
	n := b.width * b.height
	if b.stride == b.width {
		return b.samples[:n]
	}
	out := make([]uint8, 0, n)
	for y := 0; y < b.height; y++ {
		out = append(out, b.Row(y)...)
	}
	return out
}

// CopyRows copies rows of a packed or strided source (srcStride bytes apart) into b.
func (b *PixelBuffer) CopyRows(src []uint8, srcStride int) error {
	if srcStride < b.width {
		return fmt.Errorf("source stride %d is smaller than width %d", srcStride, b.width)
	}
	if need := srcStride*(b.height-1) + b.width; len(src) < need {
		return fmt.Errorf("source too short: have %d, need %d", len(src), need)
	}
	for y := 0; y < b.height; y++ {
		copy(b.Row(y), src[y*srcStride:y*srcStride+b.width])
	}
	return nil
}

// ToGray copies the buffer into a standard library grayscale image
func (b *PixelBuffer) ToGray() *image.Gray {
	img := image.NewGray(b.Bounds())
	for y := 0; y < b.height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+b.width], b.Row(y))
	}
	return img
}

// FromGray copies a standard library grayscale image into a new buffer
func FromGray(img *image.Gray) (*PixelBuffer, error) {
	r := img.Bounds()
	buf, err := NewPixelBuffer(r.Dx(), r.Dy())
	if err != nil {
		return nil, err
	}
	for y := 0; y < buf.height; y++ {
		start := img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(buf.Row(y), img.Pix[start:start+buf.width])
	}
	return buf, nil
}

// String describes the buffer geometry
func (b *PixelBuffer) String() string {
	return fmt.Sprintf("PixelBuffer(%dx%d stride=%d)", b.width, b.height, b.stride)
}
