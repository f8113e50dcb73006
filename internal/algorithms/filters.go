// Median filter for salt-and-pepper noise reduction
package algorithms

import (
	"fmt"
	"slices"

	"live-contours/internal/core"
)

// MedianFilter replaces each pixel with the lower median of its square neighborhood
type MedianFilter struct {
	Border Border
}

// NewMedianFilter creates a new median filter algorithm
func NewMedianFilter(border Border) *MedianFilter {
	return &MedianFilter{Border: border}
}

// Apply writes the median of every windowSize x windowSize neighborhood of src into dst.
// With BorderClip, neighbors outside the image are omitted and the element at
// index count/2 of the sorted samples is used.
func (m *MedianFilter) Apply(src, dst *core.PixelBuffer, windowSize int) error {
	if err := m.Validate(windowSize); err != nil {
		return err
	}
	if err := checkBuffers(src, dst); err != nil {
		return err
	}

	width, height := src.Width(), src.Height()
	half := windowSize / 2

	if m.Border == BorderReplicate {
		replicatedMedian(src, dst, half)
		return nil
	}

	values := make([]uint8, 0, min(windowSize, width)*min(windowSize, height))
	for y := 0; y < height; y++ {
		y0, y1 := max(0, y-half), min(height-1, y+half)
		for x := 0; x < width; x++ {
			x0, x1 := max(0, x-half), min(width-1, x+half)
			values = values[:0]
			for ny := y0; ny <= y1; ny++ {
				values = append(values, src.Row(ny)[x0:x1+1]...)
			}

			// Full sort; windows are small enough that selection buys nothing
			slices.Sort(values)
			dst.Set(x, y, values[len(values)/2])
		}
	}

	return nil
}

// replicatedMedian computes the median over a neighborhood whose out-of-bounds
// positions repeat the nearest edge pixel. Each in-bounds pixel is counted once
// per position clamped onto it, so the work per pixel is bounded by the image
// size rather than the window size.
func replicatedMedian(src, dst *core.PixelBuffer, half int) {
	width, height := src.Width(), src.Height()
	side := 2*half + 1
	target := side * side / 2
	var hist [256]int

	for y := 0; y < height; y++ {
		y0, y1 := max(0, y-half), min(height-1, y+half)
		for x := 0; x < width; x++ {
			x0, x1 := max(0, x-half), min(width-1, x+half)
			clear(hist[:])
			for ny := y0; ny <= y1; ny++ {
				wy := edgeWeight(ny, y, half, height)
				row := src.Row(ny)
				for nx := x0; nx <= x1; nx++ {
					hist[row[nx]] += wy * edgeWeight(nx, x, half, width)
				}
			}

			seen := 0
			for v, n := range hist {
				seen += n
				if seen > target {
					dst.Set(x, y, uint8(v))
					break
				}
			}
		}
	}
}

// edgeWeight is how many window positions around center map onto n once
// coordinates are clamped to [0, size).
func edgeWeight(n, center, half, size int) int {
	w := 1
	if n == 0 {
		w += max(0, half-center)
	}
	if n == size-1 {
		w += max(0, center+half-(size-1))
	}
	return w
}

func (m *MedianFilter) GetName() string {
	return "Median Filter"
}

func (m *MedianFilter) GetDescription() string {
	return "Median filter to remove salt-and-pepper noise"
}

// Validate accepts any odd window size of at least 1
func (m *MedianFilter) Validate(windowSize int) error {
	if windowSize < 1 || windowSize%2 == 0 {
		return fmt.Errorf("%w: median window size must be odd and >= 1, got %d", ErrInvalidParameter, windowSize)
	}
	return nil
}

func (m *MedianFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "window_size",
			Type:        "int",
			Min:         1,
			Default:     3,
			Description: "Side length of the median neighborhood (must be odd)",
		},
		{
			Name:        "border",
			Type:        "enum",
			Default:     "clip",
			Description: "Edge handling: omit out-of-bounds neighbors or replicate edge pixels",
			Options:     []string{"clip", "replicate"},
		},
	}
}
