// Sobel gradient magnitude for edge highlighting
package algorithms

import (
	"fmt"
	"math"

	"live-contours/internal/core"
)

// Kernel is a fixed 3x3 convolution matrix indexed [row][column]
type Kernel [3][3]int

var (
	// SobelX responds to horizontal intensity changes (vertical edges)
	SobelX = Kernel{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}}
	// SobelY responds to vertical intensity changes (horizontal edges)
	SobelY = Kernel{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}}
)

// SobelWindowSize is the only window size the hardcoded kernels support
const SobelWindowSize = 3

// SobelFilter writes the clamped Euclidean gradient magnitude of every pixel
type SobelFilter struct {
	Border Border
}

// NewSobelFilter creates a new Sobel edge filter
func NewSobelFilter(border Border) *SobelFilter {
	return &SobelFilter{Border: border}
}

// Apply convolves SobelX and SobelY over src and writes trunc(sqrt(gx²+gy²)),
// saturated at 255, into dst. With BorderClip out-of-bounds terms are simply not
// added, so edge pixels differ from a zero-padded Sobel.
func (s *SobelFilter) Apply(src, dst *core.PixelBuffer, windowSize int) error {
	if err := s.Validate(windowSize); err != nil {
		return err
	}
	if err := checkBuffers(src, dst); err != nil {
		return err
	}

	width, height := src.Width(), src.Height()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx, gy := 0, 0
			for k := -1; k <= 1; k++ {
				for l := -1; l <= 1; l++ {
					nx, ny := x+l, y+k
					if s.Border == BorderReplicate {
						nx, ny = clampInt(nx, 0, width-1), clampInt(ny, 0, height-1)
					} else if !src.In(nx, ny) {
						continue
					}
					v := int(src.At(nx, ny))
					gx += v * SobelX[k+1][l+1]
					gy += v * SobelY[k+1][l+1]
				}
			}
			dst.Set(x, y, Magnitude(gx, gy))
		}
	}

	return nil
}

// Magnitude returns trunc(sqrt(gx²+gy²)) clamped to [0, 255]
func Magnitude(gx, gy int) uint8 {
	magnitude := int(math.Sqrt(float64(gx*gx + gy*gy)))
	if magnitude > 255 {
		return 255
	}
	return uint8(magnitude)
}

func (s *SobelFilter) GetName() string {
	return "Sobel Filter"
}

func (s *SobelFilter) GetDescription() string {
	return "Sobel gradient magnitude to highlight edges"
}

func (s *SobelFilter) Validate(windowSize int) error {
	if windowSize != SobelWindowSize {
		return fmt.Errorf("%w: sobel window size must be %d, got %d", ErrInvalidParameter, SobelWindowSize, windowSize)
	}
	return nil
}

func (s *SobelFilter) GetParameterInfo() []ParameterInfo {
	return []ParameterInfo{
		{
			Name:        "window_size",
			Type:        "int",
			Min:         SobelWindowSize,
			Max:         SobelWindowSize,
			Default:     SobelWindowSize,
			Description: "Kernel size; the Sobel kernels are fixed at 3x3",
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
