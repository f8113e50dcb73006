// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"math"

	"live-contours/internal/core"
)

// DefaultEdgeThreshold is the gradient magnitude at which a pixel counts as an edge
const DefaultEdgeThreshold = 128

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(before, after *core.PixelBuffer) (float64, error) {
	if err := checkPair(before, after); err != nil {
		return 0, err
	}
	return meanSquaredError(before, after), nil
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error between images"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 65025 // 255^2
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

func (p *PSNR) Calculate(before, after *core.PixelBuffer) (float64, error) {
	if err := checkPair(before, after); err != nil {
		return 0, err
	}

	mse := meanSquaredError(before, after)
	if mse == 0 {
		return math.Inf(1), nil // Perfect match
	}

	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// ContrastRatio implements contrast ratio metric (standard deviation after / before)
type ContrastRatio struct{}

// NewContrastRatio creates a new contrast ratio metric
func NewContrastRatio() *ContrastRatio {
	return &ContrastRatio{}
}

func (c *ContrastRatio) Calculate(before, after *core.PixelBuffer) (float64, error) {
	if err := checkPair(before, after); err != nil {
		return 0, err
	}

	beforeContrast := StdDev(before)
	if beforeContrast == 0 {
		return 1.0, nil
	}

	return StdDev(after) / beforeContrast, nil
}

func (c *ContrastRatio) GetName() string {
	return "Contrast Ratio"
}

func (c *ContrastRatio) GetDescription() string {
	return "Ratio of contrast preservation"
}

func (c *ContrastRatio) GetRange() (float64, float64) {
	return 0, 2
}

func (c *ContrastRatio) IsHigherBetter() bool {
	return true
}

// EdgeDensity is the fraction of output pixels at or above Threshold.
// Only the after buffer is inspected.
type EdgeDensity struct {
	Threshold uint8
}

// NewEdgeDensity creates a new edge density metric
func NewEdgeDensity(threshold uint8) *EdgeDensity {
	return &EdgeDensity{Threshold: threshold}
}

func (e *EdgeDensity) Calculate(_, after *core.PixelBuffer) (float64, error) {
	if after == nil {
		return 0, fmt.Errorf("empty images")
	}

	edges := 0
	for y := 0; y < after.Height(); y++ {
		for _, v := range after.Row(y) {
			if v >= e.Threshold {
				edges++
			}
		}
	}

	return float64(edges) / float64(after.Width()*after.Height()), nil
}

func (e *EdgeDensity) GetName() string {
	return "Edge Density"
}

func (e *EdgeDensity) GetDescription() string {
	return fmt.Sprintf("Fraction of pixels with gradient magnitude >= %d", e.Threshold)
}

func (e *EdgeDensity) GetRange() (float64, float64) {
	return 0, 1
}

func (e *EdgeDensity) IsHigherBetter() bool {
	return false
}

// Mean returns the average intensity of the addressable pixels
func Mean(buf *core.PixelBuffer) float64 {
	sum := 0.0
	for y := 0; y < buf.Height(); y++ {
		for _, v := range buf.Row(y) {
			sum += float64(v)
		}
	}
	return sum / float64(buf.Width()*buf.Height())
}

// StdDev returns the standard deviation of the addressable pixels
func StdDev(buf *core.PixelBuffer) float64 {
	meanVal := Mean(buf)

	sumSquaredDiff := 0.0
	for y := 0; y < buf.Height(); y++ {
		for _, v := range buf.Row(y) {
			diff := float64(v) - meanVal
			sumSquaredDiff += diff * diff
		}
	}

	return math.Sqrt(sumSquaredDiff / float64(buf.Width()*buf.Height()))
}

func meanSquaredError(before, after *core.PixelBuffer) float64 {
	sumSquaredDiff := 0.0
	for y := 0; y < before.Height(); y++ {
		rowBefore, rowAfter := before.Row(y), after.Row(y)
		for x := range rowBefore {
			diff := float64(rowBefore[x]) - float64(rowAfter[x])
			sumSquaredDiff += diff * diff
		}
	}

	return sumSquaredDiff / float64(before.Width()*before.Height())
}
