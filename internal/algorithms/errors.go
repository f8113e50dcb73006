package algorithms

import (
	"errors"
	"fmt"
	"strings"

	"live-contours/internal/core"
)

// ErrInvalidParameter is returned when a filter is called with an unsupported
// window size or mismatched buffers. The call performs no writes.
var ErrInvalidParameter = errors.New("invalid parameter")

// ErrDimensionMismatch reports src and dst buffers of different sizes
var ErrDimensionMismatch = fmt.Errorf("%w: buffer dimensions mismatch", ErrInvalidParameter)

// Border selects how neighborhoods are sampled at the image edge
type Border int

const (
	// BorderClip omits out-of-bounds neighbors, shrinking the sample set near edges
	BorderClip Border = iota
	// BorderReplicate clamps neighbor coordinates to the nearest edge pixel
	BorderReplicate
)

func (b Border) String() string {
	switch b {
	case BorderClip:
		return "clip"
	case BorderReplicate:
		return "replicate"
	default:
		return fmt.Sprintf("border(%d)", int(b))
	}
}

// ParseBorder maps a config value to a Border; empty means clip
func ParseBorder(s string) (Border, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clip":
		return BorderClip, nil
	case "replicate":
		return BorderReplicate, nil
	default:
		return BorderClip, fmt.Errorf("%w: unknown border mode %q", ErrInvalidParameter, s)
	}
}

func checkBuffers(src, dst *core.PixelBuffer) error {
	if src == nil || dst == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidParameter)
	}
	if !src.SameSize(dst) {
		return fmt.Errorf("%w: src %dx%d, dst %dx%d", ErrDimensionMismatch,
			src.Width(), src.Height(), dst.Width(), dst.Height())
	}
	return nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
