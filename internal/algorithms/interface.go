// Filter registry for the grayscale processing chain
package algorithms

import (
	"fmt"
	"sort"

	"live-contours/internal/core"
)

// Filter defines the interface for neighborhood filters on grayscale buffers.
// Apply reads src, writes dst (same dimensions, caller allocated) and never allocates either.
type Filter interface {
	Apply(src, dst *core.PixelBuffer, windowSize int) error
	GetName() string
	GetDescription() string
	Validate(windowSize int) error
	GetParameterInfo() []ParameterInfo
}

// ParameterInfo describes a parameter for help output and config validation
type ParameterInfo struct {
	Name        string   `json:"name" yaml:"name"`
	Type        string   `json:"type" yaml:"type"` // "int", "enum"
	Min         int      `json:"min,omitempty" yaml:"min,omitempty"`
	Max         int      `json:"max,omitempty" yaml:"max,omitempty"`
	Default     any      `json:"default" yaml:"default"`
	Description string   `json:"description" yaml:"description"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"` // For enum type
}

// Factory builds a filter configured with a border policy
type Factory func(border Border) Filter

var factories = make(map[string]Factory)

func Register(name string, factory Factory) {
	factories[name] = factory
}

// Get returns the named filter with the default (clip) border policy
func Get(name string) (Filter, bool) {
	return New(name, BorderClip)
}

// New returns the named filter configured with border
func New(name string, border Border) (Filter, bool) {
	factory, exists := factories[name]
	if !exists {
		return nil, false
	}
	return factory(border), true
}

func Apply(name string, src, dst *core.PixelBuffer, windowSize int) error {
	filter, exists := Get(name)
	if !exists {
		return fmt.Errorf("algorithm not found: %s", name)
	}

	return filter.Apply(src, dst, windowSize)
}

func ValidateParameters(name string, windowSize int) error {
	filter, exists := Get(name)
	if !exists {
		return fmt.Errorf("algorithm not found: %s", name)
	}

	return filter.Validate(windowSize)
}

func IsValidAlgorithm(name string) bool {
	_, exists := factories[name]
	return exists
}

// Names returns the registered algorithm names in sorted order
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func GetAllAlgorithms() map[string]Filter {
	result := make(map[string]Filter)
	for name, factory := range factories {
		result[name] = factory(BorderClip)
	}
	return result
}

func init() {
	Register("median", func(border Border) Filter { return NewMedianFilter(border) })
	Register("sobel", func(border Border) Filter { return NewSobelFilter(border) })
	Register("erode", func(border Border) Filter { return NewErosion(border) })
	Register("dilate", func(border Border) Filter { return NewDilation(border) })
}
