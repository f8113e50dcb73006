// Still image loading and saving for single-shot processing
package io

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"live-contours/internal/core"
	"live-contours/internal/matconv"
)

var supportedFormats = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}

// ImageLoader handles image file operations
type ImageLoader struct {
	logger logrus.FieldLogger
}

func NewImageLoader(logger logrus.FieldLogger) *ImageLoader {
	return &ImageLoader{
		logger: logger,
	}
}

// LoadGray reads an image file as 8-bit grayscale
func (il *ImageLoader) LoadGray(path string) (*core.PixelBuffer, error) {
	il.logger.WithField("filepath", path).Debug("Loading image as grayscale")

	if !IsSupportedImageFormat(path) {
		return nil, fmt.Errorf("unsupported image format: %s (supported: %s)", path, strings.Join(GetSupportedFormats(), ", "))
	}

	mat := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer mat.Close()
	if mat.Empty() {
		return nil, fmt.Errorf("failed to load image: %s", path)
	}

	buf := &core.PixelBuffer{}
	if err := matconv.FromMat(buf, mat); err != nil {
		return nil, fmt.Errorf("convert %s: %w", path, err)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    buf.Width(),
		"height":   buf.Height(),
	}).Info("Grayscale image loaded successfully")

	return buf, nil
}

// SaveGray writes buf to path; the format follows the file extension
func (il *ImageLoader) SaveGray(buf *core.PixelBuffer, path string) error {
	il.logger.WithField("filepath", path).Debug("Saving image")

	if !IsSupportedImageFormat(path) {
		return fmt.Errorf("unsupported image format: %s (supported: %s)", path, strings.Join(GetSupportedFormats(), ", "))
	}

	mat, err := matconv.ToMat(buf)
	if err != nil {
		return err
	}
	defer mat.Close()

	if ok := gocv.IMWrite(path, mat); !ok {
		return fmt.Errorf("failed to save image: %s", path)
	}

	il.logger.WithFields(logrus.Fields{
		"filepath": path,
		"width":    buf.Width(),
		"height":   buf.Height(),
	}).Info("Image saved successfully")

	return nil
}

// IsSupportedImageFormat reports whether the extension of path is a known image format
func IsSupportedImageFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

func GetSupportedFormats() []string {
	return []string{"JPEG", "PNG", "TIFF", "BMP"}
}
