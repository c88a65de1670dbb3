package challenge

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/nfnt/resize"
	"github.com/v0xg/resultfetch/internal/page"
	"go.uber.org/zap"
)

// Capturer writes the challenge image, or the whole page, to a file
type Capturer struct {
	// Scale enlarges element captures so small images are legible. Values
	// at or below 1 leave the capture untouched.
	Scale  float64
	logger *zap.Logger
}

// NewCapturer creates a Capturer
func NewCapturer(scale float64, logger *zap.Logger) *Capturer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Capturer{Scale: scale, logger: logger}
}

// Capture writes an image to dest and returns dest. With a ref it captures the
// element, falling back to the full page if that fails; without one it
// captures the full page. An error means nothing usable was written.
func (c *Capturer) Capture(p page.Page, ref *Ref, dest string) (string, error) {
	if ref != nil {
		err := ref.Element.Screenshot(dest)
		if err == nil {
			if c.Scale > 1 {
				if err := Enlarge(dest, c.Scale); err != nil {
					c.logger.Warn("challenge enlarge failed, keeping raw capture", zap.String("path", dest), zap.Error(err))
				}
			}
			return dest, nil
		}
		c.logger.Warn("element capture failed, capturing full page",
			zap.String("src", ref.Source), zap.Error(err))
	}

	if err := p.Screenshot(dest); err != nil {
		return "", fmt.Errorf("capture %s: %w", dest, err)
	}
	return dest, nil
}

// Enlarge rescales the PNG at path in place
func Enlarge(path string, scale float64) error {
	if scale <= 1 {
		return errors.New("scale must be greater than 1")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	img, err := png.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	bounds := img.Bounds()
	width := uint(float64(bounds.Dx()) * scale)
	height := uint(float64(bounds.Dy()) * scale)
	resized := resize.Resize(width, height, img, resize.Lanczos3)

	return writePNG(path, resized)
}

// writePNG replaces path only once the new image is fully encoded
func writePNG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	_ = tmp.Chmod(0o644)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
