// Package debug writes viewer captures and height previews to PNG files.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Capture names and writes PNG files into one directory.
type Capture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewCapture creates a capture writing prefix_<timestamp>.png files into
// outputDir. An empty outputDir means the working directory.
func NewCapture(outputDir, prefix string) *Capture {
	return &Capture{outputDir: outputDir, prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture will be written to.
func (c *Capture) Filename() string {
	name := fmt.Sprintf("%s_%s.png", c.prefix, c.now().Format("2006-01-02_15-04-05.000"))
	if c.outputDir != "" {
		name = filepath.Join(c.outputDir, name)
	}
	return name
}

// SavePixels writes bottom-up RGBA rows, as glReadPixels returns them,
// as a top-down PNG.
func (c *Capture) SavePixels(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return c.SaveImage(img)
}

// SaveImage writes img and returns its path.
func (c *Capture) SaveImage(img image.Image) (string, error) {
	if c.outputDir != "" {
		if err := os.MkdirAll(c.outputDir, 0o755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	name := c.Filename()
	return name, WritePNG(name, img)
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}
