package debug

import (
	"image"
	"image/color"

	"github.com/Faultbox/terrainstream/internal/heightfield"
)

// HeightImage maps a grid onto 8-bit gray, Min black and Max white. A
// flat grid comes out mid-gray.
func HeightImage(g *heightfield.Grid) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, g.Width, g.Height))
	span := g.Max - g.Min
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			v := uint8(128)
			if span > 0 {
				v = uint8((g.At(x, y)-g.Min)/span*255 + 0.5)
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}
