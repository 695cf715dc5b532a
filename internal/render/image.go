package render

import (
	"image"
	"image/draw"
)

// FlipVertical converts img to RGBA with the bottom row first, the order GL
// samples textures in. Rows are drawn straight into their flipped position
// so only one RGBA buffer is allocated.
func FlipVertical(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	flipped := image.NewRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		row := image.Rect(0, h-1-y, w, h-y)
		draw.Draw(flipped, row, img, image.Pt(bounds.Min.X, bounds.Min.Y+y), draw.Src)
	}
	return flipped
}
