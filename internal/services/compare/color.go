package compare

import (
	"image"
	"image/color"
	"image/draw"
)

// markerColor paints changed pixels in the per-pixel diff overlay.
var markerColor = color.RGBA{G: 255, A: 255}

// ColorDiff renders the new image with every pixel that differs from the old
// image replaced by the marker color. Both images must share dimensions.
func ColorDiff(newImg, oldImg image.Image) *image.RGBA {
	bounds := newImg.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), newImg, bounds.Min, draw.Src)

	oldBounds := oldImg.Bounds()
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			nr, ng, nb, na := newImg.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			or, og, ob, oa := oldImg.At(oldBounds.Min.X+x, oldBounds.Min.Y+y).RGBA()
			if nr != or || ng != og || nb != ob || na != oa {
				out.SetRGBA(x, y, markerColor)
			}
		}
	}

	return out
}
