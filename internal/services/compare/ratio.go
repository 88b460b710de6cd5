package compare

import (
	"image"
)

// DiffRatio measures how different two decoded images are: the number of
// pixel positions whose RGBA values differ, divided by the area of the
// bounding rectangle covering both. Positions outside either image count as
// differing, so a size change alone raises the ratio.
func DiffRatio(a, b image.Image) float64 {
	aBounds := a.Bounds()
	bBounds := b.Bounds()

	maxW := aBounds.Dx()
	if bBounds.Dx() > maxW {
		maxW = bBounds.Dx()
	}
	maxH := aBounds.Dy()
	if bBounds.Dy() > maxH {
		maxH = bBounds.Dy()
	}
	if maxW == 0 || maxH == 0 {
		return 0
	}

	differing := 0
	for y := 0; y < maxH; y++ {
		for x := 0; x < maxW; x++ {
			inA := x < aBounds.Dx() && y < aBounds.Dy()
			inB := x < bBounds.Dx() && y < bBounds.Dy()
			if !inA || !inB {
				differing++
				continue
			}
			ar, ag, ab2, aa := a.At(aBounds.Min.X+x, aBounds.Min.Y+y).RGBA()
			br, bg, bb, ba := b.At(bBounds.Min.X+x, bBounds.Min.Y+y).RGBA()
			if ar != br || ag != bg || ab2 != bb || aa != ba {
				differing++
			}
		}
	}

	return float64(differing) / float64(maxW*maxH)
}
