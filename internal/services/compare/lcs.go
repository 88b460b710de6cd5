package compare

import (
	"encoding/binary"
	"hash/fnv"
	"image"
	"image/draw"
)

// DefaultRate is the blend factor applied to rows outside the longest
// common subsequence.
const DefaultRate = 100.0 / 256.0

// maxRowEdits bounds the edit distance the row matcher explores. Beyond it
// the two images share too little structure for subsequence alignment to
// mean anything, and the matcher falls back to positional comparison.
const maxRowEdits = 1024

// LcsDiff renders the new image with every row that is not part of the
// longest common row subsequence against the old image blended toward the
// marker color at the given rate. Rows are compared by exact pixel equality.
func LcsDiff(newImg, oldImg image.Image, rate float64) *image.RGBA {
	newHashes := rowHashes(newImg)
	oldHashes := rowHashes(oldImg)

	newCommon, _, ok := lcsMembership(newHashes, oldHashes)
	if !ok {
		newCommon, _ = positionalMembership(newHashes, oldHashes)
	}

	bounds := newImg.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), newImg, bounds.Min, draw.Src)

	for y := 0; y < bounds.Dy(); y++ {
		if y < len(newCommon) && newCommon[y] {
			continue
		}
		blendRow(out, y, rate)
	}

	return out
}

// blendRow mixes every pixel of one row toward the marker color.
func blendRow(img *image.RGBA, y int, rate float64) {
	bounds := img.Bounds()
	for x := 0; x < bounds.Dx(); x++ {
		c := img.RGBAAt(x, y)
		c.R = uint8(float64(c.R)*(1-rate) + float64(markerColor.R)*rate)
		c.G = uint8(float64(c.G)*(1-rate) + float64(markerColor.G)*rate)
		c.B = uint8(float64(c.B)*(1-rate) + float64(markerColor.B)*rate)
		img.SetRGBA(x, y, c)
	}
}

// rowHashes digests each pixel row so rows compare in O(1).
func rowHashes(img image.Image) []uint64 {
	bounds := img.Bounds()
	hashes := make([]uint64, bounds.Dy())
	var buf [8]byte

	for y := 0; y < bounds.Dy(); y++ {
		h := fnv.New64a()
		for x := 0; x < bounds.Dx(); x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			binary.BigEndian.PutUint16(buf[0:2], uint16(r))
			binary.BigEndian.PutUint16(buf[2:4], uint16(g))
			binary.BigEndian.PutUint16(buf[4:6], uint16(b))
			binary.BigEndian.PutUint16(buf[6:8], uint16(a))
			h.Write(buf[:])
		}
		hashes[y] = h.Sum64()
	}

	return hashes
}

// lcsMembership marks, for each row of a and b, whether the row belongs to
// the longest common subsequence of the two row sequences. Uses the Myers
// O(ND) diff; returns ok=false when the edit distance exceeds maxRowEdits.
func lcsMembership(a, b []uint64) (aCommon, bCommon []bool, ok bool) {
	n, m := len(a), len(b)
	aCommon = make([]bool, n)
	bCommon = make([]bool, m)

	limit := n + m
	if limit > maxRowEdits {
		limit = maxRowEdits
	}

	offset := limit + 1
	v := make([]int, 2*limit+3)
	var trace [][]int

	found := -1
	for d := 0; d <= limit && found < 0; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k
			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x
			if x >= n && y >= m {
				found = d
				break
			}
		}
	}

	if found < 0 {
		return nil, nil, false
	}

	// Backtrack, marking every diagonal move as a common row.
	x, y := n, m
	for d := found; d > 0; d-- {
		prev := trace[d]
		k := x - y
		var prevK int
		if k == -d || (k != d && prev[offset+k-1] < prev[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := prev[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			aCommon[x-1] = true
			bCommon[y-1] = true
			x--
			y--
		}
		x, y = prevX, prevY
	}
	for x > 0 && y > 0 {
		aCommon[x-1] = true
		bCommon[y-1] = true
		x--
		y--
	}

	return aCommon, bCommon, true
}

// positionalMembership is the degenerate alignment: row i matches row i.
func positionalMembership(a, b []uint64) (aCommon, bCommon []bool) {
	aCommon = make([]bool, len(a))
	bCommon = make([]bool, len(b))

	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			aCommon[i] = true
			bCommon[i] = true
		}
	}
	return aCommon, bCommon
}
