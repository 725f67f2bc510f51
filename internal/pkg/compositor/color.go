package compositor

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

const (
	histogramLevels = 16
	sampleEdge      = 64
)

// DominantColor returns the mean color of the most populated bin of a
// 16-levels-per-channel RGB histogram. Ties go to the lowest bin index. An
// empty image yields opaque black.
func DominantColor(img image.Image) color.NRGBA {
	const bins = histogramLevels * histogramLevels * histogramLevels

	counts := make([]int, bins)
	sums := make([][3]int, bins)

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			i := int(c.R>>4)<<8 | int(c.G>>4)<<4 | int(c.B>>4)
			counts[i]++
			sums[i][0] += int(c.R)
			sums[i][1] += int(c.G)
			sums[i][2] += int(c.B)
		}
	}

	best := -1
	for i, n := range counts {
		if n > 0 && (best < 0 || n > counts[best]) {
			best = i
		}
	}
	if best < 0 {
		return color.NRGBA{A: 0xff}
	}

	n := counts[best]
	return color.NRGBA{
		R: uint8(sums[best][0] / n),
		G: uint8(sums[best][1] / n),
		B: uint8(sums[best][2] / n),
		A: 0xff,
	}
}

// sampleDominant runs DominantColor over a bounded nearest-neighbour
// thumbnail so large generated images cost the same as small ones.
func sampleDominant(img image.Image) color.NRGBA {
	return DominantColor(imaging.Fit(img, sampleEdge, sampleEdge, imaging.NearestNeighbor))
}
