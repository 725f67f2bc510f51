package compositor

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// Layout selects how the two images are joined and how the banner is styled.
type Layout string

const (
	// LayoutStacked keeps the original at native size and stacks the
	// generated image below it, scaled to the original's width. The banner
	// sits on the seam with a background sampled from the generated image.
	LayoutStacked Layout = "stacked"
	// LayoutAdaptive joins side by side for landscape originals and stacked
	// for portrait ones, scaling both to the smaller shared edge. The banner
	// sits at the top with a fixed gradient.
	LayoutAdaptive Layout = "adaptive"
)

func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutStacked, "":
		return LayoutStacked, nil
	case LayoutAdaptive:
		return LayoutAdaptive, nil
	default:
		return "", fmt.Errorf("unknown layout %q", s)
	}
}

type Direction string

const (
	Horizontal Direction = "horizontal"
	Vertical   Direction = "vertical"
)

// Plan is the layout decision for a single merge: the canvas size and the
// rectangle each source is scaled into.
type Plan struct {
	Direction Direction
	Canvas    image.Point
	Original  image.Rectangle
	Generated image.Rectangle
}

// PlanStacked computes the stacked layout for an original of size orig and a
// generated image of size gen.
func PlanStacked(orig, gen image.Point) Plan {
	genH := scale(gen.Y, orig.X, gen.X)
	return Plan{
		Direction: Vertical,
		Canvas:    image.Pt(orig.X, orig.Y+genH),
		Original:  image.Rect(0, 0, orig.X, orig.Y),
		Generated: image.Rect(0, orig.Y, orig.X, orig.Y+genH),
	}
}

// PlanAdaptive computes the adaptive layout: horizontal when the original is
// at least as wide as it is tall, vertical otherwise.
func PlanAdaptive(orig, gen image.Point) Plan {
	if orig.X >= orig.Y {
		h := min(orig.Y, gen.Y)
		ow := scale(orig.X, h, orig.Y)
		gw := scale(gen.X, h, gen.Y)
		return Plan{
			Direction: Horizontal,
			Canvas:    image.Pt(ow+gw, h),
			Original:  image.Rect(0, 0, ow, h),
			Generated: image.Rect(ow, 0, ow+gw, h),
		}
	}

	w := min(orig.X, gen.X)
	oh := scale(orig.Y, w, orig.X)
	gh := scale(gen.Y, w, gen.X)
	return Plan{
		Direction: Vertical,
		Canvas:    image.Pt(w, oh+gh),
		Original:  image.Rect(0, 0, w, oh),
		Generated: image.Rect(0, oh, w, oh+gh),
	}
}

func (l Layout) plan(orig, gen image.Point) Plan {
	if l == LayoutAdaptive {
		return PlanAdaptive(orig, gen)
	}
	return PlanStacked(orig, gen)
}

// scale returns round(n*num/den), never less than 1.
func scale(n, num, den int) int {
	if den == 0 {
		return 1
	}
	v := int(math.Round(float64(n) * float64(num) / float64(den)))
	if v < 1 {
		return 1
	}
	return v
}

// fitInto resizes img to exactly the size of r.
func fitInto(img image.Image, r image.Rectangle) image.Image {
	b := img.Bounds()
	if b.Dx() == r.Dx() && b.Dy() == r.Dy() {
		return img
	}
	return imaging.Resize(img, r.Dx(), r.Dy(), imaging.Lanczos)
}

// render pastes both sources onto a fresh canvas following p.
func (p Plan) render(original, generated image.Image) (*image.NRGBA, image.Image) {
	canvas := imaging.New(p.Canvas.X, p.Canvas.Y, color.Black)
	scaledGen := fitInto(generated, p.Generated)
	canvas = imaging.Paste(canvas, fitInto(original, p.Original), p.Original.Min)
	canvas = imaging.Paste(canvas, scaledGen, p.Generated.Min)
	return canvas, scaledGen
}
