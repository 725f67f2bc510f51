package compositor

import (
	"fmt"
	"image"
	"image/color"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	stackedMaxFont  = 120
	stackedMinFont  = 48
	adaptiveMaxFont = 48
	adaptiveMinFont = 24

	stackedOpacity = 0.75
	shadowOpacity  = 0.6
)

var gradientStops = []color.NRGBA{
	{R: 0xff, G: 0x00, B: 0x00, A: 0xff}, // red
	{R: 0xff, G: 0xa5, B: 0x00, A: 0xff}, // orange
	{R: 0xff, G: 0xff, B: 0x00, A: 0xff}, // yellow
}

// BannerSpec holds everything needed to draw one banner.
type BannerSpec struct {
	Text       string
	FontSize   int
	Padding    int
	Top        int
	Height     int
	Background image.Image
	Opacity    float64
}

// StackedFontSize is min(width/8, 120), discounted for long titles and
// floored at 48.
func StackedFontSize(width, titleLen int) int {
	size := min(width/8, stackedMaxFont)
	switch {
	case titleLen > 30:
		size = int(float64(size) * 0.8)
	case titleLen > 20:
		size = int(float64(size) * 0.9)
	}
	return max(size, stackedMinFont)
}

// AdaptiveFontSize is max(24, min(width/20, 48)).
func AdaptiveFontSize(width int) int {
	return max(adaptiveMinFont, min(width/20, adaptiveMaxFont))
}

// bannerFor derives the banner for text on a canvas laid out by p.
// generated is the scaled generated image, used for color sampling.
func (l Layout) bannerFor(text string, p Plan, generated image.Image) BannerSpec {
	width := p.Canvas.X

	if l == LayoutAdaptive {
		size := AdaptiveFontSize(width)
		pad := size / 2
		h := size + 2*pad
		return BannerSpec{
			Text:       text,
			FontSize:   size,
			Padding:    pad,
			Top:        0,
			Height:     h,
			Background: Gradient(width, h, gradientStops),
			Opacity:    1,
		}
	}

	size := StackedFontSize(width, utf8.RuneCountInString(text))
	pad := max(size/6, 8)
	h := size + 2*pad
	return BannerSpec{
		Text:       text,
		FontSize:   size,
		Padding:    pad,
		Top:        p.Generated.Min.Y,
		Height:     h,
		Background: imaging.New(width, h, sampleDominant(generated)),
		Opacity:    stackedOpacity,
	}
}

// Gradient builds a width x height image whose columns interpolate evenly
// across stops from left to right.
func Gradient(width, height int, stops []color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	if len(stops) == 0 || width <= 0 || height <= 0 {
		return img
	}

	for x := 0; x < width; x++ {
		c := stops[0]
		if len(stops) > 1 && width > 1 {
			t := float64(x) / float64(width-1) * float64(len(stops)-1)
			i := min(int(t), len(stops)-2)
			c = lerp(stops[i], stops[i+1], t-float64(i))
		}
		for y := 0; y < height; y++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// drawBanner returns a copy of canvas with the banner background, a blurred drop
// shadow and centered white text.
func drawBanner(canvas *image.NRGBA, f *opentype.Font, bs BannerSpec) (*image.NRGBA, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(bs.FontSize),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face: %w", err)
	}
	defer face.Close()

	width := canvas.Bounds().Dx()
	out := imaging.Overlay(canvas, bs.Background, image.Pt(0, bs.Top), bs.Opacity)

	textW := font.MeasureString(face, bs.Text).Ceil()
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	x := (width - textW) / 2
	baseline := (bs.Height-(ascent+descent))/2 + ascent

	offset := max(2, bs.FontSize/24)
	shadow := image.NewNRGBA(image.Rect(0, 0, width, bs.Height))
	(&font.Drawer{
		Dst:  shadow,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.P(x+offset, baseline+offset),
	}).DrawString(bs.Text)
	blurred := imaging.Blur(shadow, float64(offset))
	out = imaging.Overlay(out, blurred, image.Pt(0, bs.Top), shadowOpacity)

	(&font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(x, bs.Top+baseline),
	}).DrawString(bs.Text)

	return out, nil
}
