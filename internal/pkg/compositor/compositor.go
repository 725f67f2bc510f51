// Package compositor joins an original photo and its generated counterpart
// into one before/after image and burns a caption banner into it.
package compositor

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	_ "golang.org/x/image/webp"
)

const (
	DefaultQuality = 90

	// DefaultMaxPixels bounds every decoded source and the merged canvas.
	DefaultMaxPixels = 40_000_000

	// maxSide is the largest edge the JPEG encoder accepts.
	maxSide = 1<<16 - 1
)

var (
	ErrMergeFailed   = errors.New("merge failed")
	ErrOverlayFailed = errors.New("overlay failed")
	ErrImageTooLarge = errors.New("image exceeds pixel budget")
)

type Options struct {
	Layout    Layout
	Quality   int
	MaxPixels int
	Logger    *logrus.Entry
}

// Compositor is safe for concurrent use; it holds only read-only state.
type Compositor struct {
	layout    Layout
	quality   int
	maxPixels int
	font      *opentype.Font
	log       *logrus.Entry
}

func New(opts Options) (*Compositor, error) {
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse banner font: %w", err)
	}

	layout := opts.Layout
	if layout == "" {
		layout = LayoutStacked
	}
	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}
	maxPixels := opts.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Compositor{
		layout:    layout,
		quality:   quality,
		maxPixels: maxPixels,
		font:      f,
		log:       logger.WithField("component", "compositor"),
	}, nil
}

func (c *Compositor) Layout() Layout {
	return c.layout
}

// Merge decodes both images, joins them according to the configured layout,
// draws the banner when title is non-empty after sanitizing, and encodes the
// result as JPEG.
func (c *Compositor) Merge(original, generated []byte, title string) ([]byte, error) {
	orig, err := c.decode(original)
	if err != nil {
		return nil, fmt.Errorf("%w: decode original image: %w", ErrMergeFailed, err)
	}
	gen, err := c.decode(generated)
	if err != nil {
		return nil, fmt.Errorf("%w: decode generated image: %w", ErrMergeFailed, err)
	}

	canvas, err := c.Render(orig, gen, title)
	if err != nil {
		if errors.Is(err, ErrImageTooLarge) {
			return nil, fmt.Errorf("%w: %w", ErrMergeFailed, err)
		}
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(c.quality)); err != nil {
		return nil, fmt.Errorf("%w: encode jpeg: %w", ErrMergeFailed, err)
	}

	c.log.WithFields(logrus.Fields{
		"width":  canvas.Bounds().Dx(),
		"height": canvas.Bounds().Dy(),
		"bytes":  buf.Len(),
		"banner": SanitizeTitle(title) != "",
	}).Debug("images merged")

	return buf.Bytes(), nil
}

// Render is Merge without the codec steps.
func (c *Compositor) Render(original, generated image.Image, title string) (*image.NRGBA, error) {
	canvas, plan, scaledGen, err := c.Compose(original, generated)
	if err != nil {
		return nil, err
	}

	text := SanitizeTitle(title)
	if text == "" {
		return canvas, nil
	}

	bs := c.layout.bannerFor(text, plan, scaledGen)
	out, err := drawBanner(canvas, c.font, bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOverlayFailed, err)
	}
	return out, nil
}

// Compose joins the two images without any banner and reports the plan it
// used together with the scaled generated image. Plans whose canvas exceeds
// the pixel budget are rejected with ErrImageTooLarge before allocating.
func (c *Compositor) Compose(original, generated image.Image) (*image.NRGBA, Plan, image.Image, error) {
	plan := c.layout.plan(original.Bounds().Size(), generated.Bounds().Size())
	if err := c.checkSize(plan.Canvas); err != nil {
		return nil, plan, nil, fmt.Errorf("canvas: %w", err)
	}
	canvas, scaledGen := plan.render(original, generated)
	return canvas, plan, scaledGen, nil
}

func (c *Compositor) checkSize(size image.Point) error {
	if size.X > maxSide || size.Y > maxSide {
		return fmt.Errorf("%w: %dx%d exceeds %d px per side", ErrImageTooLarge, size.X, size.Y, maxSide)
	}
	if int64(size.X)*int64(size.Y) > int64(c.maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, size.X, size.Y, c.maxPixels)
	}
	return nil
}

// decode reads the header first so oversized images are refused before
// their pixels are allocated.
func (c *Compositor) decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := c.checkSize(image.Pt(cfg.Width, cfg.Height)); err != nil {
		return nil, err
	}
	return imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
}
