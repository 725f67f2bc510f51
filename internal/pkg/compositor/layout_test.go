package compositor

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlanStacked checks width = W1, height = H1 + round(W1*H2/W2)
func TestPlanStacked(t *testing.T) {
	tests := []struct {
		name       string
		orig, gen  image.Point
		wantCanvas image.Point
		wantGen    image.Rectangle
	}{
		{
			name:       "landscape original, square generated",
			orig:       image.Pt(1000, 800),
			gen:        image.Pt(512, 512),
			wantCanvas: image.Pt(1000, 1800),
			wantGen:    image.Rect(0, 800, 1000, 1800),
		},
		{
			name:       "same aspect ratio, smaller generated",
			orig:       image.Pt(640, 480),
			gen:        image.Pt(320, 240),
			wantCanvas: image.Pt(640, 960),
			wantGen:    image.Rect(0, 480, 640, 960),
		},
		{
			name:       "rounding of scaled height",
			orig:       image.Pt(640, 480),
			gen:        image.Pt(300, 200),
			wantCanvas: image.Pt(640, 907),
			wantGen:    image.Rect(0, 480, 640, 907),
		},
		{
			name:       "portrait original keeps native size",
			orig:       image.Pt(600, 900),
			gen:        image.Pt(1024, 1024),
			wantCanvas: image.Pt(600, 1500),
			wantGen:    image.Rect(0, 900, 600, 1500),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlanStacked(tt.orig, tt.gen)

			assert.Equal(t, Vertical, p.Direction)
			assert.Equal(t, tt.wantCanvas, p.Canvas)
			assert.Equal(t, image.Rect(0, 0, tt.orig.X, tt.orig.Y), p.Original)
			assert.Equal(t, tt.wantGen, p.Generated)
		})
	}
}

func TestPlanAdaptive(t *testing.T) {
	tests := []struct {
		name          string
		orig, gen     image.Point
		wantDirection Direction
		wantCanvas    image.Point
		wantOriginal  image.Rectangle
		wantGenerated image.Rectangle
	}{
		{
			name:          "landscape joins horizontally at the smaller height",
			orig:          image.Pt(1000, 800),
			gen:           image.Pt(512, 512),
			wantDirection: Horizontal,
			wantCanvas:    image.Pt(1152, 512),
			wantOriginal:  image.Rect(0, 0, 640, 512),
			wantGenerated: image.Rect(640, 0, 1152, 512),
		},
		{
			name:          "square counts as landscape",
			orig:          image.Pt(400, 400),
			gen:           image.Pt(800, 600),
			wantDirection: Horizontal,
			wantCanvas:    image.Pt(933, 400),
			wantOriginal:  image.Rect(0, 0, 400, 400),
			wantGenerated: image.Rect(400, 0, 933, 400),
		},
		{
			name:          "portrait stacks at the smaller width",
			orig:          image.Pt(600, 900),
			gen:           image.Pt(512, 512),
			wantDirection: Vertical,
			wantCanvas:    image.Pt(512, 1280),
			wantOriginal:  image.Rect(0, 0, 512, 768),
			wantGenerated: image.Rect(0, 768, 512, 1280),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PlanAdaptive(tt.orig, tt.gen)

			assert.Equal(t, tt.wantDirection, p.Direction)
			assert.Equal(t, tt.wantCanvas, p.Canvas)
			assert.Equal(t, tt.wantOriginal, p.Original)
			assert.Equal(t, tt.wantGenerated, p.Generated)
		})
	}
}

func TestParseLayout(t *testing.T) {
	l, err := ParseLayout("")
	require.NoError(t, err)
	assert.Equal(t, LayoutStacked, l)

	l, err = ParseLayout(" Adaptive ")
	require.NoError(t, err)
	assert.Equal(t, LayoutAdaptive, l)

	_, err = ParseLayout("diagonal")
	assert.Error(t, err)
}

func TestScaleNeverZero(t *testing.T) {
	assert.Equal(t, 1, scale(1, 1, 1000))
	assert.Equal(t, 1, scale(5, 5, 0))
	assert.Equal(t, 427, scale(200, 640, 300))
}
