// Package generator is the boundary to the external image model: it submits
// the uploaded photo with a fixed instruction and returns the altered image
// and caption.
package generator

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// DefaultCaption is used when the model does not return a TITLE line.
const DefaultCaption = "Climate Time Machine"

var (
	ErrMissingAPIKey    = errors.New("gemini api key is not configured")
	ErrGenerationFailed = errors.New("image generation failed")
	ErrNoImageGenerated = errors.New("model returned no image")
)

type Request struct {
	Image    []byte
	MIMEType string
}

type Generation struct {
	Image    []byte
	MIMEType string
	Caption  string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (*Generation, error)
}

// Part is one piece of a model response: either text or inline image data.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

var titlePattern = regexp.MustCompile(`(?i)TITLE:[ \t]*([^\r\n]+)`)

// ExtractTitle returns the text following the first "TITLE:" marker on the
// same line, trimmed of whitespace, quotes and markdown emphasis.
func ExtractTitle(text string) (string, bool) {
	m := titlePattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	title := strings.Trim(strings.TrimSpace(m[1]), "*_\"'` ")
	if title == "" {
		return "", false
	}
	return title, true
}

// Collect picks the first inline image and the first extractable title from
// parts, in order. A missing title falls back to DefaultCaption; a missing
// image is ErrNoImageGenerated.
func Collect(parts []Part) (*Generation, error) {
	gen := &Generation{}
	for _, p := range parts {
		if len(p.Data) > 0 && gen.Image == nil {
			gen.Image = p.Data
			gen.MIMEType = p.MIMEType
			continue
		}
		if p.Text != "" && gen.Caption == "" {
			if title, ok := ExtractTitle(p.Text); ok {
				gen.Caption = title
			}
		}
	}

	if gen.Image == nil {
		return nil, ErrNoImageGenerated
	}
	if gen.MIMEType == "" {
		gen.MIMEType = "image/png"
	}
	if gen.Caption == "" {
		gen.Caption = DefaultCaption
	}
	return gen, nil
}
