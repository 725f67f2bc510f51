package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	defaultModel   = "gemini-2.5-flash-image"
	defaultTimeout = 90 * time.Second
)

type GeminiOptions struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  *logrus.Entry
}

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type connectFunc func(ctx context.Context, apiKey string) (contentGenerator, error)

// Gemini generates the climate image with a Gemini image model.
type Gemini struct {
	apiKey  string
	model   string
	timeout time.Duration
	log     *logrus.Entry
	connect connectFunc
}

func NewGemini(opts GeminiOptions) *Gemini {
	model := strings.TrimPrefix(strings.TrimSpace(opts.Model), "models/")
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Gemini{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		timeout: timeout,
		log:     logger.WithFields(logrus.Fields{"component": "generator", "model": model}),
		connect: connectGenAI,
	}
}

func connectGenAI(ctx context.Context, apiKey string) (contentGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

func (g *Gemini) Model() string {
	return g.model
}

func (g *Gemini) Generate(ctx context.Context, req Request) (*Generation, error) {
	if g.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("%w: empty input image", ErrGenerationFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	models, err := g.connect(ctx, g.apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: create genai client: %w", ErrGenerationFailed, err)
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			genai.NewPartFromText(Instruction()),
			genai.NewPartFromBytes(req.Image, req.MIMEType),
		},
	}}

	start := time.Now()
	resp, err := models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	gen, err := Collect(responseParts(resp))
	if err != nil {
		g.log.WithField("candidates", len(resp.Candidates)).Warn("response carried no inline image")
		return nil, err
	}

	g.log.WithFields(logrus.Fields{
		"duration":    time.Since(start),
		"image_bytes": len(gen.Image),
		"mime_type":   gen.MIMEType,
		"caption":     gen.Caption,
	}).Info("image generated")

	return gen, nil
}

// responseParts flattens every candidate's parts in order.
func responseParts(resp *genai.GenerateContentResponse) []Part {
	if resp == nil {
		return nil
	}
	var parts []Part
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, p := range candidate.Content.Parts {
			if p == nil {
				continue
			}
			part := Part{Text: p.Text}
			if p.InlineData != nil {
				part.Data = p.InlineData.Data
				part.MIMEType = p.InlineData.MIMEType
			}
			parts = append(parts, part)
		}
	}
	return parts
}
