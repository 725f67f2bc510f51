package service

import (
	"context"
	"mime/multipart"

	"github.com/sundai-club/climatime-machine/internal/entity"
	"github.com/sundai-club/climatime-machine/internal/pkg/compositor"
	"github.com/sundai-club/climatime-machine/internal/pkg/scenario"
)

type TransformService interface {
	Transform(ctx context.Context, file *multipart.FileHeader) (*entity.TransformResult, error)
	Merge(ctx context.Context, original, generated []byte, title string) ([]byte, error)
	Scenario(description string) entity.ScenarioResponse
	Scenarios() []scenario.Entry
}

// Compositor is satisfied by *compositor.Compositor.
type Compositor interface {
	Merge(original, generated []byte, title string) ([]byte, error)
	Layout() compositor.Layout
}
