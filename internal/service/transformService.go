package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sundai-club/climatime-machine/internal/entity"
	"github.com/sundai-club/climatime-machine/internal/pkg/generator"
	"github.com/sundai-club/climatime-machine/internal/pkg/kafka"
	"github.com/sundai-club/climatime-machine/internal/pkg/scenario"
	"github.com/sundai-club/climatime-machine/internal/pkg/storage"
)

type transformService struct {
	storage    storage.FileStorage
	generator  generator.Generator
	compositor Compositor
	producer   kafka.Producer
	maxBytes   int64
	log        *logrus.Entry
}

func NewTransformService(
	store storage.FileStorage,
	gen generator.Generator,
	comp Compositor,
	producer kafka.Producer,
	maxBytes int64,
	logger *logrus.Entry,
) TransformService {
	return &transformService{
		storage:    store,
		generator:  gen,
		compositor: comp,
		producer:   producer,
		maxBytes:   maxBytes,
		log:        logger.WithField("component", "transform"),
	}
}

func (s *transformService) Transform(ctx context.Context, file *multipart.FileHeader) (*entity.TransformResult, error) {
	start := time.Now()

	data, mime, err := s.readUpload(file)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"id": id, "filename": file.Filename})

	name := storage.StageName(mime.Extension())
	if err := s.storage.Save(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("stage upload: %w", err)
	}
	defer func() {
		if err := s.storage.Delete(name); err != nil && s.storage.Exists(name) {
			log.WithError(err).WithField("staged", name).Warn("Failed to remove staged upload")
		}
	}()

	staged, err := s.readStaged(name)
	if err != nil {
		return nil, err
	}

	gen, err := s.generator.Generate(ctx, generator.Request{Image: staged, MIMEType: mime.String()})
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}

	merged, err := s.compositor.Merge(staged, gen.Image, gen.Caption)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}

	result := &entity.TransformResult{
		ID:             id,
		Caption:        gen.Caption,
		GeneratedImage: gen.Image,
		GeneratedMIME:  gen.MIMEType,
		MergedImage:    merged,
		Layout:         string(s.compositor.Layout()),
	}

	s.publish(ctx, entity.TransformEvent{
		ID:             id,
		Filename:       file.Filename,
		UploadMIME:     mime.String(),
		UploadBytes:    int64(len(data)),
		Caption:        result.Caption,
		Layout:         result.Layout,
		GeneratedBytes: len(result.GeneratedImage),
		MergedBytes:    len(result.MergedImage),
		DurationMS:     time.Since(start).Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	})

	log.WithFields(logrus.Fields{
		"caption":  result.Caption,
		"duration": time.Since(start),
	}).Info("Transform completed")

	return result, nil
}

func (s *transformService) Merge(ctx context.Context, original, generated []byte, title string) ([]byte, error) {
	for _, data := range [][]byte{original, generated} {
		if len(data) == 0 {
			return nil, entity.ErrNoFile
		}
		if int64(len(data)) > s.maxBytes {
			return nil, entity.ErrFileTooLarge
		}
		if _, err := sniffImage(data); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged, err := s.compositor.Merge(original, generated, title)
	if err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return merged, nil
}

func (s *transformService) Scenario(description string) entity.ScenarioResponse {
	return entity.ScenarioResponse{
		Description: description,
		Scenario:    scenario.Map(description),
	}
}

func (s *transformService) Scenarios() []scenario.Entry {
	return scenario.Table()
}

// readUpload reads at most maxBytes+1 bytes so an oversized body is detected
// even when the declared size is wrong.
func (s *transformService) readUpload(file *multipart.FileHeader) ([]byte, *mimetype.MIME, error) {
	if file == nil {
		return nil, nil, entity.ErrNoFile
	}
	if file.Size > s.maxBytes {
		return nil, nil, entity.ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, nil, entity.ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, nil, entity.ErrNoFile
	}

	mime, err := sniffImage(data)
	if err != nil {
		return nil, nil, err
	}
	return data, mime, nil
}

func (s *transformService) readStaged(name string) ([]byte, error) {
	rc, err := s.storage.Get(name)
	if err != nil {
		return nil, fmt.Errorf("open staged upload: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read staged upload: %w", err)
	}
	return data, nil
}

func (s *transformService) publish(ctx context.Context, event entity.TransformEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.SendMessage(context.WithoutCancel(ctx), event.ID, event); err != nil {
		s.log.WithError(err).WithField("id", event.ID).Warn("Failed to publish transform event")
	}
}

func sniffImage(data []byte) (*mimetype.MIME, error) {
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return nil, fmt.Errorf("%w: detected %s", entity.ErrUnsupportedType, mime.String())
	}
	return mime, nil
}
