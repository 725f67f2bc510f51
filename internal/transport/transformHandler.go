package transport

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sundai-club/climatime-machine/internal/entity"
)

// multipartOverhead leaves room for boundaries and text fields around the
// files themselves.
const multipartOverhead = 1 << 20

func (h *TransformHandler) Transform(c *gin.Context) {
	h.limitBody(c, 1)

	file, err := c.FormFile("image")
	if err != nil {
		h.fail(c, formError(err))
		return
	}
	if err := h.validate(file); err != nil {
		h.fail(c, err)
		return
	}

	result, err := h.service.Transform(c.Request.Context(), file)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.TransformResponse{
		ID:             result.ID,
		Caption:        result.Caption,
		GeneratedImage: base64.StdEncoding.EncodeToString(result.GeneratedImage),
		MergedImage:    base64.StdEncoding.EncodeToString(result.MergedImage),
		MimeType:       result.GeneratedMIME,
		Layout:         result.Layout,
	})
}

func (h *TransformHandler) Merge(c *gin.Context) {
	h.limitBody(c, 2)

	original, err := h.readFormFile(c, "original")
	if err != nil {
		h.fail(c, err)
		return
	}
	generated, err := h.readFormFile(c, "generated")
	if err != nil {
		h.fail(c, err)
		return
	}

	merged, err := h.service.Merge(c.Request.Context(), original, generated, c.PostForm("title"))
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Data(http.StatusOK, "image/jpeg", merged)
}

func (h *TransformHandler) Scenarios(c *gin.Context) {
	description := strings.TrimSpace(c.Query("description"))
	if description == "" {
		c.JSON(http.StatusOK, gin.H{"scenarios": h.service.Scenarios()})
		return
	}
	c.JSON(http.StatusOK, h.service.Scenario(description))
}

func (h *TransformHandler) limitBody(c *gin.Context, files int64) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, files*h.maxBytes+multipartOverhead)
}

// validate checks the declared part headers before any bytes are read.
func (h *TransformHandler) validate(file *multipart.FileHeader) error {
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return fmt.Errorf("%w: declared %q", entity.ErrUnsupportedType, contentType)
	}
	if file.Size > h.maxBytes {
		return fmt.Errorf("%w: limit is %d bytes", entity.ErrFileTooLarge, h.maxBytes)
	}
	return nil
}

func (h *TransformHandler) readFormFile(c *gin.Context, field string) ([]byte, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, formError(err))
	}
	if err := h.validate(file); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(io.LimitReader(src, h.maxBytes))
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return entity.ErrFileTooLarge
	}
	return entity.ErrNoFile
}

func (h *TransformHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.FullPath()).Error("Request pipeline failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, entity.ErrNoFile), errors.Is(err, entity.ErrUnsupportedType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
