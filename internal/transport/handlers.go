package transport

import (
	"github.com/sirupsen/logrus"

	"github.com/sundai-club/climatime-machine/internal/service"
)

type TransformHandler struct {
	service  service.TransformService
	maxBytes int64
	log      *logrus.Entry
}

func NewTransformHandler(service service.TransformService, maxBytes int64, logger *logrus.Entry) *TransformHandler {
	return &TransformHandler{
		service:  service,
		maxBytes: maxBytes,
		log:      logger.WithField("component", "transport"),
	}
}
