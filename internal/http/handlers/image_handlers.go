package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/phambaophuc/dali/internal/apperror"
	"github.com/phambaophuc/dali/internal/http/middleware"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/phambaophuc/dali/internal/services/coordinator"
	"go.uber.org/zap"
)

// ImageService runs one parsed image request.
type ImageService interface {
	Handle(ctx context.Context, req *models.ImageRequest) (*coordinator.Result, error)
}

type ImageHandler struct {
	service ImageService
	policy  models.ValidationPolicy
	logger  *zap.Logger
}

func NewImageHandler(service ImageService, policy models.ValidationPolicy, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		service: service,
		policy:  policy,
		logger:  logger,
	}
}

// ProcessImage decodes the bracketed query string, runs the pipeline and
// writes the encoded image.
func (h *ImageHandler) ProcessImage(c *gin.Context) {
	req, err := models.ParseImageRequest(c.Request.URL.Query(), h.policy)
	if err != nil {
		h.respondError(c, err)
		return
	}

	h.logger.Debug("Processing image",
		zap.String("reference", req.Source),
		zap.String("format", string(req.Format)),
		zap.Int("watermarks", len(req.Watermarks)),
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
	)

	result, err := h.service.Handle(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	header := c.Writer.Header()
	for key, values := range result.Headers {
		header[key] = values
	}
	c.Data(http.StatusOK, result.ContentType, result.Body)
}

func (h *ImageHandler) respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		h.logger.Info("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	response := models.APIResponse{Success: false, Error: "Internal server error"}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		response.Error = appErr.Message
		response.Kind = string(appErr.Kind)
	}
	c.JSON(status, response)
}
