package notification

import (
	"log/slog"
	"net/http"

	"pipenotify/internal/common"

	"github.com/gin-gonic/gin"
)

const idempotencyKeyHeader = "Idempotency-Key"

// Handler handles HTTP requests for the pipeline notification domain.
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	common.Success(c, http.StatusOK, h.service.Status())
}

// GetPipeline handles GET /api/v1/pipeline
func (h *Handler) GetPipeline(c *gin.Context) {
	common.Success(c, http.StatusOK, h.service.Pipeline())
}

// GetStage handles GET /api/v1/stages/:name
func (h *Handler) GetStage(c *gin.Context) {
	stage, err := h.service.GetStage(c.Param("name"))
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, stage)
}

// Dispatch handles POST /api/v1/stages/:name/dispatch
// Enqueues the stage for async delivery and returns 202 Accepted.
func (h *Handler) Dispatch(c *gin.Context) {
	name := c.Param("name")
	key := c.GetHeader(idempotencyKeyHeader)

	resp, err := h.service.Dispatch(c.Request.Context(), name, key)
	if err != nil {
		slog.Error("dispatch stage failed",
			"error", err,
			"stage", name,
			"request_id", c.GetString(common.RequestIDKey),
		)
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusAccepted, resp)
}

// ListDeliveries handles GET /api/v1/deliveries
func (h *Handler) ListDeliveries(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		common.Error(c, http.StatusBadRequest, "invalid query parameters: "+err.Error())
		return
	}

	resp, err := h.service.ListDeliveries(c.Request.Context(), filter)
	if err != nil {
		common.HandleError(c, err)
		return
	}

	common.Success(c, http.StatusOK, resp)
}

// RegisterRoutes registers notification routes to the given router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pipeline", h.GetPipeline)
	rg.GET("/stages/:name", h.GetStage)
	rg.POST("/stages/:name/dispatch", h.Dispatch)
	rg.GET("/deliveries", h.ListDeliveries)
}
