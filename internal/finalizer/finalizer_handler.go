package finalizer

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aegira/internal/shared/apperror"
	"aegira/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("finalizer.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("finalizer.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("sweep request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// TriggerYesterdaySweep force-runs the previous-day sweep. The clock gate is
// bypassed; the per-worker safeguards are not.
func (h *Handler) TriggerYesterdaySweep(c *gin.Context) {
	h.logger.Info("manual yesterday sweep triggered", zap.String("actor_id", c.GetString("worker_id")))

	res, err := h.service.RunYesterdaySweep(c.Request.Context(), time.Now().UTC(), true)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) TriggerShiftEndSweep(c *gin.Context) {
	h.logger.Info("manual shift end sweep triggered", zap.String("actor_id", c.GetString("worker_id")))

	res, err := h.service.RunShiftEndSweep(c.Request.Context(), time.Now().UTC(), true)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
