package summary

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aegira/internal/shared/apperror"
	"aegira/internal/shared/dateutil"
	"aegira/internal/shared/response"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("summary.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("summary.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("summary request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetTeamDay(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	teamID := c.Param("teamId")
	date := c.DefaultQuery("date", dateutil.Key(time.Now().UTC()))

	resp, err := h.service.GetByTeamAndDate(ctx, companyID, teamID, date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetCompanyDay(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	date := c.DefaultQuery("date", dateutil.Key(time.Now().UTC()))

	resp, err := h.service.GetByCompanyAndDate(ctx, companyID, date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Recompute(c *gin.Context) {
	companyID := c.GetString("company_id")

	var req BulkRecomputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http recompute summaries validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.BulkRecompute(c.Request.Context(), companyID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
