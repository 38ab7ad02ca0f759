package checkin

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
	l := zap.L().Named("checkin.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("checkin.handler")
	}
	return &Handler{service: service, logger: l}
}

func getActorID(c *gin.Context) string {
	actorID := c.GetString("worker_id")
	if actorID == "" {
		actorID = c.GetString("user_id_validated")
	}
	return actorID
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("checkin request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Submit(c *gin.Context) {
	companyID := c.GetString("company_id")
	actorID := getActorID(c)
	h.logger.Debug("http submit checkin", zap.String("company_id", companyID), zap.String("worker_id", actorID))

	var req SubmitCheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http submit checkin validation failed", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), companyID, actorID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetMine(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	actorID := getActorID(c)
	date := c.DefaultQuery("date", dateutil.Key(time.Now().UTC()))

	resp, err := h.service.GetMineByDate(ctx, companyID, actorID, date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetTeam(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	teamID := c.Param("teamId")
	date := c.DefaultQuery("date", dateutil.Key(time.Now().UTC()))

	resp, err := h.service.GetTeamByDate(ctx, companyID, teamID, date)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
