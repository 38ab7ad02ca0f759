package holiday

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"aegira/internal/authz"
	"aegira/internal/shared/apperror"
	"aegira/internal/shared/response"
)

// CapabilityResolver maps the authenticated worker onto capability flags.
type CapabilityResolver interface {
	Resolve(ctx context.Context, companyID, workerID string) (authz.Context, error)
}

type Handler struct {
	service      Service
	capabilities CapabilityResolver
	logger       *zap.Logger
}

func NewHandler(service Service, capabilities CapabilityResolver, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("holiday.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.handler")
	}
	return &Handler{service: service, capabilities: capabilities, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) resolveActor(c *gin.Context) (authz.Context, bool) {
	companyID := c.GetString("company_id")
	workerID := c.GetString("worker_id")

	actor, err := h.capabilities.Resolve(c.Request.Context(), companyID, workerID)
	if err != nil {
		h.writeServiceError(c, err)
		return authz.Context{}, false
	}
	return actor, true
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Input tidak valid", err.Error())
		return
	}

	actor, ok := h.resolveActor(c)
	if !ok {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), c.GetString("company_id"), actor, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	actor, ok := h.resolveActor(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.GetString("company_id"), actor, c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	rows, err := h.service.GetAll(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, rows, nil)
}
