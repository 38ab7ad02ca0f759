package grading

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
	l := zap.L().Named("grading.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("grading.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("grading request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

// defaultRange is the trailing 14 calendar days ending yesterday: today is
// still in flight and would drag every score down.
func defaultRange() (string, string) {
	end := time.Now().UTC().AddDate(0, 0, -1)
	start := end.AddDate(0, 0, -13)
	return dateutil.Key(start), dateutil.Key(end)
}

func (h *Handler) GetTeamGrade(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	teamID := c.Param("teamId")

	defStart, defEnd := defaultRange()
	start := c.DefaultQuery("start_date", defStart)
	end := c.DefaultQuery("end_date", defEnd)

	resp, err := h.service.TeamGrade(ctx, companyID, teamID, start, end)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

// GetMyReport scores the authenticated worker over the requested range.
func (h *Handler) GetMyReport(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")
	workerID := c.GetString("worker_id")

	defStart, defEnd := defaultRange()
	start := c.DefaultQuery("start_date", defStart)
	end := c.DefaultQuery("end_date", defEnd)

	resp, err := h.service.WorkerReport(ctx, companyID, workerID, start, end)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetCompanyGrades(c *gin.Context) {
	ctx := c.Request.Context()
	companyID := c.GetString("company_id")

	defStart, defEnd := defaultRange()
	start := c.DefaultQuery("start_date", defStart)
	end := c.DefaultQuery("end_date", defEnd)

	resp, err := h.service.CompanyGrades(ctx, companyID, start, end)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
