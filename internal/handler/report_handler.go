package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rdic-api/internal/dto"
	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
	"github.com/noah-isme/rdic-api/pkg/response"
)

type reportWorkflowService interface {
	Create(ctx context.Context, req dto.CreateReportRequest, actor models.Actor) (*dto.ReportView, error)
	ApplyAction(ctx context.Context, id string, req dto.ApplyActionRequest, actor models.Actor) (*dto.ReportView, error)
	Get(ctx context.Context, id string, actor models.Actor) (*dto.ReportView, error)
	List(ctx context.Context, query dto.ReportQuery, actor models.Actor) ([]dto.ReportView, *models.Pagination, error)
	ListSummaries(ctx context.Context, query dto.ReportQuery, actor models.Actor) ([]dto.ReportSummary, *models.Pagination, error)
	History(ctx context.Context, id string, actor models.Actor) (*dto.ReportHistory, error)
	ExportPDF(ctx context.Context, id string, actor models.Actor) ([]byte, string, error)
	ExportCSV(ctx context.Context, query dto.ReportQuery, actor models.Actor) ([]byte, error)
}

// ReportHandler exposes the RDIC workflow over REST.
type ReportHandler struct {
	service reportWorkflowService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportWorkflowService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Register mounts the report routes on rg.
func (h *ReportHandler) Register(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	reports.POST("", h.Create)
	reports.GET("", h.List)
	reports.GET("/summaries", h.ListSummaries)
	reports.GET("/export.csv", h.ExportCSV)
	reports.GET("/:id", h.Get)
	reports.GET("/:id/history", h.History)
	reports.GET("/:id/export.pdf", h.ExportPDF)
	reports.POST("/:id/actions", h.ApplyAction)
}

func (h *ReportHandler) actor(c *gin.Context) (models.Actor, bool) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "report service not configured"))
		return models.Actor{}, false
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Actor{}, false
	}
	return claims.Actor(), true
}

// Create godoc
// @Summary Open a draft report
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.CreateReportRequest true "Report payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /reports [post]
func (h *ReportHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid report payload"))
		return
	}
	view, err := h.service.Create(c.Request.Context(), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// List godoc
// @Summary List visible reports
// @Tags Reports
// @Produce json
// @Param scope query string false "Comma separated scope ids"
// @Param status query string false "Comma separated statuses"
// @Param subjectId query string false "Child id"
// @Param period query string false "Period label"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /reports [get]
func (h *ReportHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	query, err := parseReportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	views, pagination, err := h.service.List(c.Request.Context(), query, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, pagination)
}

// ListSummaries godoc
// @Summary List report status badges
// @Tags Reports
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param period query string false "Period label"
// @Success 200 {object} response.Envelope
// @Router /reports/summaries [get]
func (h *ReportHandler) ListSummaries(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	query, err := parseReportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.ListSummaries(c.Request.Context(), query, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get report detail
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/{id} [get]
func (h *ReportHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// History godoc
// @Summary Get report transition history
// @Tags Reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} response.Envelope
// @Router /reports/{id}/history [get]
func (h *ReportHandler) History(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	history, err := h.service.History(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// ApplyAction godoc
// @Summary Apply a workflow action
// @Description SUBMIT, RETURN_TO_AUTHOR, EDIT, FINALIZE or PUBLISH.
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param payload body dto.ApplyActionRequest true "Action"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /reports/{id}/actions [post]
func (h *ReportHandler) ApplyAction(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req dto.ApplyActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid action payload"))
		return
	}
	view, err := h.service.ApplyAction(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ExportPDF godoc
// @Summary Download a published report as PDF
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Report ID"
// @Success 200 {file} binary
// @Router /reports/{id}/export.pdf [get]
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	out, filename, err := h.service.ExportPDF(c.Request.Context(), c.Param("id"), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "application/pdf", filename, out)
}

// ExportCSV godoc
// @Summary Download visible report statuses as CSV
// @Tags Reports
// @Produce text/csv
// @Param status query string false "Comma separated statuses"
// @Success 200 {file} binary
// @Router /reports/export.csv [get]
func (h *ReportHandler) ExportCSV(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	query, err := parseReportQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	out, err := h.service.ExportCSV(c.Request.Context(), query, actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, "text/csv; charset=utf-8", "rdic-reports.csv", out)
}

func parseReportQuery(c *gin.Context) (dto.ReportQuery, error) {
	query := dto.ReportQuery{
		ScopeIDs:  splitQueryList(c.Query("scope")),
		SubjectID: strings.TrimSpace(c.Query("subjectId")),
		Period:    strings.TrimSpace(c.Query("period")),
	}
	for _, raw := range splitQueryList(c.Query("status")) {
		status := models.ReportStatus(strings.ToUpper(raw))
		if !status.IsValid() {
			return dto.ReportQuery{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", raw))
		}
		query.Statuses = append(query.Statuses, status)
	}
	var err error
	if query.Page, err = optionalInt(c.Query("page")); err != nil {
		return dto.ReportQuery{}, appErrors.Clone(appErrors.ErrValidation, "page must be a positive integer")
	}
	if query.PageSize, err = optionalInt(c.Query("pageSize")); err != nil {
		return dto.ReportQuery{}, appErrors.Clone(appErrors.ErrValidation, "pageSize must be a positive integer")
	}
	return query, nil
}

func splitQueryList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	return v, nil
}
