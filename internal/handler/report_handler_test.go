package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rdic-api/internal/dto"
	"github.com/noah-isme/rdic-api/internal/middleware"
	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
)

type reportServiceMock struct {
	view       *dto.ReportView
	views      []dto.ReportView
	summaries  []dto.ReportSummary
	history    *dto.ReportHistory
	pdf        []byte
	csv        []byte
	err        error
	lastID     string
	lastQuery  dto.ReportQuery
	lastAction dto.ApplyActionRequest
	lastCreate dto.CreateReportRequest
	lastActor  models.Actor
}

func (m *reportServiceMock) Create(_ context.Context, req dto.CreateReportRequest, actor models.Actor) (*dto.ReportView, error) {
	m.lastCreate, m.lastActor = req, actor
	return m.view, m.err
}

func (m *reportServiceMock) ApplyAction(_ context.Context, id string, req dto.ApplyActionRequest, actor models.Actor) (*dto.ReportView, error) {
	m.lastID, m.lastAction, m.lastActor = id, req, actor
	return m.view, m.err
}

func (m *reportServiceMock) Get(_ context.Context, id string, actor models.Actor) (*dto.ReportView, error) {
	m.lastID, m.lastActor = id, actor
	return m.view, m.err
}

func (m *reportServiceMock) List(_ context.Context, query dto.ReportQuery, actor models.Actor) ([]dto.ReportView, *models.Pagination, error) {
	m.lastQuery, m.lastActor = query, actor
	return m.views, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(m.views)}, m.err
}

func (m *reportServiceMock) ListSummaries(_ context.Context, query dto.ReportQuery, actor models.Actor) ([]dto.ReportSummary, *models.Pagination, error) {
	m.lastQuery, m.lastActor = query, actor
	return m.summaries, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(m.summaries)}, m.err
}

func (m *reportServiceMock) History(_ context.Context, id string, actor models.Actor) (*dto.ReportHistory, error) {
	m.lastID, m.lastActor = id, actor
	return m.history, m.err
}

func (m *reportServiceMock) ExportPDF(_ context.Context, id string, actor models.Actor) ([]byte, string, error) {
	m.lastID, m.lastActor = id, actor
	return m.pdf, "rdic-2024-B1-child-1.pdf", m.err
}

func (m *reportServiceMock) ExportCSV(_ context.Context, query dto.ReportQuery, actor models.Actor) ([]byte, error) {
	m.lastQuery, m.lastActor = query, actor
	return m.csv, m.err
}

var coordinatorClaims = &models.JWTClaims{UserID: "coord-1", Role: models.RoleCoordinator, Scopes: []string{"class-a"}}

func newReportRouter(svc *reportServiceMock, claims *models.JWTClaims) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	})
	NewReportHandler(svc).Register(r.Group("/api/v1"))
	return r
}

func TestReportHandlerApplyAction(t *testing.T) {
	svc := &reportServiceMock{view: &dto.ReportView{
		Report:         models.Report{ID: "report-1", Status: models.ReportStatusFinalized},
		AllowedActions: []models.ReportAction{models.ReportActionPublish},
	}}
	r := newReportRouter(svc, coordinatorClaims)

	body := bytes.NewBufferString(`{"action":"FINALIZE","payload":{"observations":"ok"},"version":3}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/report-1/actions", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "report-1", svc.lastID)
	assert.Equal(t, models.ReportActionFinalize, svc.lastAction.Action)
	assert.JSONEq(t, `{"observations":"ok"}`, string(svc.lastAction.Payload))
	require.NotNil(t, svc.lastAction.Version)
	assert.Equal(t, 3, *svc.lastAction.Version)
	assert.Equal(t, []string{"class-a"}, svc.lastActor.Scopes)

	var envelope struct {
		Data struct {
			ID             string   `json:"id"`
			Status         string   `json:"status"`
			AllowedActions []string `json:"allowedActions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "FINALIZED", envelope.Data.Status)
	assert.Equal(t, []string{"PUBLISH"}, envelope.Data.AllowedActions)
}

func TestReportHandlerMapsErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{appErrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{appErrors.Clone(appErrors.ErrForbidden, "no"), http.StatusForbidden, "FORBIDDEN"},
		{appErrors.Clone(appErrors.ErrInvalidTransition, "cannot publish a report in status DRAFT"), http.StatusConflict, "INVALID_TRANSITION"},
		{appErrors.Clone(appErrors.ErrConflict, "stale"), http.StatusConflict, "CONFLICT"},
		{appErrors.Clone(appErrors.ErrValidation, "bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
	}
	for _, tc := range cases {
		svc := &reportServiceMock{err: tc.err}
		r := newReportRouter(svc, coordinatorClaims)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/report-1/actions", bytes.NewBufferString(`{"action":"PUBLISH"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, tc.status, w.Code, tc.code)
		var envelope struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.Equal(t, tc.code, envelope.Error.Code)
	}
}

func TestReportHandlerRejectsMalformedBody(t *testing.T) {
	svc := &reportServiceMock{}
	r := newReportRouter(svc, coordinatorClaims)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewBufferString(`{"subjectId":`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.lastCreate.SubjectID)
}

func TestReportHandlerCreate(t *testing.T) {
	svc := &reportServiceMock{view: &dto.ReportView{Report: models.Report{ID: "report-9", Status: models.ReportStatusDraft}}}
	r := newReportRouter(svc, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher, Scopes: []string{"class-a"}})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports", bytes.NewBufferString(`{"subjectId":"child-1","scopeId":"class-a","period":"2024-B1"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "class-a", svc.lastCreate.ScopeID)
	assert.Equal(t, models.RoleTeacher, svc.lastActor.Role)
}

func TestReportHandlerRequiresClaims(t *testing.T) {
	r := newReportRouter(&reportServiceMock{}, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestReportHandlerListParsesQuery(t *testing.T) {
	svc := &reportServiceMock{views: []dto.ReportView{{Report: models.Report{ID: "report-1"}}}}
	r := newReportRouter(svc, coordinatorClaims)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?status=draft,IN_REVIEW&scope=class-a&page=2&pageSize=10&period=2024-B1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.ReportStatus{models.ReportStatusDraft, models.ReportStatusInReview}, svc.lastQuery.Statuses)
	assert.Equal(t, []string{"class-a"}, svc.lastQuery.ScopeIDs)
	assert.Equal(t, 2, svc.lastQuery.Page)
	assert.Equal(t, 10, svc.lastQuery.PageSize)
	assert.Equal(t, "2024-B1", svc.lastQuery.Period)

	var envelope struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Pagination.TotalCount)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?status=ARCHIVED", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports?page=zero", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportHandlerStaticRoutes(t *testing.T) {
	svc := &reportServiceMock{
		summaries: []dto.ReportSummary{{ID: "report-1", Status: models.ReportStatusPublished}},
		history:   &dto.ReportHistory{ReportID: "report-1"},
		pdf:       []byte("%PDF-1.3"),
		csv:       []byte("ID\nreport-1\n"),
	}
	r := newReportRouter(svc, coordinatorClaims)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/summaries", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/report-1/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "report-1", svc.lastID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/report-1/export.pdf", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "rdic-2024-B1-child-1.pdf")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/reports/export.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ID\nreport-1\n", w.Body.String())
}
