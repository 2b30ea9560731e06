package service

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rdic-api/internal/models"
)

func TestMetricsServiceCountsTransitions(t *testing.T) {
	m := NewMetricsService()
	m.RecordTransition(models.ReportActionSubmit, models.ReportStatusDraft, models.ReportStatusInReview)
	m.RecordTransition(models.ReportActionSubmit, models.ReportStatusDraft, models.ReportStatusInReview)
	m.RecordRejection(models.ReportActionPublish, "INVALID_TRANSITION")

	require.Equal(t, float64(2), testutil.ToFloat64(m.transitions.WithLabelValues("SUBMIT", "DRAFT", "IN_REVIEW")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.rejections.WithLabelValues("PUBLISH", "INVALID_TRANSITION")))

	snap := m.Snapshot()
	require.Equal(t, uint64(2), snap.TransitionsApplied)
	require.Equal(t, uint64(1), snap.TransitionsRejected)
}

func TestMetricsServiceBoundsRejectionLabels(t *testing.T) {
	m := NewMetricsService()
	svc := newTestWorkflowService(newMemoryReportStore(), WithReportMetrics(m))
	created := createDraft(t, svc, testTeacher, "class-a")

	for i := 0; i < 50; i++ {
		_, err := act(svc, created.ID, models.ReportAction(fmt.Sprintf("junk-%d", i)), testTeacher, "")
		require.Error(t, err)
	}
	_, err := act(svc, created.ID, models.ReportAction(strings.Repeat("x", 200)), testTeacher, "")
	require.Error(t, err)

	require.Equal(t, 1, testutil.CollectAndCount(m.rejections))
	require.Equal(t, float64(51), testutil.ToFloat64(m.rejections.WithLabelValues("UNKNOWN", "VALIDATION_ERROR")))
	require.Equal(t, uint64(51), m.Snapshot().TransitionsRejected)
}

func TestMetricsServiceSnapshotAverages(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/reports", 200, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/reports", 200, 30*time.Millisecond)
	m.ObserveDBQuery("reports.list", 4*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)

	snap := m.Snapshot()
	require.Equal(t, uint64(2), snap.RequestsTotal)
	require.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	require.Equal(t, uint64(1), snap.DBQueryCount)
	require.InDelta(t, 0.5, snap.CacheHitRatio, 0.001)
}

func TestMetricsServiceHandler(t *testing.T) {
	m := NewMetricsService()
	m.RecordTransition(models.ReportActionPublish, models.ReportStatusFinalized, models.ReportStatusPublished)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "rdic_report_transitions_total"))

	var nilMetrics *MetricsService
	nilMetrics.RecordTransition(models.ReportActionPublish, models.ReportStatusFinalized, models.ReportStatusPublished)
	rec = httptest.NewRecorder()
	nilMetrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
