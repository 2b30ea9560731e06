package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rdic-api/internal/dto"
	"github.com/noah-isme/rdic-api/internal/models"
	"github.com/noah-isme/rdic-api/internal/workflow"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
)

const (
	maxPageSize   = 200
	maxListOffset = 1000000
)

type reportStore interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	Count(ctx context.Context, filter models.ReportFilter) (int, error)
	Save(ctx context.Context, report *models.Report, entry *models.ReportTransition) error
	ListTransitions(ctx context.Context, reportID string) ([]models.ReportTransition, error)
}

// ReportWorkflowService is the only entry point for reading and moving RDIC
// reports. Every read passes the visibility filter and every write goes
// through the transition engine.
type ReportWorkflowService struct {
	store     reportStore
	validator *validator.Validate
	logger    *zap.Logger
	cache     *CacheService
	cacheTTL  time.Duration
	metrics   *MetricsService
	pdf       reportRenderer
	csv       datasetRenderer
	listLimit int
	now       func() time.Time
}

// ReportWorkflowOption configures the service.
type ReportWorkflowOption func(*ReportWorkflowService)

// WithReportCache caches published reports, which never change again.
func WithReportCache(cache *CacheService, ttl time.Duration) ReportWorkflowOption {
	return func(s *ReportWorkflowService) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithReportMetrics records transitions, rejections and store latency.
func WithReportMetrics(metrics *MetricsService) ReportWorkflowOption {
	return func(s *ReportWorkflowService) {
		s.metrics = metrics
	}
}

// WithReportListLimit sets the default page size for listings.
func WithReportListLimit(limit int) ReportWorkflowOption {
	return func(s *ReportWorkflowService) {
		if limit > 0 {
			s.listLimit = limit
		}
	}
}

// WithReportClock overrides the time source.
func WithReportClock(now func() time.Time) ReportWorkflowOption {
	return func(s *ReportWorkflowService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReportWorkflowService constructs the service with defaults.
func NewReportWorkflowService(store reportStore, validate *validator.Validate, logger *zap.Logger, opts ...ReportWorkflowOption) *ReportWorkflowService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReportWorkflowService{
		store:     store,
		validator: validate,
		logger:    logger,
		listLimit: 50,
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Create opens a new DRAFT report authored by actor.
func (s *ReportWorkflowService) Create(ctx context.Context, req dto.CreateReportRequest, actor models.Actor) (*dto.ReportView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report payload")
	}
	scopeID := strings.TrimSpace(req.ScopeID)
	if err := workflow.AuthorizeCreate(actor, scopeID); err != nil {
		return nil, err
	}
	report := &models.Report{
		SubjectID:    strings.TrimSpace(req.SubjectID),
		ScopeID:      scopeID,
		Period:       strings.TrimSpace(req.Period),
		Status:       models.ReportStatusDraft,
		DraftPayload: payloadFromRaw(req.DraftPayload),
		CreatedBy:    actor.UserID,
		CreatedAt:    s.now().UTC(),
	}
	if report.DraftPayload == nil {
		report.DraftPayload = models.Payload(`{}`)
	}
	start := time.Now()
	err := s.store.Create(ctx, report)
	s.metrics.ObserveDBQuery("reports.create", time.Since(start))
	if err != nil {
		return nil, storeError(err, "failed to create report")
	}
	s.logger.Info("report created",
		zap.String("report_id", report.ID),
		zap.String("scope_id", report.ScopeID),
		zap.String("period", report.Period),
		zap.String("actor_id", actor.UserID),
	)
	return s.view(*report, actor), nil
}

// ApplyAction loads the report, checks the caller may see it and may fire the
// action, runs the transition and persists the result.
func (s *ReportWorkflowService) ApplyAction(ctx context.Context, id string, req dto.ApplyActionRequest, actor models.Actor) (*dto.ReportView, error) {
	action := models.ReportAction(strings.ToUpper(strings.TrimSpace(string(req.Action))))
	view, err := s.applyAction(ctx, id, action, req, actor)
	if err != nil {
		s.metrics.RecordRejection(action, appErrors.FromError(err).Code)
		return nil, err
	}
	return view, nil
}

func (s *ReportWorkflowService) applyAction(ctx context.Context, id string, action models.ReportAction, req dto.ApplyActionRequest, actor models.Actor) (*dto.ReportView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid action payload")
	}
	if !action.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported action "+string(action))
	}
	visibility, err := workflow.ScopeFor(actor)
	if err != nil {
		return nil, err
	}

	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.Allows(*report) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report is outside your visibility")
	}
	if err := workflow.Authorize(actor.Role, action); err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != report.Version {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report has changed since it was read")
	}

	next, entry, err := workflow.Apply(*report, workflow.Command{
		Action:  action,
		Actor:   actor,
		Payload: payloadFromRaw(req.Payload),
	}, s.now())
	if err != nil {
		return nil, err
	}

	start := time.Now()
	err = s.store.Save(ctx, &next, &entry)
	s.metrics.ObserveDBQuery("reports.save", time.Since(start))
	if err != nil {
		return nil, storeError(err, "failed to save report")
	}

	s.metrics.RecordTransition(action, entry.FromStatus, entry.ToStatus)
	s.logger.Info("report transition applied",
		zap.String("report_id", next.ID),
		zap.String("action", string(action)),
		zap.String("from", string(entry.FromStatus)),
		zap.String("to", string(entry.ToStatus)),
		zap.String("actor_id", actor.UserID),
		zap.String("actor_role", string(actor.Role)),
	)
	if next.Status == models.ReportStatusPublished {
		s.cachePublished(ctx, next)
	}
	return s.view(next, actor), nil
}

// Get returns one report if the actor's role and scope allow it.
func (s *ReportWorkflowService) Get(ctx context.Context, id string, actor models.Actor) (*dto.ReportView, error) {
	visibility, err := workflow.ScopeFor(actor)
	if err != nil {
		return nil, err
	}
	report, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibility.Allows(*report) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report is outside your visibility")
	}
	return s.view(*report, actor), nil
}

// List returns the reports visible to actor that match query, newest first.
func (s *ReportWorkflowService) List(ctx context.Context, query dto.ReportQuery, actor models.Actor) ([]dto.ReportView, *models.Pagination, error) {
	visibility, err := workflow.ScopeFor(actor)
	if err != nil {
		return nil, nil, err
	}
	reports, pagination, err := s.query(ctx, query, visibility)
	if err != nil {
		return nil, nil, err
	}
	views := make([]dto.ReportView, 0, len(reports))
	for _, r := range reports {
		if !visibility.Allows(r) {
			s.logger.Error("store returned a report outside the visibility filter", zap.String("report_id", r.ID))
			continue
		}
		views = append(views, *s.view(r, actor))
	}
	return views, pagination, nil
}

// ListSummaries returns status badges. Authors see every status of their own
// reports here, but only as a badge: no payloads are exposed.
func (s *ReportWorkflowService) ListSummaries(ctx context.Context, query dto.ReportQuery, actor models.Actor) ([]dto.ReportSummary, *models.Pagination, error) {
	visibility, err := workflow.BadgeScopeFor(actor)
	if err != nil {
		return nil, nil, err
	}
	reports, pagination, err := s.query(ctx, query, visibility)
	if err != nil {
		return nil, nil, err
	}
	summaries := make([]dto.ReportSummary, 0, len(reports))
	for _, r := range reports {
		if !visibility.Allows(r) {
			continue
		}
		summaries = append(summaries, dto.ReportSummary{
			ID:        r.ID,
			SubjectID: r.SubjectID,
			ScopeID:   r.ScopeID,
			Period:    r.Period,
			Status:    r.Status,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return summaries, pagination, nil
}

// History returns the audit trail of a report with the same access rules as Get.
func (s *ReportWorkflowService) History(ctx context.Context, id string, actor models.Actor) (*dto.ReportHistory, error) {
	if _, err := s.Get(ctx, id, actor); err != nil {
		return nil, err
	}
	start := time.Now()
	entries, err := s.store.ListTransitions(ctx, id)
	s.metrics.ObserveDBQuery("report_transitions.list", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report history")
	}
	if entries == nil {
		entries = []models.ReportTransition{}
	}
	return &dto.ReportHistory{ReportID: id, Transitions: entries}, nil
}

func (s *ReportWorkflowService) query(ctx context.Context, query dto.ReportQuery, visibility workflow.Visibility) ([]models.Report, *models.Pagination, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size <= 0 {
		size = s.listLimit
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page > maxListOffset/size {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "page is out of range")
	}
	pagination := &models.Pagination{Page: page, PageSize: size}

	filter, ok := visibility.Narrow(models.ReportFilter{
		ScopeIDs:  query.ScopeIDs,
		Statuses:  query.Statuses,
		SubjectID: strings.TrimSpace(query.SubjectID),
		Period:    strings.TrimSpace(query.Period),
		Limit:     size,
		Offset:    (page - 1) * size,
	})
	if !ok {
		return []models.Report{}, pagination, nil
	}

	start := time.Now()
	reports, err := s.store.List(ctx, filter)
	s.metrics.ObserveDBQuery("reports.list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list reports")
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count reports")
	}
	pagination.TotalCount = total
	return reports, pagination, nil
}

// lookup serves published reports from cache before falling back to the store.
func (s *ReportWorkflowService) lookup(ctx context.Context, id string) (*models.Report, error) {
	if s.cache.Enabled() {
		var cached models.Report
		if hit, err := s.cache.Get(ctx, ReportCacheKey(id), &cached); err == nil && hit {
			if cached.Status == models.ReportStatusPublished {
				return &cached, nil
			}
			if err := s.cache.Invalidate(ctx, ReportCacheKey(id)); err != nil {
				s.logger.Debug("drop stale report cache entry", zap.String("report_id", id), zap.Error(err))
			}
		}
	}
	report, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.Status == models.ReportStatusPublished {
		s.cachePublished(ctx, *report)
	}
	return report, nil
}

func (s *ReportWorkflowService) load(ctx context.Context, id string) (*models.Report, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
	}
	start := time.Now()
	report, err := s.store.GetByID(ctx, id)
	s.metrics.ObserveDBQuery("reports.get", time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report")
	}
	return report, nil
}

func (s *ReportWorkflowService) cachePublished(ctx context.Context, report models.Report) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.Set(ctx, ReportCacheKey(report.ID), report, s.cacheTTL); err != nil {
		s.logger.Debug("cache published report", zap.String("report_id", report.ID), zap.Error(err))
	}
}

func (s *ReportWorkflowService) view(report models.Report, actor models.Actor) *dto.ReportView {
	actions := workflow.AllowedActions(actor.Role, report.Status)
	return &dto.ReportView{Report: report, AllowedActions: actions}
}

// storeError keeps typed store rejections (validation, conflict) and wraps the rest.
func storeError(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// payloadFromRaw treats an absent or literal null payload as no payload.
func payloadFromRaw(raw json.RawMessage) models.Payload {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return models.Payload(trimmed)
}
