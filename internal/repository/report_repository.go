package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
)

const reportColumns = `id, subject_id, scope_id, period, status, draft_payload, final_payload, created_by, reviewed_by,
       created_at, finalized_at, published_at, updated_at, version`

// ReportRepository persists RDIC reports and their transition log.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs the repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report with generated defaults.
func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := validateNewReport(report); err != nil {
		return err
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.Status == "" {
		report.Status = models.ReportStatusDraft
	}
	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	report.Version = 1

	const query = `INSERT INTO reports
	(id, subject_id, scope_id, period, status, draft_payload, final_payload, created_by, reviewed_by, created_at, finalized_at, published_at, updated_at, version)
	VALUES (:id, :subject_id, :scope_id, :period, :status, :draft_payload, :final_payload, :created_by, :reviewed_by, :created_at, :finalized_at, :published_at, :updated_at, :version)`
	if _, err := r.db.NamedExecContext(ctx, query, report); err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	return nil
}

func validateNewReport(report *models.Report) error {
	if report == nil {
		return appErrors.Clone(appErrors.ErrValidation, "report is required")
	}
	missing := make([]string, 0, 4)
	if strings.TrimSpace(report.SubjectID) == "" {
		missing = append(missing, "subjectId")
	}
	if strings.TrimSpace(report.ScopeID) == "" {
		missing = append(missing, "scopeId")
	}
	if strings.TrimSpace(report.Period) == "" {
		missing = append(missing, "period")
	}
	if strings.TrimSpace(report.CreatedBy) == "" {
		missing = append(missing, "createdBy")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if report.Status != "" && report.Status != models.ReportStatusDraft {
		return appErrors.Clone(appErrors.ErrValidation, "new reports start as DRAFT")
	}
	if report.DraftPayload != nil && !report.DraftPayload.IsObject() {
		return appErrors.Clone(appErrors.ErrValidation, "draft payload must be a JSON object")
	}
	if report.FinalPayload != nil {
		return appErrors.Clone(appErrors.ErrValidation, "final payload is set by finalize only")
	}
	return nil
}

// GetByID fetches a report by identifier. Missing rows surface as sql.ErrNoRows.
func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	var report models.Report
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		return nil, err
	}
	return &report, nil
}

func reportWhere(filter models.ReportFilter) (string, []interface{}) {
	args := make([]interface{}, 0, 5)
	conditions := make([]string, 0, 5)
	if len(filter.ScopeIDs) > 0 {
		args = append(args, pq.Array(filter.ScopeIDs))
		conditions = append(conditions, fmt.Sprintf("scope_id = ANY($%d)", len(args)))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		args = append(args, pq.Array(statuses))
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if filter.Period != "" {
		args = append(args, filter.Period)
		conditions = append(conditions, fmt.Sprintf("period = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns reports matching the filter, newest first.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	where, args := reportWhere(filter)

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM reports%s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`, reportColumns, where, limit, offset)

	var reports []models.Report
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Count returns how many reports match the filter, ignoring paging.
func (r *ReportRepository) Count(ctx context.Context, filter models.ReportFilter) (int, error) {
	where, args := reportWhere(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM reports"+where, args...); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return total, nil
}

// Save replaces the mutable columns of report and appends entry to the
// transition log in one transaction. The write only lands when the stored
// version still equals report.Version; otherwise ErrConflict is returned.
// On success report.Version is advanced.
func (r *ReportRepository) Save(ctx context.Context, report *models.Report, entry *models.ReportTransition) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin report transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const updateQuery = `UPDATE reports SET status = $1, draft_payload = $2, final_payload = $3, reviewed_by = $4,
       finalized_at = $5, published_at = $6, updated_at = $7, version = version + 1
	WHERE id = $8 AND version = $9`
	result, err := tx.ExecContext(ctx, updateQuery,
		report.Status, report.DraftPayload, report.FinalPayload, report.ReviewedBy,
		report.FinalizedAt, report.PublishedAt, report.UpdatedAt,
		report.ID, report.Version,
	)
	if err != nil {
		return fmt.Errorf("update report: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check report update rows: %w", err)
	}
	if rows == 0 {
		err = appErrors.Clone(appErrors.ErrConflict, "report was modified concurrently, reload and retry")
		return err
	}

	if entry != nil {
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.ReportID == "" {
			entry.ReportID = report.ID
		}
		const insertQuery = `INSERT INTO report_transitions (id, report_id, action, from_status, to_status, actor_id, actor_role, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
		if _, err = tx.ExecContext(ctx, insertQuery,
			entry.ID, entry.ReportID, entry.Action, entry.FromStatus, entry.ToStatus,
			entry.ActorID, entry.ActorRole, entry.OccurredAt,
		); err != nil {
			return fmt.Errorf("insert report transition: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	report.Version++
	return nil
}

// ListTransitions returns the audit trail of a report, oldest first.
func (r *ReportRepository) ListTransitions(ctx context.Context, reportID string) ([]models.ReportTransition, error) {
	const query = `SELECT id, report_id, action, from_status, to_status, actor_id, actor_role, occurred_at
FROM report_transitions WHERE report_id = $1 ORDER BY occurred_at ASC, id`
	var entries []models.ReportTransition
	if err := r.db.SelectContext(ctx, &entries, query, reportID); err != nil {
		return nil, fmt.Errorf("list report transitions: %w", err)
	}
	return entries, nil
}
