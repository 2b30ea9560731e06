package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/rdic-api/internal/dto"
	"github.com/noah-isme/rdic-api/internal/models"
	appErrors "github.com/noah-isme/rdic-api/pkg/errors"
	"github.com/noah-isme/rdic-api/pkg/export"
)

type reportRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// WithReportExporters enables PDF export of published reports and CSV export
// of listings. Either may be nil to disable that format.
func WithReportExporters(pdf reportRenderer, csv datasetRenderer) ReportWorkflowOption {
	return func(s *ReportWorkflowService) {
		s.pdf = pdf
		s.csv = csv
	}
}

var listingColumns = []export.Column{
	{Key: "id", Title: "ID"},
	{Key: "subjectId", Title: "Subject"},
	{Key: "scopeId", Title: "Scope"},
	{Key: "period", Title: "Period"},
	{Key: "status", Title: "Status"},
	{Key: "updatedAt", Title: "Updated At"},
}

// ExportPDF renders the final content of a published report.
func (s *ReportWorkflowService) ExportPDF(ctx context.Context, id string, actor models.Actor) ([]byte, string, error) {
	if s.pdf == nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "pdf export is disabled")
	}
	view, err := s.Get(ctx, id, actor)
	if err != nil {
		return nil, "", err
	}
	if view.Status != models.ReportStatusPublished {
		return nil, "", appErrors.Clone(appErrors.ErrInvalidTransition, "only published reports can be exported")
	}
	doc, err := reportDocument(view.Report)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to prepare report document")
	}
	out, err := s.pdf.Render(doc)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	filename := fmt.Sprintf("rdic-%s-%s.pdf", sanitizeFilePart(view.Period), sanitizeFilePart(view.SubjectID))
	return out, filename, nil
}

// ExportCSV renders the status badges visible to actor as CSV.
func (s *ReportWorkflowService) ExportCSV(ctx context.Context, query dto.ReportQuery, actor models.Actor) ([]byte, error) {
	if s.csv == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "csv export is disabled")
	}
	summaries, _, err := s.ListSummaries(ctx, query, actor)
	if err != nil {
		return nil, err
	}
	rows := make([]map[string]string, 0, len(summaries))
	for _, item := range summaries {
		rows = append(rows, map[string]string{
			"id":        item.ID,
			"subjectId": item.SubjectID,
			"scopeId":   item.ScopeID,
			"period":    item.Period,
			"status":    string(item.Status),
			"updatedAt": item.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	out, err := s.csv.Render(export.Dataset{Columns: listingColumns, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return out, nil
}

// reportDocument lays the final payload out as one section per top-level key,
// in key order. String values print as-is, anything else as indented JSON.
func reportDocument(report models.Report) (export.Document, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(report.FinalPayload, &fields); err != nil {
		return export.Document{}, fmt.Errorf("decode final payload: %w", err)
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sections := make([]export.Section, 0, len(keys))
	for _, k := range keys {
		var text string
		if err := json.Unmarshal(fields[k], &text); err != nil {
			var v interface{}
			if err := json.Unmarshal(fields[k], &v); err != nil {
				return export.Document{}, fmt.Errorf("decode field %s: %w", k, err)
			}
			pretty, _ := json.MarshalIndent(v, "", "  ")
			text = string(pretty)
		}
		sections = append(sections, export.Section{Heading: k, Body: text})
	}

	doc := export.Document{
		Title: fmt.Sprintf("RDIC - %s", report.Period),
		Fields: []export.Field{
			{Label: "Child", Value: report.SubjectID},
			{Label: "Class", Value: report.ScopeID},
			{Label: "Author", Value: report.CreatedBy},
		},
		Sections: sections,
		Footer:   report.ID,
	}
	if report.ReviewedBy != nil {
		doc.Fields = append(doc.Fields, export.Field{Label: "Reviewed by", Value: *report.ReviewedBy})
	}
	if report.PublishedAt != nil {
		doc.Fields = append(doc.Fields, export.Field{Label: "Published", Value: report.PublishedAt.UTC().Format("2006-01-02")})
	}
	return doc, nil
}

func sanitizeFilePart(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, value)
}
