package service

import (
	"context"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

const maxReportLogs = 100

type ChangelogReader interface {
	Changelog() model.ChangelogPayload
}

// ReportService serves the price update changelog. User submitted reports
// are switched off.
type ReportService struct {
	source ChangelogReader
}

func NewReportService(source ChangelogReader) *ReportService {
	return &ReportService{source: source}
}

func (r *ReportService) Submit(ctx context.Context) error {
	return apperr.Gone("price reports are no longer accepted")
}

// Logs returns up to 100 changelog entries, optionally for one service.
func (r *ReportService) Logs(ctx context.Context, slug string) ([]model.ReportUpdate, error) {
	if slug != "" && !validate.Slug(slug) {
		return nil, apperr.Validation("invalid service slug")
	}
	updates := r.source.Changelog().Updates
	out := make([]model.ReportUpdate, 0, min(len(updates), maxReportLogs))
	for _, u := range updates {
		if slug != "" && u.ServiceSlug() != slug {
			continue
		}
		out = append(out, u)
		if len(out) == maxReportLogs {
			break
		}
	}
	return out, nil
}
