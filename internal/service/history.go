package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/store"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

type HistoryStore interface {
	Services() (*model.ServicesPayload, error)
	Prices(slug string) (*model.PricesPayload, error)
	History(slug string) ([]model.HistorySnapshot, error)
	SaveHistory(slug string, snaps []model.HistorySnapshot) error
}

// HistoryService appends the current prices of a service to its history
// file, one snapshot per date.
type HistoryService struct {
	store  HistoryStore
	logger *slog.Logger
	now    func() time.Time
}

func NewHistoryService(s HistoryStore, logger *slog.Logger) *HistoryService {
	return &HistoryService{store: s, logger: logger, now: time.Now}
}

// Record snapshots the current KRW prices of slug keyed by the prices file's
// lastUpdated value as written (today when unset), so the trend view finds it
// as the current snapshot. An existing snapshot with that key is replaced.
func (h *HistoryService) Record(ctx context.Context, slug string) (model.HistorySnapshot, error) {
	if !validate.Slug(slug) {
		return model.HistorySnapshot{}, apperr.BadRequest("invalid service slug")
	}
	prices, err := h.store.Prices(slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.HistorySnapshot{}, apperr.NotFound("price data not found for this service")
		}
		return model.HistorySnapshot{}, apperr.Internal(err)
	}

	date := prices.LastUpdated
	if strings.TrimSpace(date) == "" {
		date = h.now().UTC().Format(time.DateOnly)
	}
	snap := model.HistorySnapshot{Date: date, Prices: []model.HistoryItem{}}
	for _, c := range prices.Prices {
		krw := c.KRW(model.IndividualPlan)
		if c.CountryCode == "" || !krw.Valid {
			continue
		}
		snap.Prices = append(snap.Prices, model.HistoryItem{CountryCode: model.LooseString(c.CountryCode), KRW: krw})
	}

	existing, err := h.store.History(slug)
	if err != nil {
		return model.HistorySnapshot{}, apperr.Internal(err)
	}
	next := make([]model.HistorySnapshot, 0, len(existing)+1)
	for _, s := range existing {
		if s.Date != date {
			next = append(next, s)
		}
	}
	next = append(next, snap)

	if err := h.store.SaveHistory(slug, next); err != nil {
		return model.HistorySnapshot{}, apperr.Internal(fmt.Errorf("save history %s: %w", slug, err))
	}
	h.logger.InfoContext(ctx, "history snapshot recorded", "service", slug, "date", date, "countries", len(snap.Prices))
	return snap, nil
}

// RecordAll records every active service and joins the failures.
func (h *HistoryService) RecordAll(ctx context.Context) error {
	services, err := h.store.Services()
	if err != nil {
		return fmt.Errorf("load services: %w", err)
	}
	var errs []error
	for _, svc := range services.Active() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := h.Record(ctx, svc.Slug); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", svc.Slug, err))
		}
	}
	return errors.Join(errs...)
}
