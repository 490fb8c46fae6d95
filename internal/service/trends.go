package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/metrics"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/store"
	"github.com/shakilabs/ott-price-compare/internal/trend"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

// PriceSource is the read side of the data directory.
type PriceSource interface {
	Prices(slug string) (*model.PricesPayload, error)
	History(slug string) ([]model.HistorySnapshot, error)
}

type TrendService struct {
	source PriceSource
	logger *slog.Logger
}

func NewTrendService(source PriceSource, logger *slog.Logger) *TrendService {
	return &TrendService{source: source, logger: logger}
}

// Trends loads the current snapshot and history for slug concurrently and
// runs the trend calculator over them.
func (s *TrendService) Trends(ctx context.Context, slug string) (trend.Result, error) {
	if !validate.Slug(slug) {
		return trend.Result{}, apperr.BadRequest("invalid service slug")
	}
	start := time.Now()

	var (
		prices  *model.PricesPayload
		history []model.HistorySnapshot
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.source.Prices(slug)
		if err != nil {
			return err
		}
		prices = p
		return ctx.Err()
	})
	g.Go(func() error {
		h, err := s.source.History(slug)
		if err != nil {
			// Trends without history are still useful.
			s.logger.WarnContext(ctx, "history unavailable", "service", slug, "error", err)
			return nil
		}
		history = h
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return trend.Result{}, apperr.NotFound("trend data not found")
		}
		return trend.Result{}, apperr.Internal(err)
	}
	if len(prices.Prices) == 0 {
		return trend.Result{}, apperr.NotFound("trend data not found")
	}

	res := trend.Compute(slug, SnapshotFromPrices(prices), HistoryFromModel(history))
	metrics.TrendComputeDuration.WithLabelValues(slug).Observe(time.Since(start).Seconds())
	return res, nil
}

// SnapshotFromPrices maps a prices file onto the calculator's input using
// the individual plan.
func SnapshotFromPrices(p *model.PricesPayload) trend.Snapshot {
	entries := make([]trend.Entry, 0, len(p.Prices))
	for _, c := range p.Prices {
		name := c.Country
		if name == "" {
			name = c.CountryCode
		}
		entries = append(entries, trend.Entry{
			CountryCode:  c.CountryCode,
			Country:      name,
			Continent:    c.Continent,
			Currency:     c.Currency,
			LocalMonthly: c.Monthly(model.IndividualPlan).Ptr(),
			USD:          c.USD(model.IndividualPlan).Ptr(),
			KRW:          c.KRW(model.IndividualPlan).Ptr(),
		})
	}
	return trend.Snapshot{
		Entries:          entries,
		BaseCountry:      p.BaseCountry,
		LastUpdated:      p.LastUpdated,
		ExchangeRateDate: p.ExchangeRateDate,
	}
}

func HistoryFromModel(history []model.HistorySnapshot) []trend.HistorySnapshot {
	out := make([]trend.HistorySnapshot, 0, len(history))
	for _, h := range history {
		prices := make([]trend.HistoryPrice, 0, len(h.Prices))
		for _, item := range h.Prices {
			prices = append(prices, trend.HistoryPrice{
				CountryCode: string(item.CountryCode),
				KRW:         item.KRW.Ptr(),
			})
		}
		out = append(out, trend.HistorySnapshot{Date: h.Date, Prices: prices})
	}
	return out
}
