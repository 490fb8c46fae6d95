package service

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/store"
)

// SourceMock serves canned prices and history per slug.
type SourceMock struct {
	prices          map[string]*model.PricesPayload
	history         map[string][]model.HistorySnapshot
	services        *model.ServicesPayload
	errorOutMessage *string
	historyErr      error
	callCount       *int32
	saved           map[string][]model.HistorySnapshot
}

func (m *SourceMock) Prices(slug string) (*model.PricesPayload, error) {
	if m.callCount != nil {
		atomic.AddInt32(m.callCount, 1)
	}
	if m.errorOutMessage != nil {
		return nil, errors.New(slug + ": " + *m.errorOutMessage)
	}
	p, ok := m.prices[slug]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (m *SourceMock) History(slug string) ([]model.HistorySnapshot, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	if h, ok := m.saved[slug]; ok {
		return h, nil
	}
	return m.history[slug], nil
}

func (m *SourceMock) Services() (*model.ServicesPayload, error) {
	if m.services == nil {
		return nil, store.ErrNotFound
	}
	return m.services, nil
}

func (m *SourceMock) SaveHistory(slug string, snaps []model.HistorySnapshot) error {
	if m.saved == nil {
		m.saved = make(map[string][]model.HistorySnapshot)
	}
	m.saved[slug] = snaps
	return nil
}

func valToPtr[T any](param T) *T {
	return &param
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func countryPrice(code, name string, monthly, usd, krw float64) model.CountryPrice {
	return model.CountryPrice{
		CountryCode: code,
		Country:     name,
		Plans:       map[string]model.PlanPrice{model.IndividualPlan: {Monthly: model.NewNumber(monthly)}},
		Converted: map[string]model.ConvertedPrice{
			model.IndividualPlan: {KRW: model.NewNumber(krw), USD: model.NewNumber(usd)},
		},
	}
}

func historyItem(code string, krw float64) model.HistoryItem {
	return model.HistoryItem{CountryCode: model.LooseString(code), KRW: model.NewNumber(krw)}
}
