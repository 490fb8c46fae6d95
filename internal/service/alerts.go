package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/model"
	"github.com/shakilabs/ott-price-compare/internal/store"
	"github.com/shakilabs/ott-price-compare/internal/validate"
)

type AlertRequest struct {
	ServiceSlug    string      `json:"serviceSlug" validate:"required,slug"`
	CountryCode    string      `json:"countryCode" validate:"required,country"`
	PlanID         string      `json:"planId" validate:"required,min=2,max=32"`
	TargetPriceKRW json.Number `json:"targetPriceKrw" validate:"required"`
	Email          string      `json:"email" validate:"required,email"`
}

type AlertMatch struct {
	Subscription model.AlertSubscription `json:"subscription"`
	CurrentKRW   float64                 `json:"currentKrw"`
}

type PricesReader interface {
	Prices(slug string) (*model.PricesPayload, error)
}

type AlertService struct {
	log       *store.Log[model.AlertSubscription]
	prices    PricesReader
	validator *validate.Validator
	now       func() time.Time
}

func NewAlertService(log *store.Log[model.AlertSubscription], prices PricesReader, v *validate.Validator) *AlertService {
	return &AlertService{log: log, prices: prices, validator: v, now: time.Now}
}

func (a *AlertService) Subscribe(ctx context.Context, req AlertRequest) (model.AlertSubscription, error) {
	if err := a.validator.Struct(req); err != nil {
		return model.AlertSubscription{}, err
	}
	target, ok := positiveInt(req.TargetPriceKRW)
	if !ok {
		return model.AlertSubscription{}, apperr.Validation("targetPriceKrw must be a positive integer")
	}

	sub := model.AlertSubscription{
		ID:             newID("alt_"),
		CreatedAt:      a.now().UTC(),
		Status:         model.AlertStatusActive,
		ServiceSlug:    req.ServiceSlug,
		CountryCode:    strings.ToUpper(req.CountryCode),
		PlanID:         req.PlanID,
		TargetPriceKRW: target,
		Email:          strings.ToLower(req.Email),
	}
	if err := a.log.Append(sub); err != nil {
		return model.AlertSubscription{}, apperr.Internal(err)
	}
	return sub, nil
}

func (a *AlertService) List(ctx context.Context) ([]model.AlertSubscription, error) {
	subs, err := a.log.ReadAll()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return subs, nil
}

// Due returns the active subscriptions whose plan currently costs no more
// than the subscriber's target. Subscriptions without price data are skipped.
func (a *AlertService) Due(ctx context.Context) ([]AlertMatch, error) {
	subs, err := a.log.ReadAll()
	if err != nil {
		return nil, err
	}

	loaded := make(map[string]*model.PricesPayload)
	matches := []AlertMatch{}
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if sub.Status != model.AlertStatusActive {
			continue
		}
		p, seen := loaded[sub.ServiceSlug]
		if !seen {
			p, err = a.prices.Prices(sub.ServiceSlug)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			loaded[sub.ServiceSlug] = p
		}
		if p == nil {
			continue
		}
		country, ok := p.Find(sub.CountryCode)
		if !ok {
			continue
		}
		krw := country.KRW(sub.PlanID)
		if krw.Valid && krw.Value <= float64(sub.TargetPriceKRW) {
			matches = append(matches, AlertMatch{Subscription: sub, CurrentKRW: krw.Value})
		}
	}
	return matches, nil
}

func positiveInt(n json.Number) (int64, bool) {
	f, err := n.Float64()
	if err != nil || f <= 0 || f != math.Trunc(f) || f > math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func newID(prefix string) string {
	return prefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
