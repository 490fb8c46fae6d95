package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shakilabs/ott-price-compare/internal/apperr"
	"github.com/shakilabs/ott-price-compare/internal/model"
)

func fixedClock(s string) func() time.Time {
	ts, _ := time.Parse(time.RFC3339, s)
	return func() time.Time { return ts }
}

func TestHistoryRecord_AppendsSnapshot(t *testing.T) {
	src := youtubeSource()
	h := NewHistoryService(src, discardLogger())

	snap, err := h.Record(context.Background(), "youtube-premium")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", snap.Date)
	assert.Len(t, snap.Prices, 3)

	saved := src.saved["youtube-premium"]
	require.Len(t, saved, 2)
	assert.Equal(t, "2024-01-01", saved[0].Date)
	assert.Equal(t, "2024-02-01", saved[1].Date)
}

func TestHistoryRecord_ReplacesSameDate(t *testing.T) {
	src := youtubeSource()
	h := NewHistoryService(src, discardLogger())

	_, err := h.Record(context.Background(), "youtube-premium")
	require.NoError(t, err)
	src.prices["youtube-premium"].Prices[2] = countryPrice("TR", "튀르키예", 57.99, 3, 3500)
	_, err = h.Record(context.Background(), "youtube-premium")
	require.NoError(t, err)

	saved := src.saved["youtube-premium"]
	require.Len(t, saved, 2)
	last := saved[1]
	require.Len(t, last.Prices, 3)
	assert.Equal(t, model.LooseString("TR"), last.Prices[2].CountryCode)
	assert.Equal(t, 3500.0, last.Prices[2].KRW.Value)
}

func TestHistoryRecord_DateFallbacks(t *testing.T) {
	src := youtubeSource()
	h := NewHistoryService(src, discardLogger())
	h.now = fixedClock("2024-03-05T10:00:00Z")

	src.prices["youtube-premium"].LastUpdated = "2024-02-20T08:15:00Z"
	snap, err := h.Record(context.Background(), "youtube-premium")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-20T08:15:00Z", snap.Date, "lastUpdated is kept as written")

	src.prices["youtube-premium"].LastUpdated = "  "
	snap, err = h.Record(context.Background(), "youtube-premium")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", snap.Date)
}

func TestHistoryRecord_SkipsUnpricedCountries(t *testing.T) {
	src := youtubeSource()
	src.prices["youtube-premium"].Prices = append(src.prices["youtube-premium"].Prices,
		model.CountryPrice{CountryCode: "JP", Country: "일본"})

	snap, err := NewHistoryService(src, discardLogger()).Record(context.Background(), "youtube-premium")
	require.NoError(t, err)
	assert.Len(t, snap.Prices, 3)
}

func TestHistoryRecord_MissingPrices(t *testing.T) {
	_, err := NewHistoryService(youtubeSource(), discardLogger()).Record(context.Background(), "netflix")
	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 404, appErr.StatusCode)
}

func TestHistoryRecordAll_JoinsFailures(t *testing.T) {
	src := youtubeSource()
	src.services = &model.ServicesPayload{Services: []model.Service{
		{Slug: "youtube-premium", Active: true},
		{Slug: "netflix", Active: true},
		{Slug: "retired", Active: false},
	}}

	err := NewHistoryService(src, discardLogger()).RecordAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "netflix")
	assert.NotContains(t, err.Error(), "retired")
	assert.Len(t, src.saved["youtube-premium"], 2)
}
