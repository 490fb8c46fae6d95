package trend

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func entry(code string, krw *float64) Entry {
	return Entry{CountryCode: code, Country: "Country " + code, Currency: "KRW", KRW: krw}
}

func TestSavingsPercent_Example(t *testing.T) {
	snap := Snapshot{
		BaseCountry: "KR",
		Entries: []Entry{
			entry("KR", ptr(14900)),
			entry("US", ptr(3130)),
		},
	}
	rows := BuildRows(snap)
	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].SavingsPercent)
	assert.Equal(t, 79, rows[1].SavingsPercent)
}

func TestSavingsPercent_MissingOrZeroBase(t *testing.T) {
	cases := map[string]*float64{
		"nil base":  nil,
		"zero base": ptr(0),
	}
	for name, base := range cases {
		t.Run(name, func(t *testing.T) {
			snap := Snapshot{
				BaseCountry: "KR",
				Entries:     []Entry{entry("KR", base), entry("US", ptr(3130)), entry("TR", nil)},
			}
			for _, r := range BuildRows(snap) {
				assert.Equal(t, 0, r.SavingsPercent, r.CountryCode)
			}
		})
	}

	t.Run("base country absent", func(t *testing.T) {
		snap := Snapshot{BaseCountry: "KR", Entries: []Entry{entry("US", ptr(3130))}}
		assert.Equal(t, 0, BuildRows(snap)[0].SavingsPercent)
	})

	t.Run("row price missing", func(t *testing.T) {
		assert.Equal(t, 0, SavingsPercent(nil, ptr(14900)))
	})
}

func TestBuildRows_PreservesOrder(t *testing.T) {
	snap := Snapshot{
		BaseCountry: "KR",
		Entries:     []Entry{entry("US", ptr(3)), entry("KR", ptr(1)), entry("TR", ptr(2))},
	}
	rows := BuildRows(snap)
	got := []string{rows[0].CountryCode, rows[1].CountryCode, rows[2].CountryCode}
	assert.Equal(t, []string{"US", "KR", "TR"}, got)
}

func TestPreviousSnapshot(t *testing.T) {
	history := []HistorySnapshot{{Date: "2024-01-01"}, {Date: "2024-02-01"}, {Date: "2024-03-01"}}

	prev := PreviousSnapshot(history, "2024-02-01")
	require.NotNil(t, prev)
	assert.Equal(t, "2024-01-01", prev.Date)

	assert.Nil(t, PreviousSnapshot(history, "2024-01-01"))

	prev = PreviousSnapshot(history, "2024-05-01")
	require.NotNil(t, prev)
	assert.Equal(t, "2024-03-01", prev.Date)

	prev = PreviousSnapshot(history, "")
	require.NotNil(t, prev)
	assert.Equal(t, "2024-03-01", prev.Date)

	assert.Nil(t, PreviousSnapshot(nil, "2024-02-01"))
}

func TestPreviousPrices_SkipsMalformed(t *testing.T) {
	prev := &HistorySnapshot{Date: "2024-01-01", Prices: []HistoryPrice{
		{CountryCode: "us", KRW: ptr(3500)},
		{CountryCode: "", KRW: ptr(1)},
		{CountryCode: "TR", KRW: nil},
	}}
	assert.Equal(t, map[string]float64{"US": 3500}, PreviousPrices(prev))
	assert.Empty(t, PreviousPrices(nil))
}

func TestBiggestDrops_Example(t *testing.T) {
	rows := []Row{
		{CountryCode: "KR", Country: "Korea", KRW: ptr(14900)},
		{CountryCode: "US", Country: "United States", KRW: ptr(3130)},
		{CountryCode: "JP", Country: "Japan", KRW: ptr(9000)},
	}
	drops := BiggestDrops(rows, map[string]float64{"US": 3500, "KR": 14900}, "2024-01-01")
	require.Len(t, drops, 2)

	us := drops[0]
	assert.Equal(t, "US", us.CountryCode)
	assert.Equal(t, -370.0, us.ChangeKRW)
	assert.Equal(t, -10.6, us.ChangePercent)
	assert.Equal(t, "2024-01-01", us.PreviousDate)

	assert.Equal(t, "KR", drops[1].CountryCode)
	assert.Equal(t, 0.0, drops[1].ChangeKRW)
}

func TestBiggestDrops_ZeroPreviousPrice(t *testing.T) {
	rows := []Row{{CountryCode: "US", KRW: ptr(100)}, {CountryCode: "TR", KRW: nil}}
	drops := BiggestDrops(rows, map[string]float64{"US": 0, "TR": 50}, "2024-01-01")
	require.Len(t, drops, 1)
	assert.Equal(t, 0.0, drops[0].ChangePercent)
	assert.Equal(t, 100.0, drops[0].ChangeKRW)
}

func TestBiggestDrops_SortedAndCapped(t *testing.T) {
	rows := make([]Row, 0, 15)
	prev := make(map[string]float64)
	for i := 0; i < 15; i++ {
		code := fmt.Sprintf("C%d", i)
		rows = append(rows, Row{CountryCode: code, KRW: ptr(float64(1000 - i*10))})
		prev[code] = 1000
	}
	drops := BiggestDrops(rows, prev, "d")
	require.Len(t, drops, 10)
	for i := 1; i < len(drops); i++ {
		assert.LessOrEqual(t, drops[i-1].ChangeKRW, drops[i].ChangeKRW)
	}
	assert.Equal(t, "C14", drops[0].CountryCode)
}

func TestCheapest_FiltersSortsAndCaps(t *testing.T) {
	rows := []Row{{CountryCode: "NIL"}}
	for i := 12; i > 0; i-- {
		rows = append(rows, Row{CountryCode: fmt.Sprintf("C%02d", i), KRW: ptr(float64(i * 100))})
	}
	out := Cheapest(rows)
	require.Len(t, out, 10)
	assert.Equal(t, "C01", out[0].CountryCode)
	for i, r := range out {
		require.NotNil(t, r.KRW)
		if i > 0 {
			assert.LessOrEqual(t, *out[i-1].KRW, *r.KRW)
		}
	}
}

func TestCheapest_TiesKeepInputOrder(t *testing.T) {
	rows := []Row{
		{CountryCode: "B", KRW: ptr(500)},
		{CountryCode: "A", KRW: ptr(500)},
		{CountryCode: "C", KRW: ptr(100)},
		{CountryCode: "D", KRW: ptr(500)},
	}
	out := Cheapest(rows)
	codes := make([]string, 0, len(out))
	for _, r := range out {
		codes = append(codes, r.CountryCode)
	}
	assert.Equal(t, []string{"C", "B", "A", "D"}, codes)
}

func TestHighestSavings(t *testing.T) {
	rows := []Row{
		{CountryCode: "KR", KRW: ptr(14900), SavingsPercent: 0},
		{CountryCode: "US", KRW: ptr(3130), SavingsPercent: 79},
		{CountryCode: "JP", KRW: ptr(16000), SavingsPercent: -7},
		{CountryCode: "TR", KRW: nil, SavingsPercent: 90},
		{CountryCode: "IN", KRW: ptr(2000), SavingsPercent: 87},
	}
	out := HighestSavings(rows)
	require.Len(t, out, 2)
	assert.Equal(t, "IN", out[0].CountryCode)
	assert.Equal(t, "US", out[1].CountryCode)
	for _, r := range out {
		assert.Greater(t, r.SavingsPercent, 0)
		assert.NotNil(t, r.KRW)
	}
}

func TestCountryChanges_WindowAndDedup(t *testing.T) {
	var history []HistorySnapshot
	for m := 1; m <= 8; m++ {
		history = append(history, HistorySnapshot{
			Date:   fmt.Sprintf("2024-%02d-01", m),
			Prices: []HistoryPrice{{CountryCode: "us", KRW: ptr(float64(m))}, {CountryCode: "KR", KRW: nil}},
		})
	}
	rows := []Row{{CountryCode: "US", KRW: ptr(99)}, {CountryCode: "KR", KRW: ptr(14900)}}

	series := CountryChanges(rows, history, "2024-08-01")
	us := series["US"]
	require.Len(t, us, 6)
	assert.Equal(t, "2024-03-01", us[0].Date)
	assert.Equal(t, "2024-08-01", us[5].Date)
	assert.Equal(t, 8.0, us[5].KRW, "existing point for the current date must not be replaced or duplicated")

	require.Len(t, series["KR"], 1)
	assert.Equal(t, Point{Date: "2024-08-01", KRW: 14900}, series["KR"][0])
}

func TestCountryChanges_AppendsCurrentAndSorts(t *testing.T) {
	history := []HistorySnapshot{
		{Date: "2024-02-01", Prices: []HistoryPrice{{CountryCode: "US", KRW: ptr(2)}}},
		{Date: "2024-01-01", Prices: []HistoryPrice{{CountryCode: "US", KRW: ptr(1)}}},
	}
	series := CountryChanges([]Row{{CountryCode: "US", KRW: ptr(3)}}, history, "2024-03-01")
	assert.Equal(t, []Point{
		{Date: "2024-01-01", KRW: 1},
		{Date: "2024-02-01", KRW: 2},
		{Date: "2024-03-01", KRW: 3},
	}, series["US"])

	noDate := CountryChanges([]Row{{CountryCode: "JP", KRW: ptr(3)}}, nil, "")
	assert.Empty(t, noDate)
}

func TestCompute_EndToEnd(t *testing.T) {
	snap := Snapshot{
		BaseCountry:      "KR",
		LastUpdated:      "2024-02-01",
		ExchangeRateDate: "2024-01-31",
		Entries: []Entry{
			entry("KR", ptr(14900)),
			entry("US", ptr(3130)),
			entry("XX", nil),
		},
	}
	history := []HistorySnapshot{
		{Date: "2024-02-01", Prices: []HistoryPrice{{CountryCode: "US", KRW: ptr(3130)}}},
		{Date: "2024-01-01", Prices: []HistoryPrice{{CountryCode: "US", KRW: ptr(3500)}, {CountryCode: "KR", KRW: ptr(14900)}}},
	}

	res := Compute("youtube-premium", snap, history)
	require.NotNil(t, res.PreviousSnapshotDate)
	assert.Equal(t, "2024-01-01", *res.PreviousSnapshotDate)
	require.NotNil(t, res.AsOf)
	assert.Equal(t, "2024-02-01", *res.AsOf)
	assert.Len(t, res.Cheapest, 2)
	assert.Equal(t, "US", res.Cheapest[0].CountryCode)
	require.Len(t, res.HighestSavings, 1)
	assert.Equal(t, 79, res.HighestSavings[0].SavingsPercent)
	require.Len(t, res.BiggestDrops, 2)
	assert.Equal(t, -10.6, res.BiggestDrops[0].ChangePercent)
	assert.Len(t, res.CountryChanges["US"], 2)

	assert.Equal(t, "2024-02-01", history[0].Date, "input history must not be reordered")
}

func TestCompute_NoHistory(t *testing.T) {
	res := Compute("s", Snapshot{Entries: []Entry{entry("US", ptr(1))}}, nil)
	assert.Nil(t, res.PreviousSnapshotDate)
	assert.Nil(t, res.AsOf)
	assert.NotNil(t, res.BiggestDrops)
	assert.Empty(t, res.BiggestDrops)
}

func TestCompute_Idempotent(t *testing.T) {
	snap := Snapshot{
		BaseCountry: "KR",
		LastUpdated: "2024-03-01",
		Entries:     []Entry{entry("KR", ptr(14900)), entry("US", ptr(3130)), entry("JP", ptr(12000))},
	}
	history := []HistorySnapshot{
		{Date: "2024-01-01", Prices: []HistoryPrice{{CountryCode: "US", KRW: ptr(3500)}, {CountryCode: "JP", KRW: ptr(11000)}}},
	}

	a, err := json.Marshal(Compute("s", snap, history))
	require.NoError(t, err)
	b, err := json.Marshal(Compute("s", snap, history))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
