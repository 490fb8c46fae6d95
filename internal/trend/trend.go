package trend

import (
	"math"
	"sort"
	"strings"
)

const (
	topN         = 10
	seriesWindow = 6
)

// Entry is one country's row in the current price snapshot.
type Entry struct {
	CountryCode  string
	Country      string
	Continent    string
	Currency     string
	LocalMonthly *float64
	USD          *float64
	KRW          *float64
}

type Snapshot struct {
	Entries          []Entry
	BaseCountry      string
	LastUpdated      string
	ExchangeRateDate string
}

type HistoryPrice struct {
	CountryCode string
	KRW         *float64
}

type HistorySnapshot struct {
	Date   string
	Prices []HistoryPrice
}

type Row struct {
	Country        string   `json:"country"`
	CountryCode    string   `json:"countryCode"`
	Continent      string   `json:"continent,omitempty"`
	Currency       string   `json:"currency,omitempty"`
	LocalMonthly   *float64 `json:"localMonthly"`
	USD            *float64 `json:"usd"`
	KRW            *float64 `json:"krw"`
	SavingsPercent int      `json:"savingsPercent"`
}

type Drop struct {
	Country       string  `json:"country"`
	CountryCode   string  `json:"countryCode"`
	PreviousDate  string  `json:"previousDate"`
	PreviousKRW   float64 `json:"previousKrw"`
	CurrentKRW    float64 `json:"currentKrw"`
	ChangeKRW     float64 `json:"changeKrw"`
	ChangePercent float64 `json:"changePercent"`
}

type Point struct {
	Date string  `json:"date"`
	KRW  float64 `json:"krw"`
}

type Result struct {
	ServiceSlug          string             `json:"serviceSlug"`
	AsOf                 *string            `json:"asOf"`
	ExchangeRateDate     *string            `json:"exchangeRateDate"`
	PreviousSnapshotDate *string            `json:"previousSnapshotDate"`
	Cheapest             []Row              `json:"cheapest"`
	HighestSavings       []Row              `json:"highestSavings"`
	BiggestDrops         []Drop             `json:"biggestDrops"`
	CountryChanges       map[string][]Point `json:"countryChanges"`
}

// Compute derives the full trend view for one service. It never mutates its
// inputs and returns the same result for the same arguments.
func Compute(slug string, snap Snapshot, history []HistorySnapshot) Result {
	history = SortHistory(history)
	rows := BuildRows(snap)
	prev := PreviousSnapshot(history, snap.LastUpdated)

	res := Result{
		ServiceSlug:      slug,
		AsOf:             optional(snap.LastUpdated),
		ExchangeRateDate: optional(snap.ExchangeRateDate),
		Cheapest:         Cheapest(rows),
		HighestSavings:   HighestSavings(rows),
		BiggestDrops:     []Drop{},
		CountryChanges:   CountryChanges(rows, history, snap.LastUpdated),
	}
	if prev != nil {
		res.PreviousSnapshotDate = optional(prev.Date)
		res.BiggestDrops = BiggestDrops(rows, PreviousPrices(prev), prev.Date)
	}
	return res
}

// SortHistory returns a copy of history ordered by date, oldest first.
func SortHistory(history []HistorySnapshot) []HistorySnapshot {
	out := append([]HistorySnapshot(nil), history...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func BuildRows(snap Snapshot) []Row {
	var baseKRW *float64
	for _, e := range snap.Entries {
		if e.CountryCode == snap.BaseCountry {
			baseKRW = e.KRW
			break
		}
	}

	rows := make([]Row, 0, len(snap.Entries))
	for _, e := range snap.Entries {
		rows = append(rows, Row{
			Country:        e.Country,
			CountryCode:    e.CountryCode,
			Continent:      e.Continent,
			Currency:       e.Currency,
			LocalMonthly:   e.LocalMonthly,
			USD:            e.USD,
			KRW:            e.KRW,
			SavingsPercent: SavingsPercent(e.KRW, baseKRW),
		})
	}
	return rows
}

// SavingsPercent is the integer discount of price relative to base; 0 when
// either price is missing or the base is not positive.
func SavingsPercent(price, base *float64) int {
	if price == nil || base == nil || *base <= 0 {
		return 0
	}
	return int(roundHalfUp((*base - *price) / *base * 100))
}

// PreviousSnapshot picks the comparison baseline for lastUpdated. Only an
// exact date match walks back one entry; anything else falls back to the
// most recent snapshot.
func PreviousSnapshot(history []HistorySnapshot, lastUpdated string) *HistorySnapshot {
	if len(history) == 0 {
		return nil
	}
	if lastUpdated == "" {
		return &history[len(history)-1]
	}
	for i := range history {
		if history[i].Date != lastUpdated {
			continue
		}
		if i == 0 {
			return nil
		}
		return &history[i-1]
	}
	return &history[len(history)-1]
}

func PreviousPrices(prev *HistorySnapshot) map[string]float64 {
	out := make(map[string]float64)
	if prev == nil {
		return out
	}
	for _, p := range prev.Prices {
		code := strings.ToUpper(p.CountryCode)
		if code == "" || !valid(p.KRW) {
			continue
		}
		out[code] = *p.KRW
	}
	return out
}

func BiggestDrops(rows []Row, previous map[string]float64, previousDate string) []Drop {
	drops := make([]Drop, 0, len(rows))
	for _, r := range rows {
		prevKRW, ok := previous[strings.ToUpper(r.CountryCode)]
		if !ok || r.KRW == nil {
			continue
		}
		change := *r.KRW - prevKRW
		pct := 0.0
		if prevKRW > 0 {
			pct = roundHalfUp(change/prevKRW*1000) / 10
		}
		drops = append(drops, Drop{
			Country:       r.Country,
			CountryCode:   r.CountryCode,
			PreviousDate:  previousDate,
			PreviousKRW:   prevKRW,
			CurrentKRW:    *r.KRW,
			ChangeKRW:     change,
			ChangePercent: pct,
		})
	}
	sort.SliceStable(drops, func(i, j int) bool { return drops[i].ChangeKRW < drops[j].ChangeKRW })
	return head(drops, topN)
}

func Cheapest(rows []Row) []Row {
	out := priced(rows, func(Row) bool { return true })
	sort.SliceStable(out, func(i, j int) bool { return *out[i].KRW < *out[j].KRW })
	return head(out, topN)
}

func HighestSavings(rows []Row) []Row {
	out := priced(rows, func(r Row) bool { return r.SavingsPercent > 0 })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SavingsPercent > out[j].SavingsPercent })
	return head(out, topN)
}

// CountryChanges builds a date-ordered series per country from history plus
// the current rows, keeping only the most recent points.
func CountryChanges(rows []Row, history []HistorySnapshot, currentDate string) map[string][]Point {
	series := make(map[string][]Point)
	for _, snap := range history {
		for _, p := range snap.Prices {
			code := strings.ToUpper(p.CountryCode)
			if code == "" || !valid(p.KRW) {
				continue
			}
			series[code] = append(series[code], Point{Date: snap.Date, KRW: *p.KRW})
		}
	}

	if currentDate != "" {
		for _, r := range rows {
			code := strings.ToUpper(r.CountryCode)
			if code == "" || !valid(r.KRW) || hasDate(series[code], currentDate) {
				continue
			}
			series[code] = append(series[code], Point{Date: currentDate, KRW: *r.KRW})
		}
	}

	for code, pts := range series {
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date < pts[j].Date })
		if len(pts) > seriesWindow {
			pts = append([]Point(nil), pts[len(pts)-seriesWindow:]...)
		}
		series[code] = pts
	}
	return series
}

func priced(rows []Row, keep func(Row) bool) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if r.KRW != nil && keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func hasDate(pts []Point, date string) bool {
	for _, p := range pts {
		if p.Date == date {
			return true
		}
	}
	return false
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func valid(v *float64) bool {
	return v != nil && !math.IsNaN(*v) && !math.IsInf(*v, 0)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// roundHalfUp rounds .5 toward positive infinity, matching the frontend.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
