// Package rates refreshes exchange rates and reprices the stored price files.
package rates

import (
	"context"
	"time"
)

const Base = "USD"

// Needed lists the currencies the price files are quoted in.
var Needed = []string{
	"KRW", "TRY", "INR", "ARS", "BRL", "MXN", "PHP", "IDR", "THB", "VND",
	"EGP", "NGN", "ZAR", "PLN", "CZK", "HUF", "RON", "UAH", "GBP", "EUR",
	"JPY", "CAD", "AUD", "NZD", "CHF", "SEK", "NOK", "DKK", "SGD", "HKD",
	"TWD", "MYR", "CLP", "COP", "PEN", "KES", "GHS", "PKR", "BDT", "LKR",
	"SAR", "AED", "ILS",
}

// Rates is the content of data/exchange-rates.json. Each rate is the amount
// of the currency one USD buys.
type Rates struct {
	FetchedAt string             `json:"fetchedAt"`
	Base      string             `json:"base"`
	Rates     map[string]float64 `json:"rates"`
}

type Source interface {
	Name() string
	Fetch(ctx context.Context) (Rates, error)
}

func dateOf(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
