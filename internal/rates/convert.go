package rates

import (
	"github.com/shopspring/decimal"
)

// Reconvert stamps doc with the KRW rate and rate date and recomputes every
// converted plan price from its local monthly price: usd first, then krw from
// usd. Countries in a currency without a rate keep their usd and only get a
// fresh krw. Fields it does not touch are left as they are.
func Reconvert(doc map[string]any, r Rates) {
	krwRate, ok := r.Rates["KRW"]
	if !ok {
		return
	}
	doc["krwRate"] = krwRate
	doc["exchangeRateDate"] = r.FetchedAt
	krw := decimal.NewFromFloat(krwRate)

	prices, _ := doc["prices"].([]any)
	for _, item := range prices {
		price, ok := item.(map[string]any)
		if !ok {
			continue
		}
		currency, _ := price["currency"].(string)
		converted, _ := price["converted"].(map[string]any)
		plans, _ := price["plans"].(map[string]any)
		if currency == "" || converted == nil || plans == nil {
			continue
		}

		for planID, raw := range converted {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			plan, _ := plans[planID].(map[string]any)
			local, ok := plan["monthly"].(float64)
			if !ok {
				continue
			}

			switch {
			case currency == "USD":
				entry["usd"] = local
			case currency == "KRW":
				entry["usd"] = toUSD(local, krw)
			default:
				if rate, ok := r.Rates[currency]; ok {
					entry["usd"] = toUSD(local, decimal.NewFromFloat(rate))
				}
			}
			if usd, ok := entry["usd"].(float64); ok {
				entry["krw"] = decimal.NewFromFloat(usd).Mul(krw).Round(0).InexactFloat64()
			}
		}
	}
}

// toUSD divides a local price by its USD rate, rounded to cents.
func toUSD(local float64, rate decimal.Decimal) float64 {
	return decimal.NewFromFloat(local).Div(rate).Round(2).InexactFloat64()
}
