package seo

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/shakilabs/ott-price-compare/internal/model"
)

func formatNumber(v float64) string {
	p := message.NewPrinter(language.Korean)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
}

func formatKRW(n model.Number) string {
	if !n.Valid {
		return "-"
	}
	return "₩" + formatNumber(math.Floor(n.Value+0.5))
}

func formatLocal(n model.Number, currency string) string {
	if !n.Valid {
		return "-"
	}
	if currency == "" {
		return formatNumber(n.Value)
	}
	return formatNumber(n.Value) + " " + currency
}

func formatUSD(n model.Number) string {
	if !n.Valid {
		return "-"
	}
	return fmt.Sprintf("$%.2f", n.Value)
}

func savingsPercent(price, base model.Number) int {
	if !price.Valid || !base.Valid || price.Value == 0 || base.Value == 0 {
		return 0
	}
	return int(math.Floor((base.Value-price.Value)/base.Value*100 + 0.5))
}
