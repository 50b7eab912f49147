// Package present turns tickers into the strings a card shows.
package present

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/temidaradev/coinboard/internal/coinlore"
)

const iconURLFormat = "https://raw.githubusercontent.com/spothq/cryptocurrency-icons/master/128/color/%s.png"

var (
	billion = decimal.NewFromInt(1_000_000_000)
	million = decimal.NewFromInt(1_000_000)
)

// Price renders a USD price with two decimals, e.g. "$67000.12".
func Price(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

// Change renders a 24h change with one decimal, e.g. "-1.2%".
func Change(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(1) + "%"
}

// IsGain picks the green colour; zero counts as a gain.
func IsGain(v float64) bool { return v >= 0 }

// MarketCap abbreviates billions and millions, e.g. "1.3B", "250.0M", "999".
func MarketCap(v float64) string {
	d := decimal.NewFromFloat(v)
	switch {
	case d.GreaterThanOrEqual(billion):
		return d.Div(billion).StringFixed(1) + "B"
	case d.GreaterThanOrEqual(million):
		return d.Div(million).StringFixed(1) + "M"
	default:
		return d.StringFixed(0)
	}
}

// IconURL points at the community icon set, keyed by lowercase symbol.
func IconURL(symbol string) string {
	return fmt.Sprintf(iconURLFormat, strings.ToLower(symbol))
}

// Card is one list row, already formatted.
type Card struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Change    string `json:"change"`
	MarketCap string `json:"market_cap"`
	IconURL   string `json:"icon_url"`
	Gain      bool   `json:"gain"`

	PriceUSD         float64 `json:"price_usd"`
	PercentChange24h float64 `json:"percent_change_24h"`
	MarketCapUSD     float64 `json:"market_cap_usd"`
}

func NewCard(t coinlore.Ticker) Card {
	return Card{
		ID:               t.ID,
		Symbol:           t.Symbol,
		Name:             t.Name,
		Price:            Price(t.PriceUSD),
		Change:           Change(t.PercentChange24h),
		MarketCap:        MarketCap(t.MarketCapUSD),
		IconURL:          IconURL(t.Symbol),
		Gain:             IsGain(t.PercentChange24h),
		PriceUSD:         t.PriceUSD,
		PercentChange24h: t.PercentChange24h,
		MarketCapUSD:     t.MarketCapUSD,
	}
}

func Cards(ts []coinlore.Ticker) []Card {
	out := make([]Card, len(ts))
	for i, t := range ts {
		out[i] = NewCard(t)
	}
	return out
}
