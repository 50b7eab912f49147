package coinlore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Ticker is one coin row of the /api/tickers/ page.
type Ticker struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	PriceUSD         float64 `json:"price_usd"`
	PercentChange24h float64 `json:"percent_change_24h"`
	MarketCapUSD     float64 `json:"market_cap_usd"`
}

// Info is the page metadata. Nothing on screen reads it.
type Info struct {
	CoinsNum int   `json:"coins_num"`
	Time     int64 `json:"time"`
}

type TickerListResponse struct {
	Data []Ticker `json:"data"`
	Info Info     `json:"info"`
}

// number decodes a JSON number or a JSON string holding one. CoinLore sends
// prices quoted. NaN and infinities are rejected.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var f float64
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		f = v
	} else if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("non-finite number %s", b)
	}
	*n = number(f)
	return nil
}

func (t *Ticker) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID               *string `json:"id"`
		Symbol           *string `json:"symbol"`
		Name             *string `json:"name"`
		PriceUSD         *number `json:"price_usd"`
		PercentChange24h *number `json:"percent_change_24h"`
		MarketCapUSD     *number `json:"market_cap_usd"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	switch {
	case raw.ID == nil:
		return missingField("id")
	case raw.Symbol == nil:
		return missingField("symbol")
	case raw.Name == nil:
		return missingField("name")
	case raw.PriceUSD == nil:
		return missingField("price_usd")
	case raw.PercentChange24h == nil:
		return missingField("percent_change_24h")
	case raw.MarketCapUSD == nil:
		return missingField("market_cap_usd")
	}

	*t = Ticker{
		ID:               *raw.ID,
		Symbol:           *raw.Symbol,
		Name:             *raw.Name,
		PriceUSD:         float64(*raw.PriceUSD),
		PercentChange24h: float64(*raw.PercentChange24h),
		MarketCapUSD:     float64(*raw.MarketCapUSD),
	}
	return nil
}

func (r *TickerListResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Data *[]Ticker `json:"data"`
		Info Info      `json:"info"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Data == nil {
		return missingField("data")
	}
	r.Data = *raw.Data
	r.Info = raw.Info
	return nil
}

func missingField(name string) error {
	return fmt.Errorf("missing required field %q", name)
}
