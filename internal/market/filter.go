package market

import (
	"fmt"
	"sort"
	"strings"

	"github.com/temidaradev/coinboard/internal/coinlore"
)

// TopN caps the gainers and losers views.
const TopN = 10

type Filter int

const (
	All Filter = iota
	TopGainers
	TopLosers
)

var filterNames = [...]string{
	All:        "ALL",
	TopGainers: "TOP_GAINERS",
	TopLosers:  "TOP_LOSERS",
}

var filterLabels = [...]string{
	All:        "All",
	TopGainers: "Top Gainers",
	TopLosers:  "Top Losers",
}

func (f Filter) valid() bool { return f >= All && f <= TopLosers }

func (f Filter) String() string {
	if !f.valid() {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// Label is the chip caption.
func (f Filter) Label() string {
	if !f.valid() {
		return f.String()
	}
	return filterLabels[f]
}

// Next cycles All -> Top Gainers -> Top Losers -> All.
func (f Filter) Next() Filter {
	if !f.valid() {
		return All
	}
	return (f + 1) % Filter(len(filterNames))
}

func (f Filter) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Filter) UnmarshalText(b []byte) error {
	v, err := ParseFilter(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// Filters lists every filter in chip order.
func Filters() []Filter { return []Filter{All, TopGainers, TopLosers} }

// ParseFilter accepts the enum name, the chip label or a short alias, in any case.
func ParseFilter(s string) (Filter, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "all", "":
		return All, nil
	case "topgainers", "gainers":
		return TopGainers, nil
	case "toplosers", "losers":
		return TopLosers, nil
	}
	return All, fmt.Errorf("unknown filter %q", s)
}

// Matches reports whether query is a case-insensitive substring of the
// ticker's name or symbol.
func Matches(t coinlore.Ticker, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(strings.ToLower(t.Symbol), q)
}

// Search keeps the tickers matching query, in input order.
func Search(all []coinlore.Ticker, query string) []coinlore.Ticker {
	out := make([]coinlore.Ticker, 0, len(all))
	for _, t := range all {
		if Matches(t, query) {
			out = append(out, t)
		}
	}
	return out
}

// DeriveDisplayList applies the search and then the filter. The search runs
// first so a query narrows the set before the top-N cut. Equal changes keep
// their input order. The input slice is never modified.
func DeriveDisplayList(all []coinlore.Ticker, query string, filter Filter) []coinlore.Ticker {
	found := Search(all, query)

	switch filter {
	case TopGainers:
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].PercentChange24h > found[j].PercentChange24h
		})
		return head(found, TopN)
	case TopLosers:
		sort.SliceStable(found, func(i, j int) bool {
			return found[i].PercentChange24h < found[j].PercentChange24h
		})
		return head(found, TopN)
	default:
		return found
	}
}

func head(ts []coinlore.Ticker, n int) []coinlore.Ticker {
	if len(ts) > n {
		return ts[:n:n]
	}
	return ts
}
