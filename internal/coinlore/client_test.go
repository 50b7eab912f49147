package coinlore

import (
	"context"
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const samplePage = `{
  "data": [
    {"id": "90", "symbol": "BTC", "name": "Bitcoin",
     "price_usd": "67000.12", "percent_change_24h": "-1.23",
     "market_cap_usd": "1300000000000.00"},
    {"id": "80", "symbol": "ETH", "name": "Ethereum",
     "price_usd": 3100.5, "percent_change_24h": 2.5,
     "market_cap_usd": 372000000000.0}
  ],
  "info": {"coins_num": 12000, "time": 1700000000}
}`

func newTestServer(t *testing.T, status int, body string, hits *int32) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			atomic.AddInt32(hits, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return srv, c
}

func TestFetchRequestShape(t *testing.T) {
	var gotPath, gotQuery, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.Fetch(context.Background(), 0, 100); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if gotPath != "/api/tickers/" {
		t.Errorf("path = %q, want /api/tickers/", gotPath)
	}
	if gotQuery != "start=0&limit=100" {
		t.Errorf("query = %q, want start=0&limit=100", gotQuery)
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q", gotAccept)
	}
}

func TestFetchDecodesPage(t *testing.T) {
	_, c := newTestServer(t, http.StatusOK, samplePage, nil)

	resp, err := c.Fetch(context.Background(), DefaultStart, DefaultLimit)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Fatalf("got %d tickers, want 2", len(resp.Data))
	}

	btc := resp.Data[0]
	want := Ticker{
		ID: "90", Symbol: "BTC", Name: "Bitcoin",
		PriceUSD: 67000.12, PercentChange24h: -1.23, MarketCapUSD: 1.3e12,
	}
	if btc != want {
		t.Errorf("ticker[0] = %+v, want %+v", btc, want)
	}
	if resp.Data[1].PercentChange24h != 2.5 {
		t.Errorf("ticker[1] change = %v, want 2.5", resp.Data[1].PercentChange24h)
	}
	if resp.Info.CoinsNum != 12000 || resp.Info.Time != 1700000000 {
		t.Errorf("info = %+v", resp.Info)
	}
}

func TestFetchFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"not found", http.StatusNotFound, ``},
		{"malformed json", http.StatusOK, `{"data": [`},
		{"missing data", http.StatusOK, `{"info": {"coins_num": 1, "time": 1}}`},
		{"null data", http.StatusOK, `{"data": null}`},
		{"missing field", http.StatusOK, `{"data": [{"id": "1", "symbol": "BTC", "name": "Bitcoin", "price_usd": 1, "market_cap_usd": 1}]}`},
		{"wrong type", http.StatusOK, `{"data": [{"id": "1", "symbol": "BTC", "name": "Bitcoin", "price_usd": true, "percent_change_24h": 1, "market_cap_usd": 1}]}`},
		{"non numeric string", http.StatusOK, `{"data": [{"id": "1", "symbol": "BTC", "name": "Bitcoin", "price_usd": "n/a", "percent_change_24h": 1, "market_cap_usd": 1}]}`},
		{"nan price", http.StatusOK, `{"data": [{"id": "1", "symbol": "BTC", "name": "Bitcoin", "price_usd": "NaN", "percent_change_24h": 1, "market_cap_usd": 1}]}`},
		{"nan change", http.StatusOK, `{"data": [{"id": "1", "symbol": "BTC", "name": "Bitcoin", "price_usd": 1, "percent_change_24h": "nan", "market_cap_usd": 1}]}`},
		{"infinite market cap", http.StatusOK, `{"data": [{"id": "1", "symbol": "BTC", "name": "Bitcoin", "price_usd": 1, "percent_change_24h": 1, "market_cap_usd": "Infinity"}]}`},
		{"inf market cap", http.StatusOK, `{"data": [{"id": "1", "symbol": "BTC", "name": "Bitcoin", "price_usd": 1, "percent_change_24h": 1, "market_cap_usd": "-Inf"}]}`},
		{"symbol not a string", http.StatusOK, `{"data": [{"id": "1", "symbol": 7, "name": "Bitcoin", "price_usd": 1, "percent_change_24h": 1, "market_cap_usd": 1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := newTestServer(t, tt.status, tt.body, nil)

			resp, err := c.Fetch(context.Background(), 0, 100)
			if err == nil {
				t.Fatalf("expected error, got %+v", resp)
			}
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("error %T is not a *FetchError", err)
			}
			if fe.Message == "" {
				t.Error("FetchError has an empty message")
			}
		})
	}
}

func TestFetchRejectsBadPageWithoutRequest(t *testing.T) {
	var hits int32
	_, c := newTestServer(t, http.StatusOK, samplePage, &hits)

	for _, page := range [][2]int{{-1, 100}, {0, 0}, {0, -5}} {
		_, err := c.Fetch(context.Background(), page[0], page[1])
		var fe *FetchError
		if !errors.As(err, &fe) {
			t.Errorf("Fetch(%d, %d) err = %v, want *FetchError", page[0], page[1], err)
		}
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Errorf("server saw %d requests, want 0", hits)
	}
}

func TestFetchSingleAttempt(t *testing.T) {
	var hits int32
	_, c := newTestServer(t, http.StatusServiceUnavailable, ``, &hits)

	if _, err := c.Fetch(context.Background(), 0, 100); err == nil {
		t.Fatal("expected error")
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("server saw %d requests, want 1", hits)
	}
}

func TestFetchNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	srv.Close()

	_, err = c.Fetch(context.Background(), 0, 100)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want *FetchError", err)
	}
	if fe.Unwrap() == nil {
		t.Error("network failure should keep its cause")
	}
}

func TestFetchCanceled(t *testing.T) {
	_, c := newTestServer(t, http.StatusOK, samplePage, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx, 0, 100)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled in chain", err)
	}
}

func TestNewClientRejectsRelativeURL(t *testing.T) {
	if _, err := NewClient("api.coinlore.com"); err == nil {
		t.Fatal("expected error for url without scheme")
	}
}

func TestTickersURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"", "https://api.coinlore.com/api/tickers/?start=0&limit=100"},
		{"https://api.coinlore.com", "https://api.coinlore.com/api/tickers/?start=0&limit=100"},
		{"http://localhost:9000/proxy", "http://localhost:9000/proxy/api/tickers/?start=0&limit=100"},
	}
	for _, tt := range tests {
		c, err := NewClient(tt.base)
		if err != nil {
			t.Fatalf("NewClient(%q): %v", tt.base, err)
		}
		if got := c.TickersURL(0, 100); got != tt.want {
			t.Errorf("TickersURL base %q = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestWithTimeoutKeepsHTTPClientSettings(t *testing.T) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	hc := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	c, err := NewClient("", WithHTTPClient(hc), WithTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.http.Timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", c.http.Timeout)
	}
	if c.http.Jar != jar || c.http.CheckRedirect == nil {
		t.Error("caller's jar or redirect policy was dropped")
	}
	if hc.Timeout != 0 {
		t.Errorf("caller's client was modified: timeout = %v", hc.Timeout)
	}
}
