package session

import (
	"errors"
	"testing"

	"github.com/temidaradev/coinboard/internal/coinlore"
	"github.com/temidaradev/coinboard/internal/market"
)

func TestNewStoreStartsIdle(t *testing.T) {
	st := NewStore().Snapshot()
	if st.Phase != Idle || st.IsLoading || st.Error != "" || st.Filter != market.All {
		t.Fatalf("initial state = %+v", st)
	}
	if st.Tickers == nil || len(st.Tickers) != 0 {
		t.Fatalf("initial tickers = %#v, want empty", st.Tickers)
	}
}

func TestBeginFetchOnlyFromIdle(t *testing.T) {
	s := NewStore()
	if !s.BeginFetch() {
		t.Fatal("first BeginFetch refused")
	}
	if s.BeginFetch() {
		t.Fatal("BeginFetch accepted while loading")
	}
	s.CompleteFetch(page(btc))
	if s.BeginFetch() {
		t.Fatal("BeginFetch accepted after success")
	}
}

func TestCompleteFetchReplacesWholesale(t *testing.T) {
	s := NewStore()
	s.BeginFetch()
	s.CompleteFetch(page(btc, eth))
	s.CompleteFetch(page(xrp))

	st := s.Snapshot()
	if len(st.Tickers) != 1 || st.Tickers[0].Symbol != "XRP" {
		t.Fatalf("tickers = %v", st.Tickers)
	}
}

func TestFailFetchKeepsTickers(t *testing.T) {
	s := NewStore()
	s.BeginFetch()
	s.CompleteFetch(page(btc))
	s.FailFetch(errors.New("API error: 502 Bad Gateway"))

	st := s.Snapshot()
	if st.Error != "API error: 502 Bad Gateway" {
		t.Errorf("error = %q", st.Error)
	}
	if st.IsLoading || st.Phase != Failure {
		t.Errorf("state = %+v", st)
	}
	if len(st.Tickers) != 1 {
		t.Errorf("tickers = %v, want the earlier page", st.Tickers)
	}
}

func TestFailFetchEmptyMessage(t *testing.T) {
	s := NewStore()
	s.FailFetch(&coinlore.FetchError{})
	if got := s.Snapshot().Error; got != "unknown error" {
		t.Errorf("error = %q", got)
	}
	s.FailFetch(nil)
	if got := s.Snapshot().Error; got != "unknown error" {
		t.Errorf("error = %q", got)
	}
}

func TestNoOpSettersDoNotNotify(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func(State) { calls++ })

	s.SetFilter(market.All)
	s.SetQuery("")
	if calls != 0 {
		t.Fatalf("notified %d times for no-op changes", calls)
	}

	s.SetFilter(market.TopLosers)
	s.SetQuery("eth")
	if calls != 2 {
		t.Fatalf("notified %d times, want 2", calls)
	}
	if s.Filter() != market.TopLosers || s.Query() != "eth" {
		t.Errorf("filter/query = %v/%q", s.Filter(), s.Query())
	}
}

func TestUnsubscribe(t *testing.T) {
	s := NewStore()
	var a, b int
	stopA := s.Subscribe(func(State) { a++ })
	s.Subscribe(func(State) { b++ })

	s.SetQuery("x")
	stopA()
	s.SetQuery("y")

	if a != 1 || b != 2 {
		t.Fatalf("a=%d b=%d, want 1 and 2", a, b)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.BeginFetch()
	s.CompleteFetch(page(btc, eth))

	snap := s.Snapshot()
	snap.Tickers[0].Symbol = "HACK"

	if s.Snapshot().Tickers[0].Symbol != "BTC" {
		t.Fatal("snapshot aliases store state")
	}
}

func TestDisplayUsesStoredFilterAndQuery(t *testing.T) {
	s := NewStore()
	s.BeginFetch()
	s.CompleteFetch(page(btc, eth, xrp))

	s.SetFilter(market.TopGainers)
	got := s.Display()
	if len(got) != 3 || got[0].Symbol != "XRP" || got[2].Symbol != "ETH" {
		t.Fatalf("gainers = %v", got)
	}

	s.SetQuery("bt")
	got = s.Display()
	if len(got) != 1 || got[0].Symbol != "BTC" {
		t.Fatalf("gainers for bt = %v", got)
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{Idle: "idle", Loading: "loading", Success: "success", Failure: "failure", Phase(9): "unknown"} {
		if p.String() != want {
			t.Errorf("%d -> %q, want %q", int(p), p.String(), want)
		}
	}
}
