package session

import (
	"sync"
	"time"

	"github.com/temidaradev/coinboard/internal/coinlore"
	"github.com/temidaradev/coinboard/internal/market"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// State is a copy of the screen state at one moment.
type State struct {
	Tickers   []coinlore.Ticker
	IsLoading bool
	Error     string
	Filter    market.Filter
	Query     string
	Phase     Phase
	UpdatedAt time.Time
}

// Display derives the list the screen shows.
func (s State) Display() []coinlore.Ticker {
	return market.DeriveDisplayList(s.Tickers, s.Query, s.Filter)
}

// Store holds the state of one screen. Every change is followed by a call to
// each subscriber, made after the lock is released.
type Store struct {
	mu        sync.RWMutex
	state     State
	observers []*observer
	now       func() time.Time
}

type observer struct {
	fn func(State)
}

func NewStore() *Store {
	return &Store{
		state: State{Tickers: []coinlore.Ticker{}},
		now:   time.Now,
	}
}

// Subscribe registers fn for change notifications. The returned func removes it.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	o := &observer{fn: fn}

	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, cur := range s.observers {
			if cur == o {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) Display() []coinlore.Ticker {
	return s.Snapshot().Display()
}

func (s *Store) Filter() market.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Filter
}

func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Query
}

func (s *Store) SetFilter(f market.Filter) {
	s.update(func(st *State) bool {
		if st.Filter == f {
			return false
		}
		st.Filter = f
		return true
	})
}

func (s *Store) SetQuery(q string) {
	s.update(func(st *State) bool {
		if st.Query == q {
			return false
		}
		st.Query = q
		return true
	})
}

// BeginFetch moves Idle to Loading and clears the error. It refuses any other
// phase, so a screen fetches at most once.
func (s *Store) BeginFetch() bool {
	return s.update(func(st *State) bool {
		if st.Phase != Idle {
			return false
		}
		st.Phase = Loading
		st.IsLoading = true
		st.Error = ""
		return true
	})
}

// CompleteFetch replaces the tickers with the page just fetched.
func (s *Store) CompleteFetch(resp *coinlore.TickerListResponse) {
	tickers := []coinlore.Ticker{}
	if resp != nil && resp.Data != nil {
		tickers = append(tickers, resp.Data...)
	}
	s.update(func(st *State) bool {
		st.Tickers = tickers
		st.Phase = Success
		st.IsLoading = false
		st.Error = ""
		return true
	})
}

// FailFetch records err's message. Tickers are left as they were.
func (s *Store) FailFetch(err error) {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	s.update(func(st *State) bool {
		st.Error = msg
		st.Phase = Failure
		st.IsLoading = false
		return true
	})
}

func (s *Store) update(mutate func(*State) bool) bool {
	s.mu.Lock()
	if !mutate(&s.state) {
		s.mu.Unlock()
		return false
	}
	s.state.UpdatedAt = s.now()
	snap := s.copyLocked()
	observers := append([]*observer(nil), s.observers...)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(snap)
	}
	return true
}

func (s *Store) copyLocked() State {
	st := s.state
	st.Tickers = append([]coinlore.Ticker(nil), s.state.Tickers...)
	if st.Tickers == nil {
		st.Tickers = []coinlore.Ticker{}
	}
	return st
}
