package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/temidaradev/coinboard/internal/coinlore"
)

// Fetcher loads one page of tickers. *coinlore.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, start, limit int) (*coinlore.TickerListResponse, error)
}

// Session ties one screen's Store to the single fetch that fills it.
type Session struct {
	ID uuid.UUID

	store    *Store
	fetcher  Fetcher
	dispatch Dispatcher
	start    int
	limit    int
	log      zerolog.Logger

	mu   sync.Mutex
	task *Task
}

type Option func(*Session)

func WithPage(start, limit int) Option {
	return func(s *Session) {
		s.start = start
		s.limit = limit
	}
}

func WithDispatcher(d Dispatcher) Option {
	return func(s *Session) {
		if d != nil {
			s.dispatch = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

func New(fetcher Fetcher, store *Store, opts ...Option) *Session {
	s := &Session{
		ID:       uuid.New(),
		store:    store,
		fetcher:  fetcher,
		dispatch: Immediate,
		start:    coinlore.DefaultStart,
		limit:    coinlore.DefaultLimit,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str("session", s.ID.String()).Logger()
	return s
}

func (s *Session) Store() *Store { return s.store }

// Open starts the screen's one fetch. The Loading transition happens before
// Open returns; the result arrives later through the dispatcher. Calling Open
// again returns the first Task. Observers are notified without s.mu held, so
// they may call Open or Close.
func (s *Session) Open(ctx context.Context) *Task {
	s.mu.Lock()
	if t := s.task; t != nil {
		s.mu.Unlock()
		return t
	}
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	s.task = t
	s.mu.Unlock()

	if !s.store.BeginFetch() {
		s.log.Warn().Msg("store already used, not fetching")
		cancel()
		close(t.done)
		return t
	}
	s.log.Info().Int("start", s.start).Int("limit", s.limit).Msg("loading tickers")

	go s.run(ctx, t)
	return t
}

func (s *Session) run(ctx context.Context, t *Task) {
	defer close(t.done)
	defer t.cancel()

	resp, err := s.fetcher.Fetch(ctx, s.start, s.limit)
	if err == nil && resp == nil {
		err = &coinlore.FetchError{Message: "empty response"}
	}
	t.setErr(err)

	if err != nil {
		s.log.Error().Err(err).Msg("ticker fetch failed")
		s.dispatch(func() { s.store.FailFetch(err) })
		return
	}
	s.log.Info().Int("tickers", len(resp.Data)).Msg("tickers loaded")
	s.dispatch(func() { s.store.CompleteFetch(resp) })
}

// Close cancels the fetch if it is still running.
func (s *Session) Close() {
	s.mu.Lock()
	t := s.task
	s.mu.Unlock()
	if t != nil {
		t.Cancel()
	}
}

// Task is the handle of a running fetch.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	err error
}

func (t *Task) Cancel() { t.cancel() }

// Done is closed once the result has been handed to the dispatcher.
func (t *Task) Done() <-chan struct{} { return t.done }

func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Task) setErr(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()
}
