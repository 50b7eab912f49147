package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/temidaradev/coinboard/internal/coinlore"
	"github.com/temidaradev/coinboard/internal/config"
	"github.com/temidaradev/coinboard/internal/logging"
	"github.com/temidaradev/coinboard/internal/session"
	"github.com/temidaradev/coinboard/internal/ui"
	"github.com/temidaradev/coinboard/internal/web"
)

func main() {
	fs := config.Flags(os.Args[0])
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		logging.Init("info", true)
		log.Fatal().Err(err).Msg("could not load config")
	}
	logging.Init(cfg.Log.Level, cfg.Log.Pretty)

	client, err := coinlore.NewClient(cfg.API.BaseURL,
		coinlore.WithTimeout(cfg.API.Timeout),
		coinlore.WithUserAgent(cfg.API.UserAgent),
		coinlore.WithLogger(logging.For("coinlore")),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create api client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := session.NewStore()
	store.Subscribe(func(st session.State) {
		log.Debug().
			Str("phase", st.Phase.String()).
			Bool("loading", st.IsLoading).
			Str("filter", st.Filter.String()).
			Str("query", st.Query).
			Msg("state changed")
	})

	if cfg.Web.Enabled {
		runWeb(ctx, cfg, client, store)
		return
	}
	runWindow(ctx, cfg, client, store)
}

func runWeb(ctx context.Context, cfg *config.Config, client *coinlore.Client, store *session.Store) {
	sess := session.New(client, store,
		session.WithPage(cfg.API.Start, cfg.API.Limit),
		session.WithLogger(logging.For("session")),
	)
	defer sess.Close()
	sess.Open(ctx)

	srv := web.NewServer(sess, cfg.Web.AllowOrigins, logging.For("web"))
	if err := srv.Run(ctx, cfg.Web.Listen); err != nil {
		log.Fatal().Err(err).Msg("http view stopped")
	}
}

func runWindow(ctx context.Context, cfg *config.Config, client *coinlore.Client, store *session.Store) {
	queue := session.NewQueue()
	sess := session.New(client, store,
		session.WithPage(cfg.API.Start, cfg.API.Limit),
		session.WithDispatcher(queue.Dispatch),
		session.WithLogger(logging.For("session")),
	)
	defer sess.Close()

	opts := ui.Options{
		Width:    cfg.Window.Width,
		Height:   cfg.Window.Height,
		Title:    cfg.Window.Title,
		FontSize: cfg.Window.FontSize,
	}
	g, err := ui.NewGame(sess, queue, opts, logging.For("ui"))
	if err != nil {
		log.Fatal().Err(err).Msg("could not set up the window")
	}

	sess.Open(ctx)

	go func() {
		<-ctx.Done()
		sess.Close()
		os.Exit(0)
	}()

	if err := ui.Run(g, opts); err != nil {
		log.Fatal().Err(err).Msg("window closed with error")
	}
}
