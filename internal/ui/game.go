package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/rs/zerolog"
	"github.com/temidaradev/esset/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/temidaradev/coinboard/internal/coinlore"
	"github.com/temidaradev/coinboard/internal/market"
	"github.com/temidaradev/coinboard/internal/session"
)

const glyphsToPreload = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.,:/$%-+ "

type Options struct {
	Width    int
	Height   int
	Title    string
	FontSize float64
}

// Game is the dashboard screen. All state changes happen inside Update: the
// session's queue is drained there and input is applied there.
type Game struct {
	sess  *session.Session
	store *session.Store
	queue *session.Queue
	log   zerolog.Logger

	fontFace           text.Face
	deviceScale        float64
	physicalLineHeight float64

	width, height int

	state session.State
	view  []coinlore.Ticker
	dirty atomic.Bool
	stop  func()

	scroll float64
	runes  []rune
}

func NewGame(sess *session.Session, queue *session.Queue, opts Options, log zerolog.Logger) (*Game, error) {
	deviceScale := ebiten.Monitor().DeviceScaleFactor()

	scaledFontSize := opts.FontSize * deviceScale
	fontFace, err := esset.GetFont(goregular.TTF, int(scaledFontSize))
	if err != nil {
		return nil, fmt.Errorf("font could not be loaded with scaled size %f: %w", scaledFontSize, err)
	}

	log.Debug().Msg("glyph caching")
	tempImage := ebiten.NewImage(1, 1)
	text.Draw(tempImage, glyphsToPreload, fontFace, &text.DrawOptions{})

	g := &Game{
		sess:               sess,
		store:              sess.Store(),
		queue:              queue,
		log:                log,
		fontFace:           fontFace,
		deviceScale:        deviceScale,
		physicalLineHeight: scaledFontSize*1.5 + 5.0*deviceScale,
	}
	g.stop = g.store.Subscribe(func(session.State) { g.dirty.Store(true) })
	g.dirty.Store(true)
	return g, nil
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, opts Options) error {
	defer g.stop()

	ebiten.SetWindowSize(opts.Width, opts.Height)
	ebiten.SetWindowTitle(opts.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}

func (g *Game) Update() error {
	g.queue.Drain()
	g.handleInput()

	if g.dirty.Swap(false) {
		g.refresh()
	}
	return nil
}

func (g *Game) refresh() {
	prev := g.state
	g.state = g.store.Snapshot()
	g.view = g.state.Display()

	if prev.Query != g.state.Query || prev.Filter != g.state.Filter {
		g.scroll = 0
	}
	if prev.Phase != g.state.Phase {
		g.log.Debug().
			Str("phase", g.state.Phase.String()).
			Int("tickers", len(g.state.Tickers)).
			Msg("screen state changed")
	}
	g.clampScroll()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	g.width = int(float64(outsideWidth) * g.deviceScale)
	g.height = int(float64(outsideHeight) * g.deviceScale)
	return g.width, g.height
}

func (g *Game) setFilter(f market.Filter) {
	if f == g.store.Filter() {
		return
	}
	g.log.Debug().Str("filter", f.String()).Msg("filter selected")
	g.store.SetFilter(f)
}

func (g *Game) setQuery(q string) {
	g.store.SetQuery(q)
}
