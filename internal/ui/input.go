package ui

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const scrollStep = 40.0

func (g *Game) handleInput() {
	g.handleTyping()

	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.setFilter(g.store.Filter().Next())
	}

	for _, p := range g.justPressedPoints() {
		g.handleClick(p)
	}

	_, dy := ebiten.Wheel()
	step := scrollStep * g.deviceScale
	g.scroll -= dy * step
	if repeatingKeyPressed(ebiten.KeyDown) {
		g.scroll += step
	}
	if repeatingKeyPressed(ebiten.KeyUp) {
		g.scroll -= step
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		g.scroll += float64(g.layout().list.Dy())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		g.scroll -= float64(g.layout().list.Dy())
	}
	g.clampScroll()
}

func (g *Game) handleTyping() {
	query := g.store.Query()
	changed := false

	g.runes = ebiten.AppendInputChars(g.runes[:0])
	if len(g.runes) > 0 {
		query += string(g.runes)
		changed = true
	}
	if repeatingKeyPressed(ebiten.KeyBackspace) && len(query) > 0 {
		r := []rune(query)
		query = string(r[:len(r)-1])
		changed = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && query != "" {
		query = ""
		changed = true
	}

	if changed {
		g.setQuery(query)
	}
}

// justPressedPoints returns mouse clicks and new touches of this tick.
func (g *Game) justPressedPoints() []image.Point {
	var pts []image.Point
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		pts = append(pts, image.Pt(x, y))
	}
	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		pts = append(pts, image.Pt(x, y))
	}
	return pts
}

func (g *Game) handleClick(p image.Point) {
	l := g.layout()
	for i, r := range l.chips {
		if p.In(r) {
			g.setFilter(filterAt(i))
			return
		}
	}
}

func repeatingKeyPressed(key ebiten.Key) bool {
	const (
		delay    = 30
		interval = 3
	)
	d := inpututil.KeyPressDuration(key)
	if d == 1 {
		return true
	}
	if d >= delay && (d-delay)%interval == 0 {
		return true
	}
	return false
}
