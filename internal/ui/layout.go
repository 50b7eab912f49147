package ui

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2/text/v2"

	"github.com/temidaradev/coinboard/internal/market"
)

// screenLayout is the position of every fixed element for the current size.
type screenLayout struct {
	header image.Rectangle
	search image.Rectangle
	chips  []image.Rectangle
	list   image.Rectangle

	pad        float64
	cardHeight float64
	cardGap    float64
}

func (g *Game) layout() screenLayout {
	s := g.deviceScale
	pad := 16.0 * s
	lh := g.physicalLineHeight
	w := g.width

	var l screenLayout
	l.pad = pad
	l.cardGap = 12.0 * s
	l.cardHeight = lh*3 + pad

	y := pad
	l.header = image.Rect(int(pad), int(y), w-int(pad), int(y+lh*1.5))
	y += lh*1.5 + pad

	l.search = image.Rect(int(pad), int(y), w-int(pad), int(y+lh+pad))
	y += lh + pad*2

	x := pad
	for _, f := range market.Filters() {
		tw, _ := text.Measure(f.Label(), g.fontFace, 0)
		cw := tw + pad*1.5
		l.chips = append(l.chips, image.Rect(int(x), int(y), int(x+cw), int(y+lh+pad/2)))
		x += cw + 8.0*s
	}
	y += lh + pad*1.5

	l.list = image.Rect(int(pad), int(y), w-int(pad), g.height-int(pad))
	return l
}

func (l screenLayout) contentHeight(n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(n)*(l.cardHeight+l.cardGap) - l.cardGap
}

func (g *Game) maxScroll() float64 {
	l := g.layout()
	over := l.contentHeight(len(g.view)) - float64(l.list.Dy())
	if over < 0 {
		return 0
	}
	return over
}

func (g *Game) clampScroll() {
	if g.scroll < 0 {
		g.scroll = 0
	}
	if m := g.maxScroll(); g.scroll > m {
		g.scroll = m
	}
}
