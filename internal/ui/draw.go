package ui

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/temidaradev/esset/v2"

	"github.com/temidaradev/coinboard/internal/coinlore"
	"github.com/temidaradev/coinboard/internal/market"
	"github.com/temidaradev/coinboard/internal/present"
	"github.com/temidaradev/coinboard/internal/session"
)

var (
	backgroundColor = color.RGBA{0x1A, 0x23, 0x7E, 255}
	cardColor       = color.RGBA{0x30, 0x3F, 0x9F, 255}
	chipColor       = color.RGBA{0x28, 0x33, 0x93, 255}
	chipActiveColor = color.RGBA{0x64, 0xB5, 0xF6, 255}
	borderColor     = color.RGBA{180, 180, 200, 255}
	focusColor      = color.RGBA{0x64, 0xB5, 0xF6, 255}
	textColor       = color.RGBA{255, 255, 255, 255}
	mutedColor      = color.RGBA{190, 190, 210, 255}
	faintColor      = color.RGBA{150, 150, 170, 255}
	gainColor       = color.RGBA{0x00, 0xE6, 0x76, 255}
	lossColor       = color.RGBA{0xFF, 0x17, 0x44, 255}
	errorColor      = color.RGBA{255, 0, 0, 255}
)

func filterAt(i int) market.Filter { return market.Filters()[i] }

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	l := g.layout()

	g.drawHeader(screen, l)
	g.drawSearch(screen, l)
	g.drawChips(screen, l)

	// Loading, error and list are mutually exclusive.
	switch {
	case g.state.IsLoading || g.state.Phase == session.Idle:
		g.drawCentered(screen, l.list, "Loading...", textColor)
	case g.state.Error != "":
		g.drawCentered(screen, l.list, "Error: "+g.state.Error, errorColor)
	case len(g.view) == 0:
		g.drawCentered(screen, l.list, "No coins match your search.", faintColor)
	default:
		g.drawList(screen, l)
	}
}

func (g *Game) drawHeader(screen *ebiten.Image, l screenLayout) {
	title := "Crypto Dashboard"
	tw, _ := text.Measure(title, g.fontFace, 0)
	x := float64(l.header.Min.X) + (float64(l.header.Dx())-tw)/2.0
	esset.DrawText(screen, title, 0, x, float64(l.header.Min.Y), g.fontFace, textColor)
}

func (g *Game) drawSearch(screen *ebiten.Image, l screenLayout) {
	r := l.search
	stroke := float32(1.0 * g.deviceScale)
	border := borderColor
	if g.state.Query != "" {
		border = focusColor
	}
	vector.StrokeRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), stroke, border, false)

	x := float64(r.Min.X) + l.pad/2
	y := float64(r.Min.Y) + l.pad/2
	if g.state.Query == "" {
		esset.DrawText(screen, "Search cryptocurrencies...", 0, x, y, g.fontFace, faintColor)
		return
	}
	esset.DrawText(screen, g.state.Query+"_", 0, x, y, g.fontFace, textColor)
}

func (g *Game) drawChips(screen *ebiten.Image, l screenLayout) {
	for i, r := range l.chips {
		f := filterAt(i)
		bg := chipColor
		if f == g.state.Filter {
			bg = chipActiveColor
		}
		vector.DrawFilledRect(screen, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), bg, false)
		esset.DrawText(screen, f.Label(), 0, float64(r.Min.X)+l.pad*0.75, float64(r.Min.Y)+l.pad/4, g.fontFace, textColor)
	}
}

func (g *Game) drawCentered(screen *ebiten.Image, r image.Rectangle, msg string, clr color.RGBA) {
	tw, th := text.Measure(msg, g.fontFace, 0)
	x := float64(r.Min.X) + (float64(r.Dx())-tw)/2.0
	y := float64(r.Min.Y) + (float64(r.Dy())-th)/2.0
	esset.DrawText(screen, msg, 0, x, y, g.fontFace, clr)
}

func (g *Game) drawList(screen *ebiten.Image, l screenLayout) {
	if l.list.Empty() {
		return
	}
	dst := screen.SubImage(l.list).(*ebiten.Image)

	step := l.cardHeight + l.cardGap
	first := int(g.scroll / step)
	for i := first; i < len(g.view); i++ {
		top := float64(l.list.Min.Y) + float64(i)*step - g.scroll
		if top > float64(l.list.Max.Y) {
			break
		}
		card := image.Rect(l.list.Min.X, int(top), l.list.Max.X, int(top+l.cardHeight))
		g.drawCard(dst, card, l, g.view[i])
	}
}

func (g *Game) drawCard(dst *ebiten.Image, r image.Rectangle, l screenLayout, t coinlore.Ticker) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), cardColor, false)

	lh := g.physicalLineHeight
	left := float64(r.Min.X) + l.pad
	top := float64(r.Min.Y) + l.pad/2

	esset.DrawText(dst, t.Symbol, 0, left, top, g.fontFace, textColor)
	esset.DrawText(dst, t.Name, 0, left, top+lh, g.fontFace, mutedColor)
	esset.DrawText(dst, "Market Cap: $"+present.MarketCap(t.MarketCapUSD), 0, left, top+lh*2, g.fontFace, faintColor)

	right := float64(r.Max.X) - l.pad
	price := present.Price(t.PriceUSD)
	pw, _ := text.Measure(price, g.fontFace, 0)
	esset.DrawText(dst, price, 0, right-pw, top, g.fontFace, textColor)

	change := present.Change(t.PercentChange24h)
	changeColor := lossColor
	if present.IsGain(t.PercentChange24h) {
		changeColor = gainColor
	}
	cw, _ := text.Measure(change, g.fontFace, 0)
	esset.DrawText(dst, change, 0, right-cw, top+lh, g.fontFace, changeColor)
}
