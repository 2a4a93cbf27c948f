package screen

import (
	"fmt"
	"image/color"
	"math"

	"oled-menu-ctrl/menu"

	"tinygo.org/x/drivers"
)

// Bar is a rounded outline between two inclusive corners, filled from the left.
type Bar struct {
	X0, Y0 int16
	X1, Y1 int16
	Radius int16
}

const (
	quadrantTopLeft = iota + 1
	quadrantTopRight
	quadrantBottomLeft
	quadrantBottomRight
)

// Draw outlines the bar and fills fill/of of its inside.
func (b Bar) Draw(d drivers.Displayer, fill, of int, c color.RGBA) {
	r := b.radius()

	for y := b.Y0 + r; y <= b.Y1-r; y++ {
		d.SetPixel(b.X0, y, c)
		d.SetPixel(b.X1, y, c)
	}
	for x := b.X0 + r; x <= b.X1-r; x++ {
		d.SetPixel(x, b.Y0, c)
		d.SetPixel(x, b.Y1, c)
	}
	drawCorner(d, b.X0+r, b.Y0+r, r, quadrantTopLeft, c)
	drawCorner(d, b.X1-r, b.Y0+r, r, quadrantTopRight, c)
	drawCorner(d, b.X0+r, b.Y1-r, r, quadrantBottomLeft, c)
	drawCorner(d, b.X1-r, b.Y1-r, r, quadrantBottomRight, c)

	inner := int(b.X1 - b.X0 - 1)
	n := inner
	if of > 0 {
		if fill < 0 {
			fill = 0
		}
		if fill > of {
			fill = of
		}
		n = inner * fill / of
	}
	for x := b.X0 + 1; x < b.X0+1+int16(n); x++ {
		yStart, yEnd := b.Y0+1, b.Y1-1
		var dx int16
		switch {
		case x < b.X0+r:
			dx = b.X0 + r - x
		case x > b.X1-r:
			dx = x - (b.X1 - r)
		}
		if dx > 0 {
			dy := int16(math.Ceil(math.Sqrt(float64(r*r - dx*dx))))
			yStart = b.Y0 + r - dy + 1
			yEnd = b.Y1 - r + dy - 1
		}
		for y := yStart; y <= yEnd; y++ {
			d.SetPixel(x, y, c)
		}
	}
}

// radius is clamped to half the shorter side.
func (b Bar) radius() int16 {
	r := b.Radius
	if h := (b.Y1 - b.Y0) / 2; r > h {
		r = h
	}
	if w := (b.X1 - b.X0) / 2; r > w {
		r = w
	}
	if r < 0 {
		r = 0
	}
	return r
}

func drawCorner(d drivers.Displayer, cx, cy, radius int16, quadrant int, c color.RGBA) {
	for dx := int16(0); dx <= radius; dx++ {
		dy := int16(math.Round(math.Sqrt(float64(radius*radius - dx*dx))))
		switch quadrant {
		case quadrantTopRight:
			d.SetPixel(cx+dx, cy-dy, c)
			d.SetPixel(cx+dy, cy-dx, c)
		case quadrantTopLeft:
			d.SetPixel(cx-dx, cy-dy, c)
			d.SetPixel(cx-dy, cy-dx, c)
		case quadrantBottomLeft:
			d.SetPixel(cx-dx, cy+dy, c)
			d.SetPixel(cx-dy, cy+dx, c)
		case quadrantBottomRight:
			d.SetPixel(cx+dx, cy+dy, c)
			d.SetPixel(cx+dy, cy+dx, c)
		}
	}
}

// drawGauge replaces the item list while a field is edited: the field name as
// title, the value on the first row and a bar for its position in the range.
func (r *Renderer) drawGauge(f *menu.Field) {
	l := r.layout
	d := r.pager

	WriteText(d, l, 0, fit(f.Name, l.Cols()), l.Colors.Title)
	FillRect(d, 0, l.FontY-1, l.Width, 1, l.Colors.Foreground)

	value := fmt.Sprint(f.Value())
	if f.Unit != "" {
		value += " " + f.Unit
	}
	WriteText(d, l, 1, fit(value, l.Cols()), l.Colors.Value)

	top := 2*l.FontY + 1
	bottom := l.Height - 2
	if bottom-top < 4 {
		return
	}
	bar := Bar{X0: 1, Y0: top, X1: l.Width - 2, Y1: bottom, Radius: (bottom - top) / 2}
	bar.Draw(d, f.Value()-f.Min, f.Max-f.Min, l.Colors.Foreground)
}
