package screen

import (
	"fmt"
	"image/color"
	"unicode/utf8"

	"oled-menu-ctrl/menu"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

const (
	WIDTH  = 128
	HEIGHT = 64
	ADDR   = 0x3C
)

var (
	onColor  = color.RGBA{255, 255, 255, 255}
	offColor = color.RGBA{0, 0, 0, 255}
)

type Colors struct {
	Background color.RGBA
	Foreground color.RGBA
	Value      color.RGBA
	Unit       color.RGBA
	Cursor     color.RGBA
	Title      color.RGBA
}

// Monochrome matches a single color OLED.
func Monochrome() Colors {
	return Colors{
		Background: offColor,
		Foreground: onColor,
		Value:      onColor,
		Unit:       onColor,
		Cursor:     onColor,
		Title:      onColor,
	}
}

// Layout is the character grid the menu is drawn on.
type Layout struct {
	Font    tinyfont.Fonter
	FontX   int16
	FontY   int16
	OffsetX int16
	OffsetY int16
	Width   int16
	Height  int16
	Colors  Colors
	// Gauge shows an edited field full screen with a bar.
	Gauge bool
}

func DefaultLayout() Layout {
	return Layout{
		Font:    &proggy.TinySZ8pt7b,
		FontX:   7,
		FontY:   16,
		OffsetX: 0,
		OffsetY: 3,
		Width:   WIDTH,
		Height:  HEIGHT,
		Colors:  Monochrome(),
	}
}

func (l Layout) Cols() int { return int(l.Width / l.FontX) }
func (l Layout) Rows() int { return int(l.Height / l.FontY) }

// baseline of text in row r.
func (l Layout) baseline(r int) int16 {
	return int16(r)*l.FontY + l.FontY - l.OffsetY
}

// Renderer draws the navigator state, but only when it changed.
type Renderer struct {
	pager  Pager
	layout Layout

	menu   *menu.Submenu
	top    int
	frames int
}

func NewRenderer(pager Pager, layout Layout) *Renderer {
	return &Renderer{
		pager:  pager,
		layout: layout,
	}
}

// Frames counts completed redraws.
func (r *Renderer) Frames() int { return r.frames }

// Render consumes the navigator's changed flag. Nothing touches the display
// when the flag is clear.
func (r *Renderer) Render(nav *menu.Navigator) (bool, error) {
	if !nav.TakeChanged() {
		return false, nil
	}
	r.scroll(nav)

	r.pager.FirstPage()
	for {
		r.draw(nav)
		if !r.pager.NextPage() {
			break
		}
	}
	r.frames++
	if err := r.pager.Err(); err != nil {
		return true, fmt.Errorf("screen: flush: %w", err)
	}
	return true, nil
}

// scroll moves the item window so the selection stays visible.
func (r *Renderer) scroll(nav *menu.Navigator) {
	cur := nav.Current()
	if cur != r.menu {
		r.menu = cur
		r.top = 0
	}
	visible := r.layout.Rows() - 1
	if visible < 1 {
		visible = 1
	}
	sel := nav.Selected()
	if sel < r.top {
		r.top = sel
	}
	if sel >= r.top+visible {
		r.top = sel - visible + 1
	}
	if last := cur.Len() - visible; last >= 0 && r.top > last {
		r.top = last
	}
}

func (r *Renderer) draw(nav *menu.Navigator) {
	l := r.layout
	d := r.pager
	cur := nav.Current()

	if f, ok := nav.SelectedNode().(*menu.Field); ok && l.Gauge && nav.Editing() {
		r.drawGauge(f)
		return
	}

	WriteText(d, l, 0, fit(cur.Title, l.Cols()), l.Colors.Title)
	underline := l.FontY - 1
	FillRect(d, 0, underline, l.Width, 1, l.Colors.Foreground)

	for row := 1; row < l.Rows(); row++ {
		i := r.top + row - 1
		if i >= cur.Len() {
			break
		}
		selected := i == nav.Selected()
		r.drawItem(row, cur.At(i), selected, selected && nav.Editing())
	}
}

func (r *Renderer) drawItem(row int, n menu.Node, selected, editing bool) {
	l := r.layout
	d := r.pager
	fg := l.Colors.Foreground

	if selected && !editing {
		FillRect(d, 0, int16(row)*l.FontY, l.Width, l.FontY, l.Colors.Cursor)
		fg = l.Colors.Background
	}

	text := fit(ItemText(n, editing), l.Cols())
	WriteText(d, l, row, text, fg)

	if n.Kind() == menu.KindSubmenu {
		writeCells(d, l, l.Cols()-1, row, ">", fg)
	}

	if editing {
		// Value under the cursor is drawn inverted.
		f := n.(*menu.Field)
		col := utf8.RuneCountInString(f.Name) + 1
		value := fmt.Sprint(f.Value())
		if col+len(value) > l.Cols() {
			return
		}
		x := l.OffsetX + int16(col)*l.FontX
		FillRect(d, x, int16(row)*l.FontY, int16(len(value))*l.FontX, l.FontY, l.Colors.Cursor)
		writeCells(d, l, col, row, value, l.Colors.Background)
	}
}

// ItemText is the row label of a node. Fields read "label value unit", with
// a ':' after the label while the value is being edited.
func ItemText(n menu.Node, editing bool) string {
	f, ok := n.(*menu.Field)
	if !ok {
		return n.Label()
	}
	sep := " "
	if editing {
		sep = ":"
	}
	s := fmt.Sprintf("%s%s%d", f.Name, sep, f.Value())
	if f.Unit != "" {
		s += " " + f.Unit
	}
	return s
}

// WriteText writes s on a text row, one character per grid cell.
func WriteText(d drivers.Displayer, l Layout, row int, s string, c color.RGBA) {
	writeCells(d, l, 0, row, s, c)
}

func writeCells(d drivers.Displayer, l Layout, col, row int, s string, c color.RGBA) {
	y := l.baseline(row)
	x := l.OffsetX + int16(col)*l.FontX
	for _, ch := range s {
		tinyfont.DrawChar(d, l.Font, x, y, ch, c)
		x += l.FontX
	}
}

func FillRect(d drivers.Displayer, x, y, w, h int16, c color.RGBA) {
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			d.SetPixel(px, py, c)
		}
	}
}

func fit(s string, cols int) string {
	if cols <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == cols {
			return s[:i]
		}
		n++
	}
	return s
}
