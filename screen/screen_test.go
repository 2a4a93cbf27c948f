package screen

import (
	"errors"
	"image/color"
	"testing"

	"oled-menu-ctrl/menu"
	"oled-menu-ctrl/protocol"
)

// panel is a full-buffer monochrome display.
type panel struct {
	w, h     int16
	px       []bool
	sets     int
	displays int
	err      error
}

func newPanel() *panel {
	return &panel{w: WIDTH, h: HEIGHT, px: make([]bool, WIDTH*HEIGHT)}
}

func (p *panel) Size() (x, y int16) { return p.w, p.h }

func (p *panel) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= p.w || y >= p.h {
		return
	}
	p.sets++
	p.px[int(y)*int(p.w)+int(x)] = c.R != 0 || c.G != 0 || c.B != 0
}

func (p *panel) Display() error {
	p.displays++
	return p.err
}

func (p *panel) lit(x, y int16) bool { return p.px[int(y)*int(p.w)+int(x)] }

func TestPagedDisplayPages(t *testing.T) {
	dev := newPanel()
	pd := NewPagedDisplay(dev, 16, offColor)

	pages := 0
	pd.FirstPage()
	for {
		pages++
		pd.SetPixel(3, 20, onColor)
		if !pd.NextPage() {
			break
		}
	}
	if pages != 4 || pd.Pages() != 4 {
		t.Fatalf("pages = %d / %d, want 4", pages, pd.Pages())
	}
	if dev.displays != 1 {
		t.Fatalf("displays = %d, want 1", dev.displays)
	}
	if !dev.lit(3, 20) {
		t.Fatal("pixel in band 1 not drawn")
	}
}

func TestPagedDisplayClipsAndClears(t *testing.T) {
	dev := newPanel()
	dev.SetPixel(5, 40, onColor)
	pd := NewPagedDisplay(dev, 16, offColor)

	pd.FirstPage()
	dev.sets = 0
	pd.SetPixel(1, 50, onColor)
	if dev.sets != 0 {
		t.Fatal("pixel outside the first band reached the device")
	}
	for pd.NextPage() {
	}
	if dev.lit(5, 40) {
		t.Fatal("stale pixel survived the frame")
	}
}

func TestPagedDisplaySinglePage(t *testing.T) {
	dev := newPanel()
	pd := NewPagedDisplay(dev, 0, offColor)
	pd.FirstPage()
	if pd.NextPage() {
		t.Fatal("NextPage = true for a single page frame")
	}
	if pd.Pages() != 1 || dev.displays != 1 {
		t.Fatalf("pages=%d displays=%d", pd.Pages(), dev.displays)
	}
}

func blinkNav() *menu.Navigator {
	root := menu.NewSubmenu("Blink menu",
		menu.NewField("On", "ms", 0, 1000, 10, 10),
		menu.NewField("Off", "ms", 0, 10000, 10, 90),
		menu.NewExit("<Back"),
	)
	return menu.NewNavigator(root)
}

func TestRenderIsDirtyGated(t *testing.T) {
	dev := newPanel()
	r := NewRenderer(NewPagedDisplay(dev, 16, offColor), DefaultLayout())
	nav := blinkNav()

	drawn, err := r.Render(nav)
	if err != nil || !drawn {
		t.Fatalf("first Render = %v, %v", drawn, err)
	}
	if dev.displays != 1 {
		t.Fatalf("displays = %d, want 1", dev.displays)
	}

	sets := dev.sets
	drawn, _ = r.Render(nav)
	if drawn || dev.displays != 1 || dev.sets != sets {
		t.Fatalf("clean Render touched the display: drawn=%v displays=%d", drawn, dev.displays)
	}

	nav.Apply(protocol.RotaryCW)
	if drawn, _ = r.Render(nav); !drawn || dev.displays != 2 {
		t.Fatalf("Render after change drawn=%v displays=%d", drawn, dev.displays)
	}
	if r.Frames() != 2 {
		t.Fatalf("Frames = %d, want 2", r.Frames())
	}
}

func TestRenderInvertsSelection(t *testing.T) {
	dev := newPanel()
	r := NewRenderer(NewPagedDisplay(dev, 16, offColor), DefaultLayout())
	nav := blinkNav()

	r.Render(nav)
	if !dev.lit(127, 20) || dev.lit(127, 36) {
		t.Fatal("row 1 should be inverted, row 2 not")
	}
	if !dev.lit(127, 15) {
		t.Fatal("title underline missing")
	}

	nav.Apply(protocol.RotaryCW)
	r.Render(nav)
	if dev.lit(127, 20) || !dev.lit(127, 36) {
		t.Fatal("selection did not move to row 2")
	}

	// Editing drops the row highlight in favour of the value.
	nav.Apply(protocol.ButtonClicked)
	r.Render(nav)
	if dev.lit(127, 36) {
		t.Fatal("row still inverted while editing")
	}
	if !dev.lit(4*7+1, 33) {
		t.Fatal("edited value not inverted")
	}
}

func TestRenderScrollsToSelection(t *testing.T) {
	root := menu.NewSubmenu("Long",
		menu.NewExit("a"), menu.NewExit("b"), menu.NewExit("c"),
		menu.NewExit("d"), menu.NewExit("e"),
	)
	nav := menu.NewNavigator(root)
	r := NewRenderer(NewPagedDisplay(newPanel(), 16, offColor), DefaultLayout())

	for i := 0; i < 4; i++ {
		nav.Apply(protocol.RotaryCW)
	}
	r.Render(nav)
	if r.top != 2 {
		t.Fatalf("top = %d, want 2", r.top)
	}
	nav.Apply(protocol.RotaryCCW)
	nav.Apply(protocol.RotaryCCW)
	r.Render(nav)
	if r.top != 2 {
		t.Fatalf("top = %d after moving inside window, want 2", r.top)
	}
	nav.Apply(protocol.RotaryCCW)
	r.Render(nav)
	if r.top != 1 {
		t.Fatalf("top = %d, want 1", r.top)
	}
	nav.Apply(protocol.RotaryCCW)
	nav.Apply(protocol.RotaryCCW) // wraps to the last item
	r.Render(nav)
	if r.top != 2 {
		t.Fatalf("top = %d after wrap, want 2", r.top)
	}
}

func TestRenderReportsFlushError(t *testing.T) {
	dev := newPanel()
	dev.err = errors.New("nack")
	r := NewRenderer(NewPagedDisplay(dev, 16, offColor), DefaultLayout())

	drawn, err := r.Render(blinkNav())
	if !drawn || err == nil {
		t.Fatalf("Render = %v, %v, want flush error", drawn, err)
	}
}

func TestItemText(t *testing.T) {
	f := menu.NewField("On", "ms", 0, 1000, 10, 60)
	tests := []struct {
		node    menu.Node
		editing bool
		want    string
	}{
		{f, false, "On 60 ms"},
		{f, true, "On:60 ms"},
		{menu.NewField("Level", "", 0, 9, 1, 3), false, "Level 3"},
		{menu.NewExit("<Back"), false, "<Back"},
		{menu.NewSubmenu("Timing"), false, "Timing"},
	}
	for _, tt := range tests {
		if got := ItemText(tt.node, tt.editing); got != tt.want {
			t.Errorf("ItemText(%s) = %q, want %q", tt.node.Label(), got, tt.want)
		}
	}
}

func TestBarFillsFromTheLeft(t *testing.T) {
	dev := newPanel()
	Bar{X0: 0, Y0: 0, X1: 99, Y1: 19, Radius: 5}.Draw(dev, 1, 2, onColor)

	if !dev.lit(40, 10) || dev.lit(60, 10) {
		t.Fatal("bar not half filled")
	}
	if !dev.lit(60, 0) || !dev.lit(60, 19) || !dev.lit(0, 10) || !dev.lit(99, 10) {
		t.Fatal("outline missing")
	}
	if dev.lit(0, 0) {
		t.Fatal("corner not rounded")
	}
}

func TestRenderGaugeWhileEditing(t *testing.T) {
	dev := newPanel()
	l := DefaultLayout()
	l.Gauge = true
	r := NewRenderer(NewPagedDisplay(dev, 16, offColor), l)
	nav := blinkNav()

	nav.Apply(protocol.ButtonClicked)
	r.Render(nav)
	if dev.lit(127, 20) {
		t.Fatal("item list drawn while editing")
	}
	if !dev.lit(64, 33) || dev.lit(64, 47) {
		t.Fatal("gauge should be outlined and nearly empty")
	}

	for nav.Current().At(0).(*menu.Field).Value() < 1000 {
		nav.Apply(protocol.RotaryCW)
	}
	r.Render(nav)
	if !dev.lit(64, 47) {
		t.Fatal("gauge not full at max")
	}

	nav.Apply(protocol.ButtonClicked)
	r.Render(nav)
	if !dev.lit(127, 20) {
		t.Fatal("list not restored after commit")
	}
}

func TestFitCountsRunes(t *testing.T) {
	tests := []struct {
		s    string
		cols int
		want string
	}{
		{"Größe 12", 3, "Grö"},
		{"Größe", 5, "Größe"},
		{"On", 10, "On"},
		{"On", 0, ""},
	}
	for _, tt := range tests {
		if got := fit(tt.s, tt.cols); got != tt.want {
			t.Errorf("fit(%q, %d) = %q, want %q", tt.s, tt.cols, got, tt.want)
		}
	}
}

func TestWriteTextOneCellPerRune(t *testing.T) {
	l := DefaultLayout()
	wide := newPanel()
	WriteText(wide, l, 1, "éA", onColor)
	plain := newPanel()
	WriteText(plain, l, 1, " A", onColor)

	// The second glyph lands in the second cell either way.
	for y := int16(16); y < 32; y++ {
		for x := l.FontX; x < 2*l.FontX; x++ {
			if wide.lit(x, y) != plain.lit(x, y) {
				t.Fatalf("pixel (%d,%d) differs: second rune not in cell 1", x, y)
			}
		}
	}
}
