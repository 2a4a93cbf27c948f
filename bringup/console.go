package bringup

import (
	"image/color"

	"oled-menu-ctrl/screen"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

// Console is a scrolling text terminal on the panel for bring-up messages,
// shown before the menu takes over.
type Console struct {
	panel *termPanel
	term  *tinyterm.Terminal
}

func NewConsole(d drivers.Displayer) *Console {
	p := &termPanel{Displayer: d, bg: screen.Monochrome().Background}
	t := tinyterm.NewTerminal(p)
	t.Configure(&tinyterm.Config{
		Font:       &proggy.TinySZ8pt7b,
		FontHeight: 10,
		FontOffset: 6,
	})
	return &Console{panel: p, term: t}
}

// Write prints p and flushes the panel.
func (c *Console) Write(p []byte) (int, error) {
	n, err := c.term.Write(p)
	if err != nil {
		return n, err
	}
	return n, c.panel.Display()
}

// termPanel gives a plain displayer the extra calls the terminal makes.
type termPanel struct {
	drivers.Displayer
	bg color.RGBA
}

func (p *termPanel) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	screen.FillRect(p.Displayer, x, y, width, height, c)
	return nil
}

// SetScroll is called when the text reaches the bottom. The OLEDs here have
// no hardware scroll, so the panel is blanked and writing continues on a
// clean screen.
func (p *termPanel) SetScroll(line int16) {
	w, h := p.Size()
	screen.FillRect(p.Displayer, 0, 0, w, h, p.bg)
}

func (p *termPanel) SetRotation(rotation drivers.Rotation) error { return nil }
