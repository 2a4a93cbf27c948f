package screen

import (
	"image/color"

	"tinygo.org/x/drivers"
)

// Pager draws a frame in horizontal bands: FirstPage, draw, NextPage, draw
// again while NextPage returns true. Drawing goes through the embedded
// Displayer and is clipped to the current band.
type Pager interface {
	drivers.Displayer
	FirstPage()
	NextPage() bool
	// Err returns the flush error of the last completed frame.
	Err() error
}

// PagedDisplay adds paging on top of a full-buffer display. Each band is
// cleared when it is entered and the panel is flushed once, after the last
// band.
type PagedDisplay struct {
	dev        drivers.Displayer
	background color.RGBA
	pageHeight int16

	top   int16
	pages int
	err   error
}

// NewPagedDisplay splits dev into bands of pageHeight rows. A non-positive
// height draws the whole panel as one page.
func NewPagedDisplay(dev drivers.Displayer, pageHeight int16, background color.RGBA) *PagedDisplay {
	_, h := dev.Size()
	if pageHeight <= 0 || pageHeight > h {
		pageHeight = h
	}
	return &PagedDisplay{
		dev:        dev,
		background: background,
		pageHeight: pageHeight,
	}
}

func (p *PagedDisplay) Size() (x, y int16) {
	return p.dev.Size()
}

func (p *PagedDisplay) SetPixel(x, y int16, c color.RGBA) {
	if y < p.top || y >= p.top+p.pageHeight {
		return
	}
	p.dev.SetPixel(x, y, c)
}

// Display flushes the device directly, outside of a paging loop.
func (p *PagedDisplay) Display() error {
	return p.dev.Display()
}

func (p *PagedDisplay) FirstPage() {
	p.top = 0
	p.pages = 1
	p.err = nil
	p.clearBand()
}

func (p *PagedDisplay) NextPage() bool {
	_, h := p.dev.Size()
	p.top += p.pageHeight
	if p.top >= h {
		p.top = 0
		p.err = p.dev.Display()
		return false
	}
	p.pages++
	p.clearBand()
	return true
}

func (p *PagedDisplay) Err() error { return p.err }

// Pages is the number of bands drawn in the last frame.
func (p *PagedDisplay) Pages() int { return p.pages }

func (p *PagedDisplay) clearBand() {
	w, h := p.dev.Size()
	end := p.top + p.pageHeight
	if end > h {
		end = h
	}
	for y := p.top; y < end; y++ {
		for x := int16(0); x < w; x++ {
			p.dev.SetPixel(x, y, p.background)
		}
	}
}
