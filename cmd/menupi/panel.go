//go:build linux

package main

import (
	"image"
	"image/color"

	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// drawer is the part of a periph display the panel needs.
type drawer interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
}

// panel exposes a periph display as a pixel sink with an explicit flush.
// Pixels are collected in a 1-bit buffer and sent on Display.
type panel struct {
	dev drawer
	img *image1bit.VerticalLSB
}

func newPanel(dev drawer) *panel {
	return &panel{dev: dev, img: image1bit.NewVerticalLSB(dev.Bounds())}
}

func (p *panel) Size() (x, y int16) {
	b := p.img.Bounds()
	return int16(b.Dx()), int16(b.Dy())
}

func (p *panel) SetPixel(x, y int16, c color.RGBA) {
	bit := image1bit.Off
	if c.R|c.G|c.B != 0 {
		bit = image1bit.On
	}
	p.img.SetBit(int(x), int(y), bit)
}

func (p *panel) Display() error {
	return p.dev.Draw(p.img.Bounds(), p.img, image.Point{})
}
