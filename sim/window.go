//go:build !tinygo && cgo

package sim

import (
	"image"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

var (
	pixelOn  = color.RGBA{R: 0x9c, G: 0xe0, B: 0xff, A: 0xff}
	pixelOff = color.RGBA{R: 0x05, G: 0x08, B: 0x10, A: 0xff}
)

// RunWindow shows the panel scaled up and maps keys onto the board:
// Right/Left turn the knob, Enter is the encoder switch, Space the gesture
// button. It blocks until the window closes.
func RunWindow(title string, b *Board, l Cycler, scale int) error {
	if scale <= 0 {
		scale = 4
	}
	w, h := b.Panel.Size()
	g := &game{board: b, loop: l}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(int(w)*scale, int(h)*scale)
	ebiten.SetTPS(200)
	return ebiten.RunGame(g)
}

type game struct {
	board *Board
	loop  Cycler
	img   *image.RGBA
	fbImg *ebiten.Image
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.board.Knob.Turn(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.board.Knob.Turn(-1)
	}
	g.board.Switch.Set(ebiten.IsKeyPressed(ebiten.KeyEnter))
	g.board.Button.Set(ebiten.IsKeyPressed(ebiten.KeySpace))

	if _, err := g.loop.Cycle(time.Now()); err != nil {
		return err
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	w, h := g.board.Panel.Size()
	if g.img == nil {
		g.img = image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
		g.fbImg = ebiten.NewImage(int(w), int(h))
	}
	g.board.Panel.Snapshot(g.img, pixelOn, pixelOff)
	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := g.board.Panel.Size()
	return int(w), int(h)
}
