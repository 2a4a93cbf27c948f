// Package sim stands in for the controller hardware on a desktop: an
// in-memory OLED, a virtual knob and buttons, and runners that drive the
// loop headless or in a window.
package sim

import (
	"image"
	"image/color"
	"strings"
	"sync"
)

// Framebuffer is a monochrome panel. Drawing goes to a back buffer; Display
// copies it to the front buffer that viewers read.
type Framebuffer struct {
	mu       sync.Mutex
	width    int16
	height   int16
	back     []bool
	front    []bool
	displays int
}

func NewFramebuffer(width, height int16) *Framebuffer {
	n := int(width) * int(height)
	return &Framebuffer{
		width:  width,
		height: height,
		back:   make([]bool, n),
		front:  make([]bool, n),
	}
}

func (f *Framebuffer) Size() (x, y int16) { return f.width, f.height }

func (f *Framebuffer) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return
	}
	f.back[int(y)*int(f.width)+int(x)] = c.R != 0 || c.G != 0 || c.B != 0
}

func (f *Framebuffer) Display() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copy(f.front, f.back)
	f.displays++
	return nil
}

// Displays counts flushes.
func (f *Framebuffer) Displays() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.displays
}

// Lit reports a pixel of the last flushed frame.
func (f *Framebuffer) Lit(x, y int16) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if x < 0 || y < 0 || x >= f.width || y >= f.height {
		return false
	}
	return f.front[int(y)*int(f.width)+int(x)]
}

// Snapshot renders the last flushed frame into an RGBA image.
func (f *Framebuffer) Snapshot(dst *image.RGBA, on, off color.RGBA) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := int(f.width)
	for i, lit := range f.front {
		c := off
		if lit {
			c = on
		}
		dst.SetRGBA(i%w, i/w, c)
	}
}

// String draws the last flushed frame as text, two pixel rows per line.
func (f *Framebuffer) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sb strings.Builder
	w := int(f.width)
	for y := 0; y < int(f.height); y += 2 {
		line := make([]rune, w)
		for x := 0; x < w; x++ {
			top := f.front[y*w+x]
			bottom := y+1 < int(f.height) && f.front[(y+1)*w+x]
			switch {
			case top && bottom:
				line[x] = '█'
			case top:
				line[x] = '▀'
			case bottom:
				line[x] = '▄'
			default:
				line[x] = ' '
			}
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
