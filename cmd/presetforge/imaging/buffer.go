// Package imaging holds the in-memory pixel buffer used by PresetForge and
// the per-pixel operations applied to it.
package imaging

import (
	"fmt"
	"image"
	"image/color"
)

// Channel offsets inside a BGR pixel.
const (
	Blue  = 0
	Green = 1
	Red   = 2
)

// Buffer is an 8-bit image with three samples per pixel in B, G, R order,
// stored row-major with a stride of Width*3.
type Buffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewBuffer allocates a black w x h buffer.
func NewBuffer(w, h int) *Buffer {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &Buffer{Width: w, Height: h, Pix: make([]uint8, w*h*3)}
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * 3
}

// At returns the pixel at x, y as B, G, R.
func (b *Buffer) At(x, y int) (blue, green, red uint8) {
	i := b.offset(x, y)
	return b.Pix[i+Blue], b.Pix[i+Green], b.Pix[i+Red]
}

// Set stores a pixel given in B, G, R order.
func (b *Buffer) Set(x, y int, blue, green, red uint8) {
	i := b.offset(x, y)
	b.Pix[i+Blue] = blue
	b.Pix[i+Green] = green
	b.Pix[i+Red] = red
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Validate checks that Pix matches the dimensions.
func (b *Buffer) Validate() error {
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("negative buffer size %dx%d", b.Width, b.Height)
	}
	if len(b.Pix) != b.Width*b.Height*3 {
		return fmt.Errorf("buffer %dx%d expects %d samples, got %d", b.Width, b.Height, b.Width*b.Height*3, len(b.Pix))
	}
	return nil
}

// FromImage converts img to a BGR buffer. Alpha is dropped.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	buf := NewBuffer(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			buf.Set(x-bounds.Min.X, y-bounds.Min.Y, c.B, c.G, c.R)
		}
	}
	return buf
}

// Image returns an opaque RGBA copy of the buffer.
func (b *Buffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			blue, green, red := b.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: red, G: green, B: blue, A: 0xff})
		}
	}
	return img
}

// Gray returns a luma preview of the buffer.
func (b *Buffer) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			blue, green, red := b.At(x, y)
			img.SetGray(x, y, color.GrayModel.Convert(color.RGBA{R: red, G: green, B: blue, A: 0xff}).(color.Gray))
		}
	}
	return img
}
