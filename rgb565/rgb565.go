// Package rgb565 provides the 16-bit 5-6-5 color format used by TFT display
// controllers.
//
// Pixels travel to the controller as two bytes each, most significant byte
// first, with red in the top five bits. This package provides the Pixel color
// type and the Image framebuffer implementation storing pixels in wire order.
package rgb565

import (
	"encoding/binary"
	"image"
	"image/color"
)

// Pixel represents a packed 16-bit 5-6-5 color.
// Red occupies the five most significant bits, green the middle six and blue
// the low five.
type Pixel uint16

// New returns the Pixel closest to the given 8-bit channel values.
func New(r, g, b uint8) Pixel {
	return Pixel(uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3))
}

// RGBA converts the Pixel to standard RGBA.
// Each channel is scaled so that full intensity maps to 0xFFFF.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	// Scale 5-bit values by 0xFFFF/0x1F and the 6-bit value by 0xFFFF/0x3F
	// so endpoints land exactly on 0 and 0xFFFF.
	r = uint32(p>>11&0x1F) * 0xFFFF / 0x1F
	g = uint32(p>>5&0x3F) * 0xFFFF / 0x3F
	b = uint32(p&0x1F) * 0xFFFF / 0x1F
	return r, g, b, 0xFFFF
}

// Put writes the pixel's two wire bytes into b, most significant byte first.
// b must be at least 2 bytes long.
func (p Pixel) Put(b []byte) {
	binary.BigEndian.PutUint16(b, uint16(p))
}

// toPixel converts any color.Color to Pixel.
func toPixel(c color.Color) color.Color {
	if p, ok := c.(Pixel); ok {
		return p
	}
	r, g, b, _ := c.RGBA()
	// RGBA returns 16-bit channels. Keep the top 5, 6 and 5 bits.
	return Pixel(uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11))
}

// Model converts colors to Pixel.
var Model = color.ModelFunc(toPixel)

// Image is a framebuffer of Pixel values stored in wire order, two bytes per
// pixel with the most significant byte first. Its Pix slice can be streamed
// to a display without any conversion.
type Image struct {
	Pix    []byte          // Pixel data (2 bytes per pixel, big-endian)
	Stride int             // Bytes per row
	Rect   image.Rectangle // Image bounds
}

// NewImage creates a new Image with the specified bounds.
func NewImage(r image.Rectangle) *Image {
	w, h := r.Dx(), r.Dy()
	if w < 0 || h < 0 {
		return &Image{Rect: r}
	}

	stride := w * 2
	return &Image{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
	}
}

// ColorModel returns the color model of the image.
func (im *Image) ColorModel() color.Model {
	return Model
}

// Bounds returns the image bounds.
func (im *Image) Bounds() image.Rectangle {
	return im.Rect
}

// At returns the color of the pixel at (x, y).
// It implements the image.Image interface.
func (im *Image) At(x, y int) color.Color {
	return im.PixelAt(x, y)
}

// PixelAt returns the Pixel at (x, y).
func (im *Image) PixelAt(x, y int) Pixel {
	if !(image.Point{X: x, Y: y}.In(im.Rect)) {
		return Pixel(0)
	}
	o := im.pixOffset(x, y)
	return Pixel(binary.BigEndian.Uint16(im.Pix[o : o+2]))
}

// Set sets the color of the pixel at (x, y).
func (im *Image) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}.In(im.Rect)) {
		return
	}
	o := im.pixOffset(x, y)
	px := Model.Convert(c).(Pixel)
	binary.BigEndian.PutUint16(im.Pix[o:o+2], uint16(px))
}

// SetPixel sets the Pixel at (x, y).
// This is faster than Set() as it doesn't require color conversion.
func (im *Image) SetPixel(x, y int, p Pixel) {
	if !(image.Point{X: x, Y: y}.In(im.Rect)) {
		return
	}
	o := im.pixOffset(x, y)
	binary.BigEndian.PutUint16(im.Pix[o:o+2], uint16(p))
}

// pixOffset returns the byte offset of the pixel at (x, y).
func (im *Image) pixOffset(x, y int) int {
	return (y-im.Rect.Min.Y)*im.Stride + (x-im.Rect.Min.X)*2
}
