package mipidsi

import (
	"iter"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/mipidsi/dcs"
	"periph.io/x/devices/v3/mipidsi/rgb565"
)

// ILI9488 is the Ilitek ILI9488 controller, driving panels up to 320x480.
type ILI9488 struct{}

// String implements Model.
func (ILI9488) String() string {
	return "ILI9488"
}

// Size implements Model.
func (ILI9488) Size() (int, int) {
	return 320, 480
}

// PixelFormat implements Model. 16 bits per pixel on both the parallel and
// the serial interface.
func (ILI9488) PixelFormat() dcs.PixelFormat {
	return dcs.PixelFormatAll(dcs.BPP16)
}

// Init implements Model.
func (m ILI9488) Init(c *dcs.Conn, delay Delayer, opts *Opts, rst gpio.PinOut) (dcs.SetAddressMode, error) {
	return initSequence(c, delay, opts, rst, m.PixelFormat(), ili9488Tuning)
}

// WritePixels implements Model.
func (ILI9488) WritePixels(c *dcs.Conn, pixels iter.Seq[rgb565.Pixel]) error {
	return writePixels16(c, pixels)
}

// ili9488Tuning is the panel tuning written between the orientation commands
// and the mode transitions. The values are datasheet register settings known
// to work on common 3.5" panels.
//
// TODO: derive the scan direction byte of the display function control
// register from the configured rotation instead of fixing it.
var ili9488Tuning = []initStep{
	{cmd: dcs.Raw{Op: 0xC5, Data: []byte{0x00, 0x1E, 0x80, 0xB1}}}, // VCOM control
	{cmd: dcs.Raw{Op: 0xB1, Data: []byte{0xB0}}},                   // frame rate, 70Hz
	{cmd: dcs.Raw{Op: 0xE0, Data: []byte{ // positive gamma
		0x00, 0x13, 0x18, 0x04, 0x0F, 0x06, 0x3A, 0x56,
		0x4D, 0x03, 0x0A, 0x06, 0x30, 0x3E, 0x0F,
	}}},
	{cmd: dcs.Raw{Op: 0xE1, Data: []byte{ // negative gamma
		0x00, 0x13, 0x18, 0x01, 0x11, 0x06, 0x38, 0x34,
		0x4D, 0x06, 0x0D, 0x0B, 0x31, 0x37, 0x0F,
	}}},
	{cmd: dcs.Raw{Op: 0xB6, Data: []byte{0x00, 0x42}}}, // display function control, scan right to left
}
