package mipidsi

import (
	"iter"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/mipidsi/dcs"
	"periph.io/x/devices/v3/mipidsi/rgb565"
)

// ST7735 is the Sitronix ST7735 controller, driving panels up to 132x162.
// Most boards expose a smaller glass that sits offset inside the frame
// memory; pass the visible size and offsets through Opts.
type ST7735 struct{}

// String implements Model.
func (ST7735) String() string {
	return "ST7735"
}

// Size implements Model.
func (ST7735) Size() (int, int) {
	return 132, 162
}

// PixelFormat implements Model. The controller only latches the serial
// interface bits of the pixel format register.
func (ST7735) PixelFormat() dcs.PixelFormat {
	return dcs.PixelFormat{DBI: dcs.BPP16}
}

// Init implements Model.
func (m ST7735) Init(c *dcs.Conn, delay Delayer, opts *Opts, rst gpio.PinOut) (dcs.SetAddressMode, error) {
	return initSequence(c, delay, opts, rst, m.PixelFormat(), st7735Tuning)
}

// WritePixels implements Model.
func (ST7735) WritePixels(c *dcs.Conn, pixels iter.Seq[rgb565.Pixel]) error {
	return writePixels16(c, pixels)
}

// st7735Tuning is the panel tuning written between the orientation commands
// and the mode transitions. The values are the red tab panel settings.
var st7735Tuning = []initStep{
	{cmd: dcs.Raw{Op: 0xB1, Data: []byte{0x01, 0x2C, 0x2D}}}, // frame rate, normal mode
	{cmd: dcs.Raw{Op: 0xB2, Data: []byte{0x01, 0x2C, 0x2D}}}, // frame rate, idle mode
	{cmd: dcs.Raw{Op: 0xB3, Data: []byte{ // frame rate, partial mode
		0x01, 0x2C, 0x2D, 0x01, 0x2C, 0x2D,
	}}},
	{cmd: dcs.Raw{Op: 0xB4, Data: []byte{0x07}}},             // column inversion
	{cmd: dcs.Raw{Op: 0xC0, Data: []byte{0xA2, 0x02, 0x84}}}, // power control 1
	{cmd: dcs.Raw{Op: 0xC1, Data: []byte{0xC5}}},             // power control 2
	{cmd: dcs.Raw{Op: 0xC2, Data: []byte{0x0A, 0x00}}},       // power control 3
	{cmd: dcs.Raw{Op: 0xC3, Data: []byte{0x8A, 0x2A}}},       // power control 4
	{cmd: dcs.Raw{Op: 0xC4, Data: []byte{0x8A, 0xEE}}},       // power control 5
	{cmd: dcs.Raw{Op: 0xC5, Data: []byte{0x0E}}},             // VCOM control
	{cmd: dcs.Raw{Op: 0xE0, Data: []byte{ // positive gamma
		0x02, 0x1C, 0x07, 0x12, 0x37, 0x32, 0x29, 0x2D,
		0x29, 0x25, 0x2B, 0x39, 0x00, 0x01, 0x03, 0x10,
	}}},
	{cmd: dcs.Raw{Op: 0xE1, Data: []byte{ // negative gamma
		0x03, 0x1D, 0x07, 0x06, 0x2E, 0x2C, 0x29, 0x2D,
		0x2E, 0x2E, 0x37, 0x3F, 0x00, 0x00, 0x02, 0x10,
	}}},
}
