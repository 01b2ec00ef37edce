// Package mipidsi controls MIPI DCS compatible TFT display controllers via
// SPI.
//
// Supported controllers are the Ilitek ILI9488 (320x480) and the Sitronix
// ST7735 (132x162). Pixels are streamed in 16-bit RGB565 encoding.
//
// See the examples for how to use this package.
package mipidsi

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"iter"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/mipidsi/dcs"
	"periph.io/x/devices/v3/mipidsi/rgb565"
)

// Rotation is the clockwise rotation applied to the displayed image.
type Rotation uint8

// Valid rotation values.
const (
	NoRotation Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Opts defines the options for the device.
type Opts struct {
	// W and H are the visible panel size in pixels, in unrotated
	// coordinates. Zero selects the model's full frame memory.
	W int
	H int

	// ColumnOffset and RowOffset locate the visible glass inside the
	// controller's frame memory, in unrotated coordinates. Small panels
	// often sit offset inside a larger frame memory.
	ColumnOffset int
	RowOffset    int

	// Rotation is the clockwise rotation applied to the displayed image.
	Rotation Rotation

	// Mirror additionally flips the image horizontally, for panels viewed
	// through a mirror or from the back.
	Mirror bool

	// InvertColors enables the controller's color inversion. Some panels
	// are built so that inverted is the correct setting.
	InvertColors bool

	// BGR selects blue-green-red subpixel order. Set it when red and blue
	// appear swapped.
	BGR bool

	// RST is the reset line, if connected. When nil, initialization falls
	// back to the software reset command.
	RST gpio.PinIO

	// Delay is the sleep source for the settle delays initialization and
	// wake-up require. When nil, time.Sleep is used.
	Delay Delayer
}

// DefaultOpts is the recommended default options: the model's full frame
// memory, no rotation, RGB subpixel order, software reset.
var DefaultOpts = Opts{}

// addressMode derives the memory access control value for the requested
// orientation. The refresh order bits track the scan direction bits so the
// panel refresh sweeps the same way the memory is walked.
func (o *Opts) addressMode() dcs.SetAddressMode {
	var mode dcs.SetAddressMode
	if o.Mirror {
		switch o.Rotation {
		case NoRotation:
			mode = dcs.ColumnOrderReverse | dcs.LatchOrderReverse
		case Rotate90:
			mode = dcs.PageOrderReverse | dcs.ColumnOrderReverse | dcs.PageColumnSwap | dcs.LineOrderReverse | dcs.LatchOrderReverse
		case Rotate180:
			mode = dcs.PageOrderReverse | dcs.LineOrderReverse
		case Rotate270:
			mode = dcs.PageColumnSwap
		}
	} else {
		switch o.Rotation {
		case Rotate90:
			mode = dcs.ColumnOrderReverse | dcs.PageColumnSwap | dcs.LatchOrderReverse
		case Rotate180:
			mode = dcs.PageOrderReverse | dcs.ColumnOrderReverse | dcs.LineOrderReverse | dcs.LatchOrderReverse
		case Rotate270:
			mode = dcs.PageOrderReverse | dcs.PageColumnSwap | dcs.LineOrderReverse
		}
	}
	if o.BGR {
		mode |= dcs.ColorOrderBGR
	}
	return mode
}

// spiSpeed is the bus clock for the panel connection. Both supported
// controllers accept writes at this rate.
const spiSpeed = 10 * physic.MegaHertz

// NewSPI returns a Dev for a display controller on a 4-wire SPI port, after
// initializing it.
//
// dc is the data/command selection pin. opts may be nil for DefaultOpts.
// NewSPI blocks for the settle delays the controller requires, a quarter
// second in total.
func NewSPI(p spi.Port, dc gpio.PinOut, model Model, opts *Opts) (*Dev, error) {
	if model == nil {
		return nil, errors.New("mipidsi: display model is required")
	}
	if dc == nil || dc == gpio.INVALID {
		return nil, errors.New("mipidsi: a data/command pin is required")
	}
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.Rotation > Rotate270 {
		return nil, errors.New("mipidsi: invalid rotation")
	}
	if opts.ColumnOffset < 0 || opts.RowOffset < 0 {
		return nil, errors.New("mipidsi: offsets must not be negative")
	}
	nw, nh := model.Size()
	w, h := opts.W, opts.H
	if w == 0 {
		w = nw
	}
	if h == 0 {
		h = nh
	}
	if w <= 0 || w+opts.ColumnOffset > nw {
		return nil, fmt.Errorf("mipidsi: width and column offset must fit the %s frame memory (%dx%d)", model, nw, nh)
	}
	if h <= 0 || h+opts.RowOffset > nh {
		return nil, fmt.Errorf("mipidsi: height and row offset must fit the %s frame memory (%dx%d)", model, nw, nh)
	}

	c, err := p.Connect(spiSpeed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("mipidsi: failed to connect: %w", err)
	}
	maxTxSize := 0
	if limits, ok := c.(conn.Limits); ok {
		maxTxSize = limits.MaxTxSize()
	}
	if maxTxSize == 0 {
		maxTxSize = 4096 // Conservative default.
	}
	delay := opts.Delay
	if delay == nil {
		delay = DefaultDelay
	}

	d := &Dev{
		c:            dcs.New(&spiInterface{c: c, dc: dc, maxTxSize: maxTxSize}),
		model:        model,
		delay:        delay,
		rect:         image.Rect(0, 0, w, h),
		columnOffset: opts.ColumnOffset,
		rowOffset:    opts.RowOffset,
		rotation:     opts.Rotation,
	}
	if opts.Rotation == Rotate90 || opts.Rotation == Rotate270 {
		// The controller swaps its column and page counters, so the
		// caller-facing axes and the panel offsets swap with them.
		d.rect = image.Rect(0, 0, h, w)
		d.columnOffset, d.rowOffset = opts.RowOffset, opts.ColumnOffset
	}

	mode, err := model.Init(d.c, delay, opts, opts.RST)
	if err != nil {
		return nil, err
	}
	d.mode = mode
	return d, nil
}

// Dev is an open handle to the display controller.
type Dev struct {
	// Communication
	c     *dcs.Conn
	model Model
	delay Delayer

	// Display size, rotation applied, and the window position of the
	// visible glass inside the frame memory.
	rect         image.Rectangle
	columnOffset int
	rowOffset    int

	// State
	mode     dcs.SetAddressMode
	rotation Rotation
	halted   bool
}

// String implements conn.Resource.
func (d *Dev) String() string {
	return fmt.Sprintf("mipidsi.Dev{%s %dx%d}", d.model, d.rect.Dx(), d.rect.Dy())
}

// ColorModel implements display.Drawer.
//
// The device works in RGB565; other colors are converted on the fly.
func (d *Dev) ColorModel() color.Model {
	return rgb565.Model
}

// Bounds implements display.Drawer. Min is always {0, 0}. Width and height
// reflect the configured rotation.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Rotation returns the rotation the display was configured with.
func (d *Dev) Rotation() Rotation {
	return d.rotation
}

// AddressMode returns the memory access control value confirmed during
// initialization. It encodes the active scan directions and subpixel order.
func (d *Dev) AddressMode() dcs.SetAddressMode {
	return d.mode
}

// Draw implements display.Drawer.
//
// The update is clipped to the display bounds and to the part of dst the
// source can cover from sp on; pixels outside the clip keep their previous
// content. When src is a *rgb565.Image whose bounds start at sp and match
// dst's size, its backing buffer already is the wire encoding and is
// streamed as-is. Any other image is converted pixel by pixel while
// streaming.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	clipped := dst.Intersect(d.rect).Intersect(src.Bounds().Add(dst.Min.Sub(sp)))
	if clipped.Empty() {
		return nil
	}
	sp = sp.Add(clipped.Min.Sub(dst.Min))
	dst = clipped

	if img, ok := src.(*rgb565.Image); ok && img.Rect.Min == sp &&
		img.Rect.Size() == dst.Size() && img.Stride == 2*dst.Dx() {
		if err := d.setWindow(dst); err != nil {
			return err
		}
		if err := d.c.WriteCommand(dcs.WriteMemoryStart{}); err != nil {
			return err
		}
		return d.c.WriteData(img.Pix[:2*dst.Dx()*dst.Dy()])
	}

	return d.SetPixels(dst, func(yield func(rgb565.Pixel) bool) {
		for y := dst.Min.Y; y < dst.Max.Y; y++ {
			for x := dst.Min.X; x < dst.Max.X; x++ {
				c := src.At(x-dst.Min.X+sp.X, y-dst.Min.Y+sp.Y)
				if !yield(rgb565.Model.Convert(c).(rgb565.Pixel)) {
					return
				}
			}
		}
	})
}

// SetPixels streams pixels into the window r, top to bottom, left to right.
// The sequence is consumed once and must yield exactly r.Dx()*r.Dy() pixels.
// Memory use does not grow with the sequence length, so a whole frame can be
// generated on the fly.
func (d *Dev) SetPixels(r image.Rectangle, pixels iter.Seq[rgb565.Pixel]) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	if !r.In(d.rect) {
		return errors.New("mipidsi: rectangle outside display bounds")
	}
	if r.Empty() {
		return nil
	}
	if err := d.setWindow(r); err != nil {
		return err
	}
	return d.model.WritePixels(d.c, pixels)
}

// Fill sets every pixel in r to px. The region is clipped to the display
// bounds.
func (d *Dev) Fill(r image.Rectangle, px rgb565.Pixel) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	r = r.Intersect(d.rect)
	if r.Empty() {
		return nil
	}
	n := r.Dx() * r.Dy()
	return d.SetPixels(r, func(yield func(rgb565.Pixel) bool) {
		for i := 0; i < n; i++ {
			if !yield(px) {
				return
			}
		}
	})
}

// Write sends a full frame of pre-encoded pixels, two bytes per pixel, most
// significant byte first. The buffer must be exactly 2 * Bounds().Dx() *
// Bounds().Dy() bytes; the Pix field of a full-screen rgb565.Image fits.
func (d *Dev) Write(pixels []byte) (int, error) {
	if d.halted {
		return 0, errors.New("mipidsi: halted")
	}
	if len(pixels) != 2*d.rect.Dx()*d.rect.Dy() {
		return 0, errors.New("mipidsi: invalid buffer size")
	}
	if err := d.setWindow(d.rect); err != nil {
		return 0, err
	}
	if err := d.c.WriteCommand(dcs.WriteMemoryStart{}); err != nil {
		return 0, err
	}
	if err := d.c.WriteData(pixels); err != nil {
		return 0, err
	}
	return len(pixels), nil
}

// Invert enables or disables color inversion, on top of whatever the device
// was initialized with.
func (d *Dev) Invert(invert bool) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	return d.c.WriteCommand(dcs.SetInvertMode(invert))
}

// Sleep puts the panel in its minimum power state, or wakes it up again.
// Frame memory is retained while sleeping. Waking blocks for the settle time
// the controller needs before it accepts further commands.
func (d *Dev) Sleep(sleeping bool) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	if sleeping {
		return d.c.WriteCommand(dcs.EnterSleepMode{})
	}
	if err := d.c.WriteCommand(dcs.ExitSleepMode{}); err != nil {
		return err
	}
	d.delay.Sleep(settleDelay)
	return nil
}

// SetTearingEffect configures the tearing effect output line. Synchronizing
// writes to it avoids visible tearing on fast updates.
func (d *Dev) SetTearingEffect(mode dcs.SetTearingEffect) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	if mode > dcs.TearingHVBlank {
		return errors.New("mipidsi: invalid tearing effect mode")
	}
	return d.c.WriteCommand(mode)
}

// SetScrollArea defines the vertical scrolling region, leaving topFixed
// lines at the top and bottomFixed lines at the bottom pinned. Lines are
// counted in frame memory rows, unaffected by rotation.
func (d *Dev) SetScrollArea(topFixed, bottomFixed int) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	_, nh := d.model.Size()
	if topFixed < 0 || bottomFixed < 0 || topFixed+bottomFixed > nh {
		return errors.New("mipidsi: scroll areas exceed the frame memory height")
	}
	return d.c.WriteCommand(dcs.SetScrollArea{
		TopFixed:    uint16(topFixed),
		Scrolling:   uint16(nh - topFixed - bottomFixed),
		BottomFixed: uint16(bottomFixed),
	})
}

// ScrollTo shows frame memory line `line` at the top of the scrolling
// region defined by SetScrollArea.
func (d *Dev) ScrollTo(line int) error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	_, nh := d.model.Size()
	if line < 0 || line >= nh {
		return errors.New("mipidsi: scroll line out of range")
	}
	return d.c.WriteCommand(dcs.SetScrollStart{Line: uint16(line)})
}

// StopScroll returns the display to normal, unscrolled addressing.
func (d *Dev) StopScroll() error {
	if d.halted {
		return errors.New("mipidsi: halted")
	}
	return d.c.WriteCommand(dcs.EnterNormalMode{})
}

// Halt turns the display off. It is the equivalent of setting the brightness
// to zero; the device cannot be used again until it is re-created.
func (d *Dev) Halt() error {
	d.halted = true
	return d.c.WriteCommand(dcs.SetDisplayOff{})
}

// setWindow bounds the drawing window to r, in rotated coordinates, applying
// the panel offsets. Both address ranges are inclusive.
func (d *Dev) setWindow(r image.Rectangle) error {
	err := d.c.WriteCommand(dcs.SetColumnAddress{
		Start: uint16(r.Min.X + d.columnOffset),
		End:   uint16(r.Max.X - 1 + d.columnOffset),
	})
	if err != nil {
		return err
	}
	return d.c.WriteCommand(dcs.SetPageAddress{
		Start: uint16(r.Min.Y + d.rowOffset),
		End:   uint16(r.Max.Y - 1 + d.rowOffset),
	})
}

// spiInterface adapts an SPI connection plus data/command pin pair to the
// writes the dcs package issues. Payloads larger than the port's transfer
// limit are split.
type spiInterface struct {
	c         conn.Conn
	dc        gpio.PinOut
	maxTxSize int
}

// Command implements dcs.Interface.
func (s *spiInterface) Command(cmd byte) error {
	if err := s.dc.Out(gpio.Low); err != nil {
		return err
	}
	return s.c.Tx([]byte{cmd}, nil)
}

// Data implements dcs.Interface.
func (s *spiInterface) Data(p []byte) error {
	if err := s.dc.Out(gpio.High); err != nil {
		return err
	}
	for len(p) > s.maxTxSize {
		if err := s.c.Tx(p[:s.maxTxSize], nil); err != nil {
			return err
		}
		p = p[s.maxTxSize:]
	}
	return s.c.Tx(p, nil)
}

var _ display.Drawer = &Dev{}
