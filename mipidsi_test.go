package mipidsi

import (
	"bytes"
	"image"
	"image/color"
	"testing"
	"time"

	"periph.io/x/conn/v3/conntest"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/mipidsi/dcs"
	"periph.io/x/devices/v3/mipidsi/rgb565"
)

// recordDelay makes the settle waits instant and keeps them for inspection.
type recordDelay struct {
	pauses []time.Duration
}

func (r *recordDelay) Sleep(d time.Duration) {
	r.pauses = append(r.pauses, d)
}

func newTestDev(t *testing.T, model Model, opts *Opts) (*Dev, *spitest.Record) {
	t.Helper()
	port := &spitest.Record{}
	dc := &gpiotest.Pin{N: "DC", Num: 20}
	if opts.Delay == nil {
		opts.Delay = &recordDelay{}
	}
	d, err := NewSPI(port, dc, model, opts)
	if err != nil {
		t.Fatal(err)
	}
	return d, port
}

func checkWrites(t *testing.T, ops []conntest.IO, want [][]byte) {
	t.Helper()
	for i := range want {
		if i >= len(ops) {
			t.Fatalf("missing write #%d: want % X", i, want[i])
		}
		if !bytes.Equal(ops[i].W, want[i]) {
			t.Fatalf("write #%d: got % X, want % X", i, ops[i].W, want[i])
		}
	}
	if len(ops) != len(want) {
		t.Fatalf("got %d writes, want %d", len(ops), len(want))
	}
}

func TestNewSPIErrors(t *testing.T) {
	tests := []struct {
		name  string
		model Model
		opts  *Opts
		want  string
	}{
		{"no model", nil, &Opts{}, "mipidsi: display model is required"},
		{"bad rotation", ILI9488{}, &Opts{Rotation: 4}, "mipidsi: invalid rotation"},
		{"negative offset", ILI9488{}, &Opts{ColumnOffset: -1}, "mipidsi: offsets must not be negative"},
		{"negative width", ILI9488{}, &Opts{W: -2}, "mipidsi: width and column offset must fit the ILI9488 frame memory (320x480)"},
		{"too wide", ILI9488{}, &Opts{W: 321}, "mipidsi: width and column offset must fit the ILI9488 frame memory (320x480)"},
		{"column offset overflow", ST7735{}, &Opts{W: 128, ColumnOffset: 5}, "mipidsi: width and column offset must fit the ST7735 frame memory (132x162)"},
		{"too tall", ILI9488{}, &Opts{H: 481}, "mipidsi: height and row offset must fit the ILI9488 frame memory (320x480)"},
		{"row offset overflow", ST7735{}, &Opts{H: 160, RowOffset: 3}, "mipidsi: height and row offset must fit the ST7735 frame memory (132x162)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port := &spitest.Record{}
			_, err := NewSPI(port, &gpiotest.Pin{N: "DC"}, tt.model, tt.opts)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("got %v, want %q", err, tt.want)
			}
			if len(port.Ops) != 0 {
				t.Fatal("bus traffic before options were validated")
			}
		})
	}
}

func TestNewSPINoDCPin(t *testing.T) {
	want := "mipidsi: a data/command pin is required"
	if _, err := NewSPI(&spitest.Record{}, nil, ILI9488{}, nil); err == nil || err.Error() != want {
		t.Fatalf("got %v, want %q", err, want)
	}
	if _, err := NewSPI(&spitest.Record{}, gpio.INVALID, ILI9488{}, nil); err == nil || err.Error() != want {
		t.Fatalf("got %v, want %q", err, want)
	}
}

func TestNewSPIInitTraffic(t *testing.T) {
	rd := &recordDelay{}
	d, port := newTestDev(t, ILI9488{}, &Opts{Delay: rd})
	checkWrites(t, port.Ops, [][]byte{
		{0x01},
		{0x11},
		{0x3A}, {0x55},
		{0x36}, {0x00},
		{0x20},
		{0xC5}, {0x00, 0x1E, 0x80, 0xB1},
		{0xB1}, {0xB0},
		{0xE0}, {0x00, 0x13, 0x18, 0x04, 0x0F, 0x06, 0x3A, 0x56, 0x4D, 0x03, 0x0A, 0x06, 0x30, 0x3E, 0x0F},
		{0xE1}, {0x00, 0x13, 0x18, 0x01, 0x11, 0x06, 0x38, 0x34, 0x4D, 0x06, 0x0D, 0x0B, 0x31, 0x37, 0x0F},
		{0xB6}, {0x00, 0x42},
		{0x13},
		{0x29},
	})
	if len(rd.pauses) != 2 || rd.pauses[0] != 120*time.Millisecond || rd.pauses[1] != 120*time.Millisecond {
		t.Fatalf("got settle pauses %v, want two of 120ms", rd.pauses)
	}
	if d.AddressMode() != 0 {
		t.Fatalf("got address mode %#02x, want 0", byte(d.AddressMode()))
	}
}

func TestNewSPIHardwareReset(t *testing.T) {
	rd := &recordDelay{}
	rst := &gpiotest.Pin{N: "RST", Num: 42}
	_, port := newTestDev(t, ILI9488{}, &Opts{RST: rst, Delay: rd})
	// The reset line replaces the software reset command.
	if !bytes.Equal(port.Ops[0].W, []byte{0x11}) {
		t.Fatalf("got first write % X, want 11", port.Ops[0].W)
	}
	if rst.L != gpio.High {
		t.Fatal("reset line left low")
	}
	want := []time.Duration{10 * time.Microsecond, 120 * time.Millisecond, 120 * time.Millisecond}
	if len(rd.pauses) != len(want) {
		t.Fatalf("got pauses %v, want %v", rd.pauses, want)
	}
	for i := range want {
		if rd.pauses[i] != want[i] {
			t.Fatalf("got pauses %v, want %v", rd.pauses, want)
		}
	}
}

func TestDevBounds(t *testing.T) {
	tests := []struct {
		name  string
		model Model
		opts  Opts
		want  image.Rectangle
	}{
		{"ili9488", ILI9488{}, Opts{}, image.Rect(0, 0, 320, 480)},
		{"ili9488 rotate90", ILI9488{}, Opts{Rotation: Rotate90}, image.Rect(0, 0, 480, 320)},
		{"ili9488 rotate180", ILI9488{}, Opts{Rotation: Rotate180}, image.Rect(0, 0, 320, 480)},
		{"ili9488 rotate270", ILI9488{}, Opts{Rotation: Rotate270}, image.Rect(0, 0, 480, 320)},
		{"st7735 sized", ST7735{}, Opts{W: 128, H: 160}, image.Rect(0, 0, 128, 160)},
		{"st7735 sized rotate90", ST7735{}, Opts{W: 128, H: 160, Rotation: Rotate90}, image.Rect(0, 0, 160, 128)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDev(t, tt.model, &tt.opts)
			if got := d.Bounds(); got != tt.want {
				t.Fatalf("got bounds %v, want %v", got, tt.want)
			}
			if got := d.Rotation(); got != tt.opts.Rotation {
				t.Fatalf("got rotation %d, want %d", got, tt.opts.Rotation)
			}
		})
	}
}

func TestDevString(t *testing.T) {
	d, _ := newTestDev(t, ST7735{}, &Opts{W: 128, H: 160})
	if got := d.String(); got != "mipidsi.Dev{ST7735 128x160}" {
		t.Fatalf("got %q", got)
	}
	d, _ = newTestDev(t, ILI9488{}, &Opts{Rotation: Rotate90})
	if got := d.String(); got != "mipidsi.Dev{ILI9488 480x320}" {
		t.Fatalf("got %q", got)
	}
}

func TestDevColorModel(t *testing.T) {
	d, _ := newTestDev(t, ST7735{}, &Opts{})
	c := d.ColorModel().Convert(color.RGBA{R: 0xFF, A: 0xFF})
	px, ok := c.(rgb565.Pixel)
	if !ok {
		t.Fatalf("got %T, want rgb565.Pixel", c)
	}
	if px != rgb565.New(255, 0, 0) {
		t.Fatalf("got %#04x, want %#04x", uint16(px), uint16(rgb565.New(255, 0, 0)))
	}
}

func TestDevAddressMode(t *testing.T) {
	d, _ := newTestDev(t, ILI9488{}, &Opts{Rotation: Rotate90, BGR: true})
	if got := d.AddressMode(); got != 0x6C {
		t.Fatalf("got address mode %#02x, want 0x6C", byte(got))
	}
}

func TestDevSetPixels(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2, ColumnOffset: 2, RowOffset: 1})
	n := len(port.Ops)
	err := d.SetPixels(image.Rect(1, 0, 3, 2), pixelSeq(
		rgb565.New(255, 0, 0),
		rgb565.New(0, 255, 0),
		rgb565.New(0, 0, 255),
		rgb565.Pixel(0xFFFF),
	))
	if err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x03, 0x00, 0x04},
		{0x2B}, {0x00, 0x01, 0x00, 0x02},
		{0x2C}, {0xF8, 0x00, 0x07, 0xE0, 0x00, 0x1F, 0xFF, 0xFF},
	})
}

func TestDevSetPixelsRotatedOffsets(t *testing.T) {
	// With the axes swapped the column window tracks the row offset and
	// the page window the column offset.
	d, port := newTestDev(t, ST7735{}, &Opts{W: 128, H: 160, ColumnOffset: 2, RowOffset: 1, Rotation: Rotate90})
	n := len(port.Ops)
	if err := d.SetPixels(image.Rect(0, 0, 1, 1), pixelSeq(rgb565.Pixel(0))); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x01, 0x00, 0x01},
		{0x2B}, {0x00, 0x02, 0x00, 0x02},
		{0x2C}, {0x00, 0x00},
	})
}

func TestDevSetPixelsOutOfBounds(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	n := len(port.Ops)
	err := d.SetPixels(image.Rect(0, 0, 5, 2), pixelSeq())
	if err == nil || err.Error() != "mipidsi: rectangle outside display bounds" {
		t.Fatalf("got %v", err)
	}
	if len(port.Ops) != n {
		t.Fatal("bus traffic for a rejected rectangle")
	}
}

func TestDevDrawFastPath(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	img := rgb565.NewImage(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.SetPixel(x, 0, rgb565.New(255, 0, 0))
		img.SetPixel(x, 1, rgb565.New(0, 0, 255))
	}
	n := len(port.Ops)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x00, 0x00, 0x03},
		{0x2B}, {0x00, 0x00, 0x00, 0x01},
		{0x2C}, img.Pix,
	})
}

func TestDevDrawWindowFastPath(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	img := rgb565.NewImage(image.Rect(0, 0, 2, 1))
	img.SetPixel(0, 0, rgb565.New(255, 0, 0))
	img.SetPixel(1, 0, rgb565.New(0, 255, 0))
	n := len(port.Ops)
	if err := d.Draw(image.Rect(1, 1, 3, 2), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x01, 0x00, 0x02},
		{0x2B}, {0x00, 0x01, 0x00, 0x01},
		{0x2C}, {0xF8, 0x00, 0x07, 0xE0},
	})
}

func TestDevDrawConvert(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	src := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{R: 0xFF, A: 0xFF})
		}
	}
	n := len(port.Ops)
	if err := d.Draw(d.Bounds(), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x00, 0x00, 0x03},
		{0x2B}, {0x00, 0x00, 0x00, 0x01},
		{0x2C}, {0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00},
	})
}

func TestDevDrawClips(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	src.Set(1, 1, color.RGBA{R: 0xFF, A: 0xFF})
	src.Set(2, 1, color.RGBA{B: 0xFF, A: 0xFF})

	// The destination sticks out top left; the source point must advance
	// by the clipped amount.
	n := len(port.Ops)
	if err := d.Draw(image.Rect(-1, -1, 2, 1), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x00, 0x00, 0x01},
		{0x2B}, {0x00, 0x00, 0x00, 0x00},
		{0x2C}, {0xF8, 0x00, 0x00, 0x1F},
	})

	// A destination entirely outside the display is a no-op.
	n = len(port.Ops)
	if err := d.Draw(image.Rect(10, 10, 20, 20), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if len(port.Ops) != n {
		t.Fatal("bus traffic for an empty intersection")
	}
}

func TestDevDrawClipsToSource(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.RGBA{R: 0xFF, A: 0xFF})

	// A window taller than the source shrinks to what the source covers;
	// the uncovered row keeps its previous content.
	n := len(port.Ops)
	if err := d.Draw(image.Rect(2, 0, 3, 2), src, image.Point{}); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x02, 0x00, 0x02},
		{0x2B}, {0x00, 0x00, 0x00, 0x00},
		{0x2C}, {0xF8, 0x00},
	})

	// A source point past the source's extent leaves nothing to draw.
	n = len(port.Ops)
	if err := d.Draw(d.Bounds(), src, image.Point{X: 5, Y: 5}); err != nil {
		t.Fatal(err)
	}
	if len(port.Ops) != n {
		t.Fatal("bus traffic for a source with no overlap")
	}
}

func TestDevFill(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	n := len(port.Ops)
	if err := d.Fill(image.Rect(0, 0, 2, 2), rgb565.New(255, 0, 0)); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x00, 0x00, 0x01},
		{0x2B}, {0x00, 0x00, 0x00, 0x01},
		{0x2C}, {0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00, 0xF8, 0x00},
	})

	// Fill clips to the display bounds.
	n = len(port.Ops)
	if err := d.Fill(image.Rect(2, 0, 100, 100), rgb565.Pixel(0x1234)); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x02, 0x00, 0x03},
		{0x2B}, {0x00, 0x00, 0x00, 0x01},
		{0x2C}, {0x12, 0x34, 0x12, 0x34, 0x12, 0x34, 0x12, 0x34},
	})
}

func TestDevWrite(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	frame := make([]byte, 16)
	for i := range frame {
		frame[i] = byte(i)
	}
	n := len(port.Ops)
	written, err := d.Write(frame)
	if err != nil {
		t.Fatal(err)
	}
	if written != len(frame) {
		t.Fatalf("got %d bytes written, want %d", written, len(frame))
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x2A}, {0x00, 0x00, 0x00, 0x03},
		{0x2B}, {0x00, 0x00, 0x00, 0x01},
		{0x2C}, frame,
	})

	n = len(port.Ops)
	if _, err := d.Write(frame[:10]); err == nil || err.Error() != "mipidsi: invalid buffer size" {
		t.Fatalf("got %v", err)
	}
	if len(port.Ops) != n {
		t.Fatal("bus traffic for a rejected buffer")
	}
}

func TestDevInvert(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	n := len(port.Ops)
	if err := d.Invert(true); err != nil {
		t.Fatal(err)
	}
	if err := d.Invert(false); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{{0x21}, {0x20}})
}

func TestDevSleep(t *testing.T) {
	rd := &recordDelay{}
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2, Delay: rd})
	n := len(port.Ops)
	pauses := len(rd.pauses)
	if err := d.Sleep(true); err != nil {
		t.Fatal(err)
	}
	if len(rd.pauses) != pauses {
		t.Fatal("entering sleep must not wait")
	}
	if err := d.Sleep(false); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{{0x10}, {0x11}})
	if len(rd.pauses) != pauses+1 || rd.pauses[pauses] != 120*time.Millisecond {
		t.Fatalf("got pauses %v, want one more of 120ms", rd.pauses)
	}
}

func TestDevSetTearingEffect(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	n := len(port.Ops)
	if err := d.SetTearingEffect(dcs.TearingVBlank); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTearingEffect(dcs.TearingHVBlank); err != nil {
		t.Fatal(err)
	}
	if err := d.SetTearingEffect(dcs.TearingOff); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x35}, {0x00},
		{0x35}, {0x01},
		{0x34},
	})
	if err := d.SetTearingEffect(3); err == nil || err.Error() != "mipidsi: invalid tearing effect mode" {
		t.Fatalf("got %v", err)
	}
}

func TestDevScroll(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 128, H: 160, ColumnOffset: 2, RowOffset: 1})
	n := len(port.Ops)
	if err := d.SetScrollArea(10, 20); err != nil {
		t.Fatal(err)
	}
	if err := d.ScrollTo(40); err != nil {
		t.Fatal(err)
	}
	if err := d.StopScroll(); err != nil {
		t.Fatal(err)
	}
	// Scroll geometry is in frame memory lines: 162 total on this
	// controller, regardless of the configured panel size.
	checkWrites(t, port.Ops[n:], [][]byte{
		{0x33}, {0x00, 0x0A, 0x00, 0x84, 0x00, 0x14},
		{0x37}, {0x00, 0x28},
		{0x13},
	})
}

func TestDevScrollErrors(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 128, H: 160})
	n := len(port.Ops)
	areaErr := "mipidsi: scroll areas exceed the frame memory height"
	if err := d.SetScrollArea(100, 100); err == nil || err.Error() != areaErr {
		t.Fatalf("got %v", err)
	}
	if err := d.SetScrollArea(-1, 0); err == nil || err.Error() != areaErr {
		t.Fatalf("got %v", err)
	}
	lineErr := "mipidsi: scroll line out of range"
	if err := d.ScrollTo(162); err == nil || err.Error() != lineErr {
		t.Fatalf("got %v", err)
	}
	if err := d.ScrollTo(-1); err == nil || err.Error() != lineErr {
		t.Fatalf("got %v", err)
	}
	if len(port.Ops) != n {
		t.Fatal("bus traffic for rejected scroll parameters")
	}
}

func TestDevHalt(t *testing.T) {
	d, port := newTestDev(t, ST7735{}, &Opts{W: 4, H: 2})
	n := len(port.Ops)
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	checkWrites(t, port.Ops[n:], [][]byte{{0x28}})

	n = len(port.Ops)
	const want = "mipidsi: halted"
	if err := d.Draw(d.Bounds(), rgb565.NewImage(d.Bounds()), image.Point{}); err == nil || err.Error() != want {
		t.Fatalf("Draw: got %v", err)
	}
	if err := d.SetPixels(image.Rect(0, 0, 1, 1), pixelSeq(rgb565.Pixel(0))); err == nil || err.Error() != want {
		t.Fatalf("SetPixels: got %v", err)
	}
	if err := d.Fill(d.Bounds(), rgb565.Pixel(0)); err == nil || err.Error() != want {
		t.Fatalf("Fill: got %v", err)
	}
	if _, err := d.Write(make([]byte, 16)); err == nil || err.Error() != want {
		t.Fatalf("Write: got %v", err)
	}
	if err := d.Invert(true); err == nil || err.Error() != want {
		t.Fatalf("Invert: got %v", err)
	}
	if err := d.Sleep(true); err == nil || err.Error() != want {
		t.Fatalf("Sleep: got %v", err)
	}
	if err := d.SetTearingEffect(dcs.TearingOff); err == nil || err.Error() != want {
		t.Fatalf("SetTearingEffect: got %v", err)
	}
	if err := d.SetScrollArea(0, 0); err == nil || err.Error() != want {
		t.Fatalf("SetScrollArea: got %v", err)
	}
	if err := d.ScrollTo(0); err == nil || err.Error() != want {
		t.Fatalf("ScrollTo: got %v", err)
	}
	if err := d.StopScroll(); err == nil || err.Error() != want {
		t.Fatalf("StopScroll: got %v", err)
	}
	if len(port.Ops) != n {
		t.Fatal("bus traffic after Halt")
	}
}
