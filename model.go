package mipidsi

import (
	"fmt"
	"iter"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/devices/v3/mipidsi/dcs"
	"periph.io/x/devices/v3/mipidsi/rgb565"
)

// Delayer blocks the caller for the settle times the controllers require
// around reset and sleep transitions.
type Delayer interface {
	// Sleep blocks for at least d.
	Sleep(d time.Duration)
}

type sleepDelay struct{}

func (sleepDelay) Sleep(d time.Duration) { time.Sleep(d) }

// DefaultDelay sleeps on the calling goroutine.
var DefaultDelay Delayer = sleepDelay{}

const (
	// resetHold is how long the reset line is held low during a hardware
	// reset. The controllers specify a minimum reset pulse width of 10µs.
	resetHold = 10 * time.Microsecond

	// settleDelay is the mandatory wait after a reset and after turning
	// the display on. The controller ignores or corrupts commands that
	// arrive earlier, without reporting anything.
	settleDelay = 120 * time.Millisecond
)

// InitError is returned when initialization fails. The controller state is
// unknown after a failed initialization; the only recovery is to initialize
// again from reset.
type InitError struct {
	// ResetLine is true when the failure came from driving the reset pin
	// rather than from a bus command.
	ResetLine bool
	Cause     error
}

func (e *InitError) Error() string {
	if e.ResetLine {
		return fmt.Sprintf("mipidsi: init failed driving the reset line: %v", e.Cause)
	}
	return fmt.Sprintf("mipidsi: init failed: %v", e.Cause)
}

func (e *InitError) Unwrap() error {
	return e.Cause
}

// Model describes one display controller variant: its frame memory size, the
// pixel format it is programmed with, its bring-up sequence and the wire
// encoding of its pixels.
//
// The transport, delay source and optional reset line are borrowed for the
// duration of each call and never retained.
type Model interface {
	// String returns the controller name.
	String() string
	// Size returns the frame memory dimensions in pixels, before any
	// rotation is applied.
	Size() (w, h int)
	// PixelFormat returns the interface pixel format programmed during
	// initialization. It must agree with the encoding WritePixels emits;
	// the controller cannot detect a mismatch and displays wrong colors.
	PixelFormat() dcs.PixelFormat
	// Init drives the controller from power-on or reset to a configured,
	// display-on state and returns the address mode derived from opts.
	// When rst is non-nil the controller is reset through it, otherwise
	// with the software reset command. Init blocks for the settle delays
	// the sequence requires; on return the controller accepts memory
	// writes. A failed Init leaves the controller in an unknown state.
	Init(c *dcs.Conn, delay Delayer, opts *Opts, rst gpio.PinOut) (dcs.SetAddressMode, error)
	// WritePixels issues a memory write and streams the pixels into the
	// current drawing window in wire order. The sequence is consumed
	// once; memory use does not grow with its length.
	WritePixels(c *dcs.Conn, pixels iter.Seq[rgb565.Pixel]) error
}

// initStep is one entry of an initialization table: a command write followed
// by an optional settle wait.
type initStep struct {
	cmd    dcs.Command
	settle time.Duration
}

// initSequence drives a controller through the DCS bring-up shared by all
// models: reset, sleep exit, pixel format, orientation, inversion, the
// model's tuning table, normal mode and display on. Only the tuning table
// and the pixel format differ between models; the order never does.
func initSequence(c *dcs.Conn, delay Delayer, opts *Opts, rst gpio.PinOut, pf dcs.PixelFormat, tuning []initStep) (dcs.SetAddressMode, error) {
	if err := resetController(c, delay, rst); err != nil {
		return 0, err
	}

	mode := opts.addressMode()
	steps := make([]initStep, 0, len(tuning)+6)
	steps = append(steps,
		initStep{cmd: dcs.ExitSleepMode{}},
		initStep{cmd: pf},
		initStep{cmd: mode},
		initStep{cmd: dcs.SetInvertMode(opts.InvertColors)},
	)
	steps = append(steps, tuning...)
	steps = append(steps,
		initStep{cmd: dcs.EnterNormalMode{}},
		initStep{cmd: dcs.SetDisplayOn{}, settle: settleDelay},
	)

	for _, s := range steps {
		if err := c.WriteCommand(s.cmd); err != nil {
			return 0, &InitError{Cause: err}
		}
		if s.settle > 0 {
			delay.Sleep(s.settle)
		}
	}
	return mode, nil
}

// resetController performs a hardware reset when a reset line is available
// and sends the software reset command otherwise. A hardware reset already
// clears the controller state, so the two are never combined. Either way the
// controller gets its full settle time before the next command.
func resetController(c *dcs.Conn, delay Delayer, rst gpio.PinOut) error {
	if rst != nil {
		if err := rst.Out(gpio.Low); err != nil {
			return &InitError{ResetLine: true, Cause: err}
		}
		delay.Sleep(resetHold)
		if err := rst.Out(gpio.High); err != nil {
			return &InitError{ResetLine: true, Cause: err}
		}
	} else if err := c.WriteCommand(dcs.SoftReset{}); err != nil {
		return &InitError{Cause: err}
	}
	delay.Sleep(settleDelay)
	return nil
}

// pixelChunk is the size of the pixel writer's staging buffer, in pixels.
// Pixels are translated and forwarded through it so a frame never has to be
// held in memory whole.
const pixelChunk = 256

// writePixels16 streams pixels as big-endian 16 bit values following a
// memory write command.
func writePixels16(c *dcs.Conn, pixels iter.Seq[rgb565.Pixel]) error {
	if err := c.WriteCommand(dcs.WriteMemoryStart{}); err != nil {
		return err
	}
	var buf [pixelChunk * 2]byte
	n := 0
	for px := range pixels {
		px.Put(buf[n:])
		n += 2
		if n == len(buf) {
			if err := c.WriteData(buf[:]); err != nil {
				return err
			}
			n = 0
		}
	}
	if n > 0 {
		return c.WriteData(buf[:n])
	}
	return nil
}
