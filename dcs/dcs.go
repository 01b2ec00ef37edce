// Package dcs implements the MIPI Display Command Set shared by TFT display
// controllers such as the ILI9488 and ST7735.
//
// The package splits command handling in two. The codec side is the Command
// interface: each command knows its instruction byte and packs its own
// parameter bytes into a caller supplied buffer. The dispatcher side is Conn,
// which encodes commands and hands them to an Interface, the write-only
// command/data bus the controller listens on.
//
// Conn keeps no state between calls and never retries. Transport failures are
// returned as *TransportError wrapping the underlying bus error.
package dcs

import (
	"errors"
	"fmt"
)

// MaxParams is the size of the parameter buffer a Conn encodes into. No
// standard DCS command carries more parameter bytes than this.
const MaxParams = 16

// ErrBufferTooSmall is returned by Command.Params when the destination buffer
// cannot hold the command's parameter bytes. Nothing is written in that case.
var ErrBufferTooSmall = errors.New("dcs: parameter buffer too small")

// Command is a single DCS instruction together with its parameters.
//
// Implementations are plain values. Params must be deterministic, write
// nothing on failure and never touch the transport.
type Command interface {
	// Instruction returns the DCS opcode.
	Instruction() byte
	// Params packs the parameter bytes into p and returns how many bytes
	// were written. It returns ErrBufferTooSmall if p is too short.
	Params(p []byte) (int, error)
}

// Interface is the write-only bus a display controller listens on.
//
// Implementations route the instruction/parameter distinction to the
// hardware. On 4-wire SPI that is the D/C GPIO line, on parallel buses a
// dedicated strobe. Implementations are responsible for splitting large
// payloads to whatever the underlying transport can carry in one transfer.
type Interface interface {
	// Command sends a one byte instruction.
	Command(cmd byte) error
	// Data sends parameter or pixel payload bytes.
	Data(p []byte) error
}

// TransportError is returned when the Interface reports a write failure. Cmd
// is the instruction in flight. Payload writes that follow WriteMemoryStart
// report against that command's opcode.
type TransportError struct {
	Cmd   byte
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dcs: command 0x%02X failed: %v", e.Cmd, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Conn issues DCS commands over an Interface.
type Conn struct {
	di  Interface
	buf [MaxParams]byte
}

// New returns a Conn dispatching commands over di.
func New(di Interface) *Conn {
	return &Conn{di: di}
}

// WriteCommand encodes cmd and sends its instruction byte followed by its
// parameter bytes, if any.
func (c *Conn) WriteCommand(cmd Command) error {
	n, err := cmd.Params(c.buf[:])
	if err != nil {
		return err
	}
	op := cmd.Instruction()
	if err := c.di.Command(op); err != nil {
		return &TransportError{Cmd: op, Cause: err}
	}
	if n > 0 {
		if err := c.di.Data(c.buf[:n]); err != nil {
			return &TransportError{Cmd: op, Cause: err}
		}
	}
	return nil
}

// WriteRaw sends an arbitrary instruction with literal parameter bytes. It is
// meant for manufacturer specific registers that fall outside the standard
// command set. params may be nil.
func (c *Conn) WriteRaw(op byte, params []byte) error {
	if err := c.di.Command(op); err != nil {
		return &TransportError{Cmd: op, Cause: err}
	}
	if len(params) > 0 {
		if err := c.di.Data(params); err != nil {
			return &TransportError{Cmd: op, Cause: err}
		}
	}
	return nil
}

// WriteData forwards payload bytes that continue a previously issued command,
// such as the pixel stream following WriteMemoryStart.
func (c *Conn) WriteData(p []byte) error {
	if err := c.di.Data(p); err != nil {
		return &TransportError{Cmd: opWriteMemoryStart, Cause: err}
	}
	return nil
}
