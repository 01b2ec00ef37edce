package dcs

import "encoding/binary"

// Standard DCS instruction bytes.
const (
	opSoftReset        = 0x01
	opEnterSleepMode   = 0x10
	opExitSleepMode    = 0x11
	opEnterNormalMode  = 0x13
	opExitInvertMode   = 0x20
	opEnterInvertMode  = 0x21
	opSetDisplayOff    = 0x28
	opSetDisplayOn     = 0x29
	opSetColumnAddress = 0x2A
	opSetPageAddress   = 0x2B
	opWriteMemoryStart = 0x2C
	opSetScrollArea    = 0x33
	opTearingEffectOff = 0x34
	opTearingEffectOn  = 0x35
	opSetAddressMode   = 0x36
	opSetScrollStart   = 0x37
	opSetPixelFormat   = 0x3A
)

// SoftReset resets the controller to its power-on state. The controller needs
// a settle delay before it accepts further commands.
type SoftReset struct{}

// Instruction implements Command.
func (SoftReset) Instruction() byte { return opSoftReset }

// Params implements Command.
func (SoftReset) Params(p []byte) (int, error) { return 0, nil }

// EnterSleepMode stops the display and drops the panel into its minimum power
// state. Frame memory is retained.
type EnterSleepMode struct{}

// Instruction implements Command.
func (EnterSleepMode) Instruction() byte { return opEnterSleepMode }

// Params implements Command.
func (EnterSleepMode) Params(p []byte) (int, error) { return 0, nil }

// ExitSleepMode wakes the panel from sleep. The controller needs a settle
// delay before display output is stable.
type ExitSleepMode struct{}

// Instruction implements Command.
func (ExitSleepMode) Instruction() byte { return opExitSleepMode }

// Params implements Command.
func (ExitSleepMode) Params(p []byte) (int, error) { return 0, nil }

// EnterNormalMode switches the whole display area to normal mode, leaving
// partial and scroll modes.
type EnterNormalMode struct{}

// Instruction implements Command.
func (EnterNormalMode) Instruction() byte { return opEnterNormalMode }

// Params implements Command.
func (EnterNormalMode) Params(p []byte) (int, error) { return 0, nil }

// SetDisplayOn enables output from the frame memory onto the panel.
type SetDisplayOn struct{}

// Instruction implements Command.
func (SetDisplayOn) Instruction() byte { return opSetDisplayOn }

// Params implements Command.
func (SetDisplayOn) Params(p []byte) (int, error) { return 0, nil }

// SetDisplayOff blanks the panel without touching the frame memory.
type SetDisplayOff struct{}

// Instruction implements Command.
func (SetDisplayOff) Instruction() byte { return opSetDisplayOff }

// Params implements Command.
func (SetDisplayOff) Params(p []byte) (int, error) { return 0, nil }

// SetInvertMode enables or disables color inversion. The selection is carried
// by the instruction byte itself, not by a parameter.
type SetInvertMode bool

// Instruction implements Command.
func (m SetInvertMode) Instruction() byte {
	if m {
		return opEnterInvertMode
	}
	return opExitInvertMode
}

// Params implements Command.
func (SetInvertMode) Params(p []byte) (int, error) { return 0, nil }

// WriteMemoryStart resets the frame memory write pointer to the start of the
// current drawing window. Payload bytes sent after it land in frame memory.
type WriteMemoryStart struct{}

// Instruction implements Command.
func (WriteMemoryStart) Instruction() byte { return opWriteMemoryStart }

// Params implements Command.
func (WriteMemoryStart) Params(p []byte) (int, error) { return 0, nil }

// SetColumnAddress bounds the drawing window columns to [Start, End], both
// inclusive.
type SetColumnAddress struct {
	Start uint16
	End   uint16
}

// Instruction implements Command.
func (SetColumnAddress) Instruction() byte { return opSetColumnAddress }

// Params implements Command.
func (c SetColumnAddress) Params(p []byte) (int, error) {
	if len(p) < 4 {
		return 0, ErrBufferTooSmall
	}
	binary.BigEndian.PutUint16(p[0:2], c.Start)
	binary.BigEndian.PutUint16(p[2:4], c.End)
	return 4, nil
}

// SetPageAddress bounds the drawing window rows to [Start, End], both
// inclusive.
type SetPageAddress struct {
	Start uint16
	End   uint16
}

// Instruction implements Command.
func (SetPageAddress) Instruction() byte { return opSetPageAddress }

// Params implements Command.
func (c SetPageAddress) Params(p []byte) (int, error) {
	if len(p) < 4 {
		return 0, ErrBufferTooSmall
	}
	binary.BigEndian.PutUint16(p[0:2], c.Start)
	binary.BigEndian.PutUint16(p[2:4], c.End)
	return 4, nil
}

// SetScrollArea splits the panel into a top fixed area, a scrolling area and
// a bottom fixed area, each counted in lines. The three must add up to the
// controller's native height.
type SetScrollArea struct {
	TopFixed    uint16
	Scrolling   uint16
	BottomFixed uint16
}

// Instruction implements Command.
func (SetScrollArea) Instruction() byte { return opSetScrollArea }

// Params implements Command.
func (a SetScrollArea) Params(p []byte) (int, error) {
	if len(p) < 6 {
		return 0, ErrBufferTooSmall
	}
	binary.BigEndian.PutUint16(p[0:2], a.TopFixed)
	binary.BigEndian.PutUint16(p[2:4], a.Scrolling)
	binary.BigEndian.PutUint16(p[4:6], a.BottomFixed)
	return 6, nil
}

// SetScrollStart sets the line of frame memory displayed at the top of the
// scrolling area.
type SetScrollStart struct {
	Line uint16
}

// Instruction implements Command.
func (SetScrollStart) Instruction() byte { return opSetScrollStart }

// Params implements Command.
func (s SetScrollStart) Params(p []byte) (int, error) {
	if len(p) < 2 {
		return 0, ErrBufferTooSmall
	}
	binary.BigEndian.PutUint16(p[0:2], s.Line)
	return 2, nil
}

// SetTearingEffect configures the tearing effect output line. TearingOff
// disables the line, the other modes select which blanking intervals pulse
// it.
type SetTearingEffect uint8

// Tearing effect line modes.
const (
	TearingOff SetTearingEffect = iota
	TearingVBlank
	TearingHVBlank
)

// Instruction implements Command.
func (t SetTearingEffect) Instruction() byte {
	if t == TearingOff {
		return opTearingEffectOff
	}
	return opTearingEffectOn
}

// Params implements Command.
func (t SetTearingEffect) Params(p []byte) (int, error) {
	if t == TearingOff {
		return 0, nil
	}
	if len(p) < 1 {
		return 0, ErrBufferTooSmall
	}
	p[0] = byte(t - 1)
	return 1, nil
}

// SetAddressMode is the memory access control (MADCTL) command. Its bits
// steer how frame memory coordinates map onto panel pixels, which yields
// rotation and mirroring, plus the subpixel order.
type SetAddressMode byte

// SetAddressMode bits, MSB to LSB.
const (
	PageOrderReverse   SetAddressMode = 1 << 7 // MY: bottom to top page scan
	ColumnOrderReverse SetAddressMode = 1 << 6 // MX: right to left column scan
	PageColumnSwap     SetAddressMode = 1 << 5 // MV: exchange page and column addressing
	LineOrderReverse   SetAddressMode = 1 << 4 // ML: vertical refresh bottom to top
	ColorOrderBGR      SetAddressMode = 1 << 3 // BGR: subpixel order is blue-green-red
	LatchOrderReverse  SetAddressMode = 1 << 2 // MH: horizontal refresh right to left
)

// Instruction implements Command.
func (SetAddressMode) Instruction() byte { return opSetAddressMode }

// Params implements Command.
func (m SetAddressMode) Params(p []byte) (int, error) {
	if len(p) < 1 {
		return 0, ErrBufferTooSmall
	}
	p[0] = byte(m)
	return 1, nil
}

// BitsPerPixel is the DCS encoding of a pixel depth.
type BitsPerPixel byte

// Pixel depths understood by PixelFormat.
const (
	BPP3  BitsPerPixel = 0b001
	BPP8  BitsPerPixel = 0b010
	BPP12 BitsPerPixel = 0b011
	BPP16 BitsPerPixel = 0b101
	BPP18 BitsPerPixel = 0b110
	BPP24 BitsPerPixel = 0b111
)

// PixelFormat is the interface pixel format (COLMOD) command. DPI is the
// depth used on the display panel interface, DBI the depth of pixels arriving
// over the bus.
type PixelFormat struct {
	DPI BitsPerPixel
	DBI BitsPerPixel
}

// PixelFormatAll returns a PixelFormat using the same depth on both
// interfaces.
func PixelFormatAll(bpp BitsPerPixel) PixelFormat {
	return PixelFormat{DPI: bpp, DBI: bpp}
}

// Instruction implements Command.
func (PixelFormat) Instruction() byte { return opSetPixelFormat }

// Params implements Command.
func (f PixelFormat) Params(p []byte) (int, error) {
	if len(p) < 1 {
		return 0, ErrBufferTooSmall
	}
	p[0] = byte(f.DPI)<<4 | byte(f.DBI)
	return 1, nil
}

// Raw is a manufacturer specific instruction with its parameter bytes given
// literally. Models use it for the tuning registers that precede the display
// turning on.
type Raw struct {
	Op   byte
	Data []byte
}

// Instruction implements Command.
func (r Raw) Instruction() byte { return r.Op }

// Params implements Command.
func (r Raw) Params(p []byte) (int, error) {
	if len(p) < len(r.Data) {
		return 0, ErrBufferTooSmall
	}
	return copy(p, r.Data), nil
}
