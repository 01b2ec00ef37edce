// Package mipidsi controls MIPI DCS compatible TFT display controllers via SPI.
//
// Most small TFT panels speak the MIPI Display Command Set: a shared
// instruction protocol for sleep control, orientation, windowed memory writes
// and scrolling, on top of which every controller adds its own tuning
// registers. This driver implements the shared protocol once and keeps the
// per-controller differences in small model definitions. It implements the
// display.Drawer interface from periph.io.
//
// # Supported Controllers
//
//   - ILI9488: 320x480 frame memory, common on 3.5" panels
//   - ST7735: 132x162 frame memory, common on 0.96" to 1.8" panels
//
// # Display Characteristics
//
// - 16-bit RGB565 color, sent big-endian over the bus
// - Windowed partial updates of any rectangular region
// - Rotation in 90 degree steps, mirroring, RGB/BGR subpixel order
// - Color inversion
// - Hardware vertical scrolling
// - Sleep mode with frame memory retention
//
// # Hardware Connection
//
// Connect the display to your system via 4-wire SPI:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	SCL/CLK     → SPI Clock (SCLK)
//	SDA/MOSI    → SPI Data (MOSI)
//	DC          → GPIO (any available pin)
//	CS          → SPI Chip Select (or GND if always selected)
//	RST         → Optional: GPIO for hardware reset
//	LED/BL      → Backlight supply, per the panel's datasheet
//
// # Basic Usage
//
// Example of creating and using the display:
//
//	package main
//
//	import (
//		"image"
//
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/conn/v3/spi/spireg"
//		"periph.io/x/devices/v3/mipidsi"
//		"periph.io/x/devices/v3/mipidsi/rgb565"
//		"periph.io/x/host/v3"
//	)
//
//	func main() {
//		// Initialize periph.io
//		host.Init()
//
//		// Open SPI bus
//		spiBus, _ := spireg.Open("")
//
//		// Get Data/Command GPIO pin
//		dcPin := gpioreg.ByName("GPIO25")
//
//		// Create device
//		dev, _ := mipidsi.NewSPI(spiBus, dcPin, mipidsi.ILI9488{}, nil)
//		defer dev.Halt()
//
//		// Create an image in the display's native pixel format
//		img := rgb565.NewImage(dev.Bounds())
//
//		// Draw a horizontal color gradient
//		for y := 0; y < img.Rect.Dy(); y++ {
//			for x := 0; x < img.Rect.Dx(); x++ {
//				r := uint8(x * 255 / img.Rect.Dx())
//				img.SetPixel(x, y, rgb565.New(r, 0, 255-r))
//			}
//		}
//
//		// Display the image
//		dev.Draw(dev.Bounds(), img, image.Point{})
//	}
//
// # Using Hardware Reset Pin (Optional)
//
// If the display's RST pin is connected to a GPIO, provide it in the Opts
// struct:
//
//	rstPin := gpioreg.ByName("GPIO24")
//
//	dev, _ := mipidsi.NewSPI(spiBus, dcPin, mipidsi.ILI9488{}, &mipidsi.Opts{
//		RST: rstPin,
//	})
//
// The driver then performs a hardware reset during initialization (pull RST
// low for 10µs, pull high, wait 120ms). Without a reset pin it sends the
// software reset command instead, with the same wait. Either way NewSPI
// blocks for roughly a quarter second before the display is ready.
//
// # Small Panels
//
// Panels smaller than the controller's frame memory sit at a per-board
// offset inside it. Pass the visible size and position:
//
//	// A common 1.8" 128x160 board on an ST7735.
//	dev, _ := mipidsi.NewSPI(spiBus, dcPin, mipidsi.ST7735{}, &mipidsi.Opts{
//		W:            128,
//		H:            160,
//		ColumnOffset: 2,
//		RowOffset:    1,
//	})
//
// # Orientation
//
// Rotation, mirroring and subpixel order are fixed at initialization:
//
//	dev, _ := mipidsi.NewSPI(spiBus, dcPin, mipidsi.ILI9488{}, &mipidsi.Opts{
//		Rotation: mipidsi.Rotate90,
//		BGR:      true, // red and blue swapped on this panel
//	})
//
// Bounds() reflects the rotation: a 320x480 panel rotated by 90 degrees is
// 480x320 to the caller. The controller applies the orientation in hardware;
// pixel data is never transformed on the way out. AddressMode() returns the
// memory access control value that was programmed.
//
// # Drawing Modes
//
// The driver supports three drawing modes:
//
// ## Image Drawing
//
// Draw accepts any image.Image. A *rgb565.Image matching the destination is
// streamed as-is, anything else is converted pixel by pixel while streaming:
//
//	dev.Draw(dev.Bounds(), myImage, image.Point{})
//
// ## Full-Frame Update
//
// Write sends a pre-encoded frame, two bytes per pixel, most significant
// byte first. Use this for maximum performance when updating the entire
// frame from your own buffer:
//
//	pixels := make([]byte, 320*480*2)
//	// ... fill pixels ...
//	dev.Write(pixels)
//
// ## Streamed Regions
//
// SetPixels and Fill write a rectangular window without allocating it. The
// pixel sequence is generated on the fly, so even a full frame costs no
// memory:
//
//	dev.Fill(image.Rect(0, 0, 100, 100), rgb565.New(255, 0, 0))
//
// # Hardware Scrolling
//
// The controllers scroll vertically in hardware, in frame memory lines:
//
//	// Scroll the whole frame memory.
//	dev.SetScrollArea(0, 0)
//	for line := 0; line < 480; line++ {
//		dev.ScrollTo(line)
//		time.Sleep(10 * time.Millisecond)
//	}
//
//	// Back to normal addressing.
//	dev.StopScroll()
//
// # Performance
//
// At the driver's 10MHz SPI clock:
// - ILI9488 full-frame update (307200 bytes): ~250ms
// - ST7735 128x160 full-frame update (40960 bytes): ~33ms
// - Typical partial update: proportional to the window size
//
// Prefer windowed updates over full frames when only a region changed.
//
// # Datasheets
//
// For detailed register descriptions and timing information, see:
//
// https://www.hpinfotech.ro/ILI9488.pdf
//
// https://www.displayfuture.com/Display/datasheet/controller/ST7735.pdf
//
// # Compatibility with periph.io
//
// This driver implements the display.Drawer interface from periph.io:
// https://pkg.go.dev/periph.io/x/conn/v3/display
//
// It can be used with any periph.io tool or library expecting a display.Drawer.
package mipidsi
