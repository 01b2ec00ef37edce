// Package rgb565 provides the 16-bit 5-6-5 color format used by TFT display
// controllers such as the ILI9488 and ST7735.
//
// These controllers receive pixels over the bus as two bytes each, most
// significant byte first. Within the 16-bit value red occupies the five most
// significant bits, green the middle six and blue the low five.
//
// Memory layout example for a 2-pixel row:
//
//	Pixels: red (0xF800)   cyan (0x07FF)
//	Bytes:  0xF8 0x00      0x07 0xFF
//
// This package provides:
//
// - Pixel: A color type representing one packed 5-6-5 value
// - Model: A color model for converting standard Go colors to Pixel
// - Image: An image.Image implementation storing pixels in wire order
//
// Example usage:
//
//	// Create a 320x480 image
//	img := rgb565.NewImage(image.Rect(0, 0, 320, 480))
//
//	// Set a pixel to pure green
//	img.SetPixel(10, 20, rgb565.New(0, 255, 0))
//
//	// Get a pixel
//	px := img.PixelAt(10, 20)
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(rgb565.New(255, 0, 0)), image.Point{}, draw.Src)
package rgb565
