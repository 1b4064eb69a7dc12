package tray

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"sync"
)

const iconSize = 32

var (
	iconOnce  sync.Once
	iconBytes []byte

	iconGreen = color.RGBA{R: 0x1d, G: 0xb9, B: 0x54, A: 0xff}
	iconWhite = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Icon returns the tray icon as PNG: a green disc with a white heart.
func Icon() []byte {
	iconOnce.Do(func() {
		var buf bytes.Buffer
		if err := png.Encode(&buf, drawIcon(iconSize)); err == nil {
			iconBytes = buf.Bytes()
		}
	})
	return iconBytes
}

func drawIcon(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	r := float64(size) / 2

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			// pixel centers relative to the middle, scaled to [-1, 1]
			px := (float64(x) + 0.5 - r) / r
			py := (float64(y) + 0.5 - r) / r
			if px*px+py*py > 1 {
				continue
			}
			if inHeart(px*1.9, -py*1.9+0.2) {
				img.SetRGBA(x, y, iconWhite)
			} else {
				img.SetRGBA(x, y, iconGreen)
			}
		}
	}
	return img
}

// inHeart tests the implicit heart curve (x²+y²-1)³ - x²y³ <= 0.
func inHeart(x, y float64) bool {
	a := x*x + y*y - 1
	return a*a*a-x*x*y*y*y <= 0
}
