package video

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

func newSolidImage(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func encodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
