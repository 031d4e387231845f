package studio

import (
	"image"

	"github.com/nfnt/resize"
)

// resizeWithinMax 缩放（最长边 <= maxSize），maxSize <= 0 不缩放
func resizeWithinMax(img image.Image, maxSize int) image.Image {
	if maxSize <= 0 {
		return img
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := max(w, h)
	if longest <= maxSize {
		return img
	}

	scale := float64(maxSize) / float64(longest)
	newW := max(1, int(float64(w)*scale))
	newH := max(1, int(float64(h)*scale))

	return resize.Resize(uint(newW), uint(newH), img, resize.Lanczos3)
}
