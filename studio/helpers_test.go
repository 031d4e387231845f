package studio

import (
	"image"
	"image/color"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func uniformRGB(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = v, v, v, 255
	}
	return img
}

func uniformAlpha(w, h int, a float64) NormalizedAlpha {
	n := NormalizedAlpha{Pix: make([]float64, w*h), Stride: w, Rect: image.Rect(0, 0, w, h)}
	for i := range n.Pix {
		n.Pix[i] = a
	}
	return n
}

// squareCutout w×h 全透明，中间 r 区域填 c
func squareCutout(w, h int, r image.Rectangle, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func grayRow(vs ...uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, len(vs), 1))
	copy(g.Pix, vs)
	return g
}

func grayAt(v uint8) color.Gray { return color.Gray{Y: v} }
