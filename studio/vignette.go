package studio

import (
	"image"
	"math"
)

// Vignette 幂律暗角。坐标在两个轴上各自归一化到 -1..1（不按宽高比修正成圆形），
// mask = clamp(1 - d^exponent·scale, 0, 1)·255，每个通道饱和减去 255 - mask。
func Vignette(img *image.RGBA, exponent, scale float64) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	xs := linspace(-1, 1, w)
	ys := linspace(-1, 1, h)

	dst := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		out := dst.Pix[y*dst.Stride:]
		yy := float64(ys[y] * ys[y])
		for x := 0; x < w; x++ {
			// 显式 float64() 阻止乘加合并成 FMA
			d := math.Sqrt(float64(xs[x]*xs[x]) + yy)
			m := 1 - float64(math.Pow(d, exponent)*scale)
			m = math.Min(math.Max(m, 0), 1)
			darken := 255 - uint8(255*m)

			i := x * 4
			out[i] = subSat(src[i], darken)
			out[i+1] = subSat(src[i+1], darken)
			out[i+2] = subSat(src[i+2], darken)
			out[i+3] = src[i+3]
		}
	}
	return dst
}

func subSat(v, d uint8) uint8 {
	if v < d {
		return 0
	}
	return v - d
}
