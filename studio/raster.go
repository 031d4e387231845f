package studio

import (
	"image"

	"golang.org/x/image/draw"
)

// NormalizedAlpha alpha 缩放到 0..1，每个像素一个值，合成时对 R、G、B 三个通道同样生效
type NormalizedAlpha struct {
	Pix    []float64
	Stride int
	Rect   image.Rectangle
}

// At 按绝对坐标取值
func (n NormalizedAlpha) At(x, y int) float64 {
	return n.Pix[(y-n.Rect.Min.Y)*n.Stride+(x-n.Rect.Min.X)]
}

func (n NormalizedAlpha) Bounds() image.Rectangle { return n.Rect }

// NormalizeAlpha mask / 255
func NormalizeAlpha(mask *image.Gray) NormalizedAlpha {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	out := NormalizedAlpha{Pix: make([]float64, w*h), Stride: w, Rect: b}
	for y := 0; y < h; y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x, v := range row {
			out.Pix[y*w+x] = float64(v) / 255
		}
	}
	return out
}

// ExtractAlpha 取出第四通道
func ExtractAlpha(img *image.NRGBA) *image.Gray {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	alpha := image.NewGray(b)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := alpha.Pix[y*alpha.Stride:]
		for x := 0; x < w; x++ {
			dst[x] = src[x*4+3]
		}
	}
	return alpha
}

// ExtractRGB 取出颜色通道（非预乘），结果不透明
func ExtractRGB(img *image.NRGBA) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := rgb.Pix[y*rgb.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			dst[i], dst[i+1], dst[i+2], dst[i+3] = src[i], src[i+1], src[i+2], 255
		}
	}
	return rgb
}

// ToNRGBA 转为 NRGBA，已经是 NRGBA 时原样返回（调用方不得修改）
func ToNRGBA(img image.Image) *image.NRGBA {
	if nrgba, ok := img.(*image.NRGBA); ok {
		return nrgba
	}
	b := img.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	return dst
}

// copyNRGBA 逐行拷贝 Pix，不经过预乘颜色往返，半透明像素保持原值
func copyNRGBA(dst *image.NRGBA, dp image.Point, src *image.NRGBA, sr image.Rectangle) {
	n := sr.Dx() * 4
	for y := 0; y < sr.Dy(); y++ {
		si := src.PixOffset(sr.Min.X, sr.Min.Y+y)
		di := dst.PixOffset(dp.X, dp.Y+y)
		copy(dst.Pix[di:di+n], src.Pix[si:si+n])
	}
}

func sameSize(a, b image.Rectangle) bool {
	return a.Dx() == b.Dx() && a.Dy() == b.Dy()
}
