package studio

import (
	"fmt"
	"image"
)

// GradientBackdrop 竖直方向的线性渐变，第一行 top，最后一行 bottom，每行所有列相同
func GradientBackdrop(rect image.Rectangle, top, bottom RGB) *image.RGBA {
	w, h := rect.Dx(), rect.Dy()
	bg := image.NewRGBA(rect)

	var ramps [3][]float64
	for c := 0; c < 3; c++ {
		ramps[c] = linspace(float64(top[c]), float64(bottom[c]), h)
	}

	for y := 0; y < h; y++ {
		row := bg.Pix[y*bg.Stride : y*bg.Stride+w*4]
		r, g, b := uint8(ramps[0][y]), uint8(ramps[1][y]), uint8(ramps[2][y])
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = r, g, b, 255
		}
	}
	return bg
}

// CompositeShadow 按 opacity×shadow 把背景压向黑色：
//
//	out = (opacity·a)·0 + (1 − opacity·a)·bg
//
// 乘积不做截断，opacity·a > 1 时结果按字节回绕。
func CompositeShadow(bg *image.RGBA, shadow NormalizedAlpha, opacity float64) (*image.RGBA, error) {
	if !sameSize(bg.Bounds(), shadow.Rect) {
		return nil, fmt.Errorf("composite shadow: %w: background %v, shadow %v", ErrSizeMismatch, bg.Bounds(), shadow.Rect)
	}

	b := bg.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(b)
	for y := 0; y < h; y++ {
		src := bg.Pix[y*bg.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			// 黑色项恒为 0，只剩背景保留的部分
			keep := 1 - opacity*shadow.Pix[y*shadow.Stride+x]
			i := x * 4
			out[i] = truncate(keep * float64(src[i]))
			out[i+1] = truncate(keep * float64(src[i+1]))
			out[i+2] = truncate(keep * float64(src[i+2]))
			out[i+3] = 255
		}
	}
	return dst, nil
}

// CompositeForeground alpha-over：out = a·fg + (1 − a)·bg
func CompositeForeground(fg *image.RGBA, alpha NormalizedAlpha, bg *image.RGBA) (*image.RGBA, error) {
	if !sameSize(fg.Bounds(), alpha.Rect) || !sameSize(fg.Bounds(), bg.Bounds()) {
		return nil, fmt.Errorf("composite foreground: %w: foreground %v, alpha %v, background %v",
			ErrSizeMismatch, fg.Bounds(), alpha.Rect, bg.Bounds())
	}

	w, h := fg.Bounds().Dx(), fg.Bounds().Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		f := fg.Pix[y*fg.Stride:]
		g := bg.Pix[y*bg.Stride:]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < w; x++ {
			a := alpha.Pix[y*alpha.Stride+x]
			i := x * 4
			for c := 0; c < 3; c++ {
				// 显式 float64() 阻止编译器把乘加合并成 FMA，保证逐位一致
				out[i+c] = truncate(float64(a*float64(f[i+c])) + float64((1-a)*float64(g[i+c])))
			}
			out[i+3] = 255
		}
	}
	return dst, nil
}

// truncate 向零取整后取低 8 位，等同 C 里 double 转 unsigned char
func truncate(v float64) uint8 {
	return uint8(int64(v))
}

// linspace n 个等距点，首尾精确等于 start、stop；n == 1 时只有 start
func linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = start
		return out
	}

	div := float64(n - 1)
	delta := stop - start
	step := delta / div
	for i := range out {
		if step == 0 {
			out[i] = float64(i)/div*delta + start
		} else {
			out[i] = float64(float64(i)*step) + start
		}
	}
	out[n-1] = stop
	return out
}
