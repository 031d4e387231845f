package studio

import (
	"image"
	"math"
)

// Shadow 平移 alpha 再做 box blur，得到柔和的投影轮廓
func Shadow(alpha *image.Gray, offset image.Point, blurRadius int) *image.Gray {
	return BoxBlur(OffsetAlpha(alpha, offset), blurRadius)
}

// OffsetAlpha 整数平移，移出画面的像素丢弃，移入的位置为 0
func OffsetAlpha(alpha *image.Gray, offset image.Point) *image.Gray {
	b := alpha.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)

	for y := 0; y < h; y++ {
		sy := y - offset.Y
		if sy < 0 || sy >= h {
			continue
		}
		src := alpha.Pix[sy*alpha.Stride : sy*alpha.Stride+w]
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := range row {
			sx := x - offset.X
			if sx < 0 || sx >= w {
				continue
			}
			row[x] = src[sx]
		}
	}
	return dst
}

// BoxBlur size×size 均值滤波，锚点在 size/2，边界按 reflect-101 取样（不重复边缘像素）。
// 先水平后垂直两次滑动窗口求和，整数累加，最后一次性取均值。
func BoxBlur(mask *image.Gray, size int) *image.Gray {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(b)
	if size <= 1 || w == 0 || h == 0 {
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], mask.Pix[y*mask.Stride:y*mask.Stride+w])
		}
		return dst
	}

	anchor := size / 2

	rows := make([]int, w*h)
	for y := 0; y < h; y++ {
		src := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		sum := 0
		for i := 0; i < size; i++ {
			sum += int(src[reflect101(i-anchor, w)])
		}
		for x := 0; x < w; x++ {
			rows[y*w+x] = sum
			sum += int(src[reflect101(x-anchor+size, w)]) - int(src[reflect101(x-anchor, w)])
		}
	}

	round := meanRounder(size * size)
	for x := 0; x < w; x++ {
		sum := 0
		for i := 0; i < size; i++ {
			sum += rows[reflect101(i-anchor, h)*w+x]
		}
		for y := 0; y < h; y++ {
			dst.Pix[y*dst.Stride+x] = round(sum)
			sum += rows[reflect101(y-anchor+size, h)*w+x] - rows[reflect101(y-anchor, h)*w+x]
		}
	}
	return dst
}

// meanRounder 与 OpenCV 8 位 box filter 的取整方式一致：
// 核面积 <= 256 时走定点除法（.5 进位），更大的核乘以倒数后四舍六入五成双
func meanRounder(area int) func(sum int) uint8 {
	if area <= 256 {
		return func(sum int) uint8 {
			return uint8(min((sum+area/2)/area, 255))
		}
	}
	scale := 1 / float64(area)
	return func(sum int) uint8 {
		return uint8(min(math.RoundToEven(float64(sum)*scale), 255))
	}
}

// reflect101 把越界下标映射回 [0, n)：-1 -> 1, n -> n-2
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		} else {
			i = 2*(n-1) - i
		}
	}
	return i
}
