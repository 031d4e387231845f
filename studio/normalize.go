package studio

import (
	"image"
)

// Normalize 裁掉没有内容的边缘，四周按比例留白，再对称扩展画布到目标画幅
//
//	内容像素只拷贝，不缩放
//	居中偏移向下取整
func Normalize(cutout *image.NRGBA, paddingRatio, targetAspect float64) (*image.NRGBA, error) {
	bbox, err := alphaBBox(cutout)
	if err != nil {
		return nil, err
	}

	w, h := bbox.Dx(), bbox.Dy()
	padW := int(float64(w) * paddingRatio)
	padH := int(float64(h) * paddingRatio)
	paddedW, paddedH := w+2*padW, h+2*padH

	targetW, targetH := targetCanvas(paddedW, paddedH, targetAspect)
	offX := (targetW-paddedW)/2 + padW
	offY := (targetH-paddedH)/2 + padH

	dst := image.NewNRGBA(image.Rect(0, 0, targetW, targetH))
	copyNRGBA(dst, image.Pt(offX, offY), cutout, bbox)
	return dst, nil
}

// targetCanvas 高度不足时加高，过高时加宽，正好时不变
func targetCanvas(w, h int, aspect float64) (int, int) {
	want := float64(w) * aspect
	switch {
	case float64(h) < want:
		return w, max(h, int(want))
	case float64(h) > want:
		return max(w, int(float64(h)/aspect)), h
	default:
		return w, h
	}
}

// alphaBBox 所有 alpha > 0 像素的外接矩形（绝对坐标）
func alphaBBox(img *image.NRGBA) (image.Rectangle, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	minX, minY := w, h
	maxX, maxY := -1, -1

	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			if row[x*4+3] == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = max(maxY, y)
		}
	}

	if maxX < 0 {
		return image.Rectangle{}, ErrEmptyContent
	}

	return image.Rect(minX, minY, maxX+1, maxY+1).Add(b.Min), nil
}
