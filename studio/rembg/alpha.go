package rembg

import (
	"context"
	"errors"
	"image"

	"github.com/chaos-io/prettify/studio"
)

// ErrNoAlpha 输入是完全不透明的普通照片，不是已有的抠图
var ErrNoAlpha = errors.New("image carries no transparency")

// AlphaOracle 输入本身已经是抠图时直接复用其 alpha，跳过模型推理
type AlphaOracle struct{}

func (AlphaOracle) Mask(ctx context.Context, img image.Image) (*image.Gray, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nrgba := studio.ToNRGBA(img)
	if !hasUsefulAlpha(nrgba) {
		return nil, ErrNoAlpha
	}
	return studio.ExtractAlpha(nrgba), nil
}

// hasUsefulAlpha 检查 alpha 通道是否 真的包含透明信息
// 只要存在非 255（非完全不透明），就认为“已有抠图”
func hasUsefulAlpha(img *image.NRGBA) bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 255 {
				return true
			}
		}
	}
	return false
}
