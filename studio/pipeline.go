package studio

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"
)

// Segmenter 把原图变成同尺寸的 RGBA 抠图，alpha 为前景遮罩
type Segmenter interface {
	Segment(ctx context.Context, photo image.Image) (*image.NRGBA, error)
}

// Pipeline 商品图美化流程：抠图 -> 裁边留白 -> 阴影 + 渐变背景 -> 合成 -> 暗角
//
// Pipeline 创建后只读，可以被多个 goroutine 同时使用
type Pipeline struct {
	Segmenter Segmenter
	Params    Params
	// MaxInputEdge 分割前把最长边缩到不超过该值，0 表示不缩放
	MaxInputEdge int
	Logger       *zap.Logger
}

func New(seg Segmenter, params Params) *Pipeline {
	return &Pipeline{
		Segmenter: seg,
		Params:    params,
		Logger:    zap.NewNop(),
	}
}

// Prettify 对一张原图执行完整流程，返回不透明的 RGB 图
func (p *Pipeline) Prettify(ctx context.Context, photo image.Image) (*image.RGBA, error) {
	if err := p.Params.Validate(); err != nil {
		return nil, err
	}
	if p.Segmenter == nil {
		return nil, &SegmentationError{Op: "segment", Err: errors.New("no segmenter configured")}
	}
	if photo == nil || photo.Bounds().Empty() {
		return nil, &SegmentationError{Op: "segment", Err: errors.New("empty photo")}
	}

	log := p.logger()
	start := time.Now()

	photo = resizeWithinMax(photo, p.MaxInputEdge)

	cutout, err := p.segment(ctx, photo)
	if err != nil {
		return nil, err
	}
	log.Debug("segmented", zap.Stringer("size", cutout.Bounds().Size()), zap.Duration("took", time.Since(start)))

	stage := time.Now()
	framed, err := Normalize(cutout, p.Params.PaddingRatio, p.Params.TargetAspect)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	log.Debug("normalized", zap.Stringer("size", framed.Bounds().Size()), zap.Duration("took", time.Since(stage)))

	stage = time.Now()
	out, err := Compose(framed, p.Params)
	if err != nil {
		return nil, err
	}
	log.Debug("composed", zap.Duration("took", time.Since(stage)), zap.Duration("total", time.Since(start)))

	return out, nil
}

func (p *Pipeline) segment(ctx context.Context, photo image.Image) (*image.NRGBA, error) {
	cutout, err := p.Segmenter.Segment(ctx, photo)
	if err != nil {
		if errors.Is(err, ErrSegmentation) || errors.Is(err, ErrSegmentationTimeout) {
			return nil, err
		}
		return nil, &SegmentationError{Op: "segment", Err: err}
	}
	if cutout == nil {
		return nil, &SegmentationError{Op: "segment", Err: errors.New("segmenter returned no cutout")}
	}
	if !sameSize(cutout.Bounds(), photo.Bounds()) {
		return nil, &SegmentationError{
			Op:  "segment",
			Err: fmt.Errorf("%w: cutout %v, photo %v", ErrSizeMismatch, cutout.Bounds().Size(), photo.Bounds().Size()),
		}
	}
	return cutout, nil
}

// Compose 在已经裁好画幅的抠图上生成阴影、背景并合成，最后加暗角
func Compose(framed *image.NRGBA, params Params) (*image.RGBA, error) {
	alpha := ExtractAlpha(framed)
	shadow := Shadow(alpha, params.ShadowOffset, params.BlurRadius)
	bg := GradientBackdrop(framed.Bounds(), params.TopColor, params.BottomColor)

	shaded, err := CompositeShadow(bg, NormalizeAlpha(shadow), params.ShadowOpacity)
	if err != nil {
		return nil, fmt.Errorf("shadow: %w", err)
	}

	out, err := CompositeForeground(ExtractRGB(framed), NormalizeAlpha(alpha), shaded)
	if err != nil {
		return nil, fmt.Errorf("foreground: %w", err)
	}

	return Vignette(out, params.VignetteExponent, params.VignetteScale), nil
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
