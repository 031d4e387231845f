package studio

import (
	"fmt"
	"image"

	"github.com/go-playground/validator/v10"
)

// RGB 8 位 RGB 颜色
type RGB [3]uint8

// Params 成片配方的固定参数
//
//	BlurRadius   阴影 box blur 的核边长（像素）
//	ShadowOffset 阴影平移量，模拟光源方向
//	TargetAspect 输出画幅 高/宽
type Params struct {
	BlurRadius       int         `mapstructure:"blur_radius" yaml:"blur_radius" validate:"gte=0"`
	ShadowOffset     image.Point `mapstructure:"shadow_offset" yaml:"shadow_offset"`
	ShadowOpacity    float64     `mapstructure:"shadow_opacity" yaml:"shadow_opacity" validate:"gte=0"`
	TopColor         RGB         `mapstructure:"top_color" yaml:"top_color"`
	BottomColor      RGB         `mapstructure:"bottom_color" yaml:"bottom_color"`
	VignetteExponent float64     `mapstructure:"vignette_exponent" yaml:"vignette_exponent" validate:"gte=0"`
	VignetteScale    float64     `mapstructure:"vignette_scale" yaml:"vignette_scale" validate:"gte=0"`
	PaddingRatio     float64     `mapstructure:"padding_ratio" yaml:"padding_ratio" validate:"gte=0"`
	TargetAspect     float64     `mapstructure:"target_aspect" yaml:"target_aspect" validate:"gt=0"`
}

// DefaultParams 默认的影棚配方
func DefaultParams() Params {
	return Params{
		BlurRadius:       32,
		ShadowOffset:     image.Pt(-25, 60),
		ShadowOpacity:    0.2,
		TopColor:         RGB{245, 245, 245},
		BottomColor:      RGB{235, 235, 235},
		VignetteExponent: 2,
		VignetteScale:    0.1,
		PaddingRatio:     0.1,
		TargetAspect:     1.333,
	}
}

var validate = validator.New()

func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
