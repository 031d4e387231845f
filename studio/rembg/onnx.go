package rembg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/nfnt/resize"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/image/draw"

	"github.com/chaos-io/prettify/studio"
)

// RMBG-1.4 固定输入 1x3x1024x1024，输出 1x1x1024x1024
const rmbgSide = 1024

type ONNXConfig struct {
	ModelPath      string
	SharedLibPath  string
	IntraOpThreads int
}

// ONNXOracle 本地 onnxruntime 推理。张量是复用的，Mask 串行执行
type ONNXOracle struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

func NewONNXOracle(cfg ONNXConfig) (*ONNXOracle, error) {
	if _, err := os.Stat(cfg.ModelPath); err != nil {
		return nil, fmt.Errorf("model not found at %s: %w", cfg.ModelPath, err)
	}
	if cfg.SharedLibPath != "" {
		if _, err := os.Stat(cfg.SharedLibPath); err != nil {
			return nil, fmt.Errorf("onnxruntime library not found at %s: %w", cfg.SharedLibPath, err)
		}
		ort.SetSharedLibraryPath(cfg.SharedLibPath)
	}

	if !ort.IsInitialized() {
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("initialize onnxruntime: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 3, rmbgSide, rmbgSide))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1, rmbgSide, rmbgSide))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer func() {
		_ = options.Destroy()
	}()
	if cfg.IntraOpThreads > 0 {
		_ = options.SetIntraOpNumThreads(cfg.IntraOpThreads)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"input"},
		[]string{"output"},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &ONNXOracle{session: session, input: input, output: output}, nil
}

func (o *ONNXOracle) Mask(ctx context.Context, img image.Image) (*image.Gray, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session == nil {
		return nil, errors.New("onnx oracle is closed")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fillInput(o.input.GetData(), img, rmbgSide)
	if err := o.session.Run(); err != nil {
		return nil, fmt.Errorf("run session: %w", err)
	}
	return maskFromOutput(o.output.GetData(), rmbgSide, img.Bounds().Size()), nil
}

// Close 释放会话和张量，环境保持初始化
func (o *ONNXOracle) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	if o.input != nil {
		errs = append(errs, o.input.Destroy())
		o.input = nil
	}
	if o.output != nil {
		errs = append(errs, o.output.Destroy())
		o.output = nil
	}
	if o.session != nil {
		errs = append(errs, o.session.Destroy())
		o.session = nil
	}
	return errors.Join(errs...)
}

// fillInput 缩放到 side×side，按 CHW 排列，像素值 v/255 - 0.5
func fillInput(data []float32, img image.Image, side int) {
	resized := studio.ToNRGBA(resize.Resize(uint(side), uint(side), img, resize.Bilinear))
	plane := side * side
	for y := 0; y < side; y++ {
		row := resized.Pix[y*resized.Stride:]
		for x := 0; x < side; x++ {
			i := x * 4
			p := y*side + x
			data[p] = float32(row[i])/255 - 0.5
			data[plane+p] = float32(row[i+1])/255 - 0.5
			data[2*plane+p] = float32(row[i+2])/255 - 0.5
		}
	}
}

// maskFromOutput 输出按 min-max 归一化到 0..1，缩放回原图尺寸后映射到 0..255。
// 输出没有起伏时得到全 0 遮罩
func maskFromOutput(data []float32, side int, size image.Point) *image.Gray {
	lo, hi := data[0], data[0]
	for _, v := range data[:side*side] {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	g16 := image.NewGray16(image.Rect(0, 0, side, side))
	if span := hi - lo; span > 0 {
		for i, v := range data[:side*side] {
			n := uint16(float64((v-lo)/span) * 65535)
			g16.Pix[2*i] = uint8(n >> 8)
			g16.Pix[2*i+1] = uint8(n)
		}
	}

	var scaled image.Image = g16
	if size.X != side || size.Y != side {
		scaled = resize.Resize(uint(size.X), uint(size.Y), g16, resize.Bilinear)
	}

	mask := image.NewGray(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(mask, mask.Bounds(), scaled, scaled.Bounds().Min, draw.Src)
	return mask
}
