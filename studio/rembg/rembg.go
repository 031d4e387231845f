package rembg

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"go.uber.org/zap"

	"github.com/chaos-io/prettify/studio"
)

// Oracle 前景分割模型，返回与输入同尺寸的灰度遮罩，255 为前景
type Oracle interface {
	Mask(ctx context.Context, img image.Image) (*image.Gray, error)
}

// OracleFunc 把普通函数适配为 Oracle
type OracleFunc func(ctx context.Context, img image.Image) (*image.Gray, error)

func (f OracleFunc) Mask(ctx context.Context, img image.Image) (*image.Gray, error) {
	return f(ctx, img)
}

// Adapter 调用 Oracle 并把遮罩贴到原图上作为 alpha，实现 studio.Segmenter
//
// 不会伪造遮罩：模型失败、返回 nil 或尺寸不符都作为分割错误返回
type Adapter struct {
	Oracle  Oracle
	Timeout time.Duration
	Logger  *zap.Logger
}

var _ studio.Segmenter = (*Adapter)(nil)

func NewAdapter(oracle Oracle, timeout time.Duration) *Adapter {
	return &Adapter{
		Oracle:  oracle,
		Timeout: timeout,
		Logger:  zap.NewNop(),
	}
}

type maskResult struct {
	mask *image.Gray
	err  error
}

func (a *Adapter) Segment(ctx context.Context, photo image.Image) (*image.NRGBA, error) {
	if a.Oracle == nil {
		return nil, &studio.SegmentationError{Op: "mask", Err: errors.New("no oracle configured")}
	}
	if photo == nil || photo.Bounds().Empty() {
		return nil, &studio.SegmentationError{Op: "validate", Err: errors.New("empty photo")}
	}

	start := time.Now()
	mask, err := a.mask(ctx, photo)
	if err != nil {
		a.logger().Warn("segmentation failed", zap.Error(err), zap.Duration("took", time.Since(start)))
		return nil, err
	}

	if mask == nil {
		return nil, &studio.SegmentationError{Op: "mask", Err: errors.New("oracle returned no mask")}
	}
	pb, mb := photo.Bounds(), mask.Bounds()
	if pb.Dx() != mb.Dx() || pb.Dy() != mb.Dy() {
		return nil, &studio.SegmentationError{
			Op:  "mask",
			Err: fmt.Errorf("%w: mask %v, photo %v", studio.ErrSizeMismatch, mb.Size(), pb.Size()),
		}
	}

	a.logger().Debug("mask ready", zap.Stringer("size", pb.Size()), zap.Duration("took", time.Since(start)))
	return applyMask(photo, mask), nil
}

// mask 在独立的 goroutine 里调用 Oracle，超时后立即返回，不等待不响应 ctx 的模型
func (a *Adapter) mask(ctx context.Context, photo image.Image) (*image.Gray, error) {
	var (
		callCtx context.Context
		cancel  context.CancelFunc
	)
	if a.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, a.Timeout)
	} else {
		callCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	ch := make(chan maskResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- maskResult{err: fmt.Errorf("oracle panic: %v", r)}
			}
		}()
		mask, err := a.Oracle.Mask(callCtx, photo)
		ch <- maskResult{mask: mask, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			if callCtx.Err() != nil {
				return nil, a.contextError(callCtx)
			}
			return nil, &studio.SegmentationError{Op: "mask", Err: r.err}
		}
		return r.mask, nil
	case <-callCtx.Done():
		return nil, a.contextError(callCtx)
	}
}

func (a *Adapter) contextError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &studio.TimeoutError{After: a.Timeout}
	}
	return &studio.SegmentationError{Op: "mask", Err: ctx.Err()}
}

// applyMask 颜色来自原图，alpha 来自遮罩
func applyMask(photo image.Image, mask *image.Gray) *image.NRGBA {
	src := studio.ToNRGBA(photo)
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	dst := image.NewNRGBA(b)
	for y := 0; y < h; y++ {
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w*4], src.Pix[y*src.Stride:y*src.Stride+w*4])
		m := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		row := dst.Pix[y*dst.Stride:]
		for x, v := range m {
			row[x*4+3] = v
		}
	}
	return dst
}

func (a *Adapter) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}
