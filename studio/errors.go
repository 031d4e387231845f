package studio

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSegmentation 分割服务不可用、返回了畸形结果或输入无法处理
	ErrSegmentation = errors.New("segmentation failed")
	// ErrSegmentationTimeout 分割调用超过了调用方给定的时限，调用方可以重试
	ErrSegmentationTimeout = errors.New("segmentation timed out")
	// ErrEmptyContent 抠图结果里没有任何非透明像素
	ErrEmptyContent = errors.New("cutout has no visible content")
	ErrInvalidParams = errors.New("invalid params")
	ErrSizeMismatch  = errors.New("raster size mismatch")
)

// SegmentationError 记录分割失败发生在哪一步
type SegmentationError struct {
	Op  string
	Err error
}

func (e *SegmentationError) Error() string {
	if e.Err == nil {
		return "segmentation: " + e.Op
	}
	return "segmentation: " + e.Op + ": " + e.Err.Error()
}

func (e *SegmentationError) Unwrap() error { return e.Err }

func (e *SegmentationError) Is(target error) bool { return target == ErrSegmentation }

// TimeoutError 分割超时
type TimeoutError struct {
	After time.Duration
}

func (e *TimeoutError) Error() string {
	if e.After <= 0 {
		return ErrSegmentationTimeout.Error()
	}
	return fmt.Sprintf("%s after %s", ErrSegmentationTimeout, e.After)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

func (e *TimeoutError) Is(target error) bool { return target == ErrSegmentationTimeout }

// Retryable 只有超时值得调用方重试，其余失败重试也不会变
func Retryable(err error) bool {
	return errors.Is(err, ErrSegmentationTimeout)
}
