package worker

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chaos-io/prettify/studio"
	"github.com/chaos-io/prettify/util"
)

// Prettifier 由 *studio.Pipeline 实现
type Prettifier interface {
	Prettify(ctx context.Context, photo image.Image) (*image.RGBA, error)
}

var _ Prettifier = (*studio.Pipeline)(nil)

// Job 一张待处理的照片，Source 为本地路径或 http(s) 地址
type Job struct {
	ID     string
	Source string
}

func NewJob(source string) Job {
	return Job{ID: ksuid.New().String(), Source: source}
}

// Key 成片在 Sink 里的名字
func (j Job) Key() string {
	base := strings.TrimSuffix(filepath.Base(j.Source), filepath.Ext(j.Source))
	if base == "" || base == "." || base == "/" {
		return j.ID + ".jpg"
	}
	return j.ID + "_" + base + ".jpg"
}

type Result struct {
	Job       Job
	Location  string
	Err       error
	Retryable bool
	Took      time.Duration
}

// Pool 并发处理一批照片，单个失败不影响其他
type Pool struct {
	Prettifier  Prettifier
	Sink        Sink
	Concurrency int
	JPEGQuality int
	Logger      *zap.Logger
}

func NewPool(p Prettifier, sink Sink, concurrency int) *Pool {
	return &Pool{
		Prettifier:  p,
		Sink:        sink,
		Concurrency: concurrency,
		JPEGQuality: util.DefaultJPEGQuality,
		Logger:      zap.NewNop(),
	}
}

// Run 按输入顺序返回每个 job 的结果
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(1, p.Concurrency))
	for i, job := range jobs {
		g.Go(func() error {
			results[i] = p.process(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (p *Pool) process(ctx context.Context, job Job) Result {
	start := time.Now()
	log := p.logger().With(zap.String("job", job.ID), zap.String("source", job.Source))

	location, err := p.do(ctx, job)
	res := Result{
		Job:       job,
		Location:  location,
		Err:       err,
		Retryable: studio.Retryable(err),
		Took:      time.Since(start),
	}

	if err != nil {
		log.Error("prettify failed", zap.Error(err), zap.Bool("retryable", res.Retryable), zap.Duration("took", res.Took))
	} else {
		log.Info("prettified", zap.String("location", location), zap.Duration("took", res.Took))
	}
	return res
}

func (p *Pool) do(ctx context.Context, job Job) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	photo, err := util.LoadImage(ctx, job.Source)
	if err != nil {
		return "", err
	}

	out, err := p.Prettifier.Prettify(ctx, photo)
	if err != nil {
		return "", fmt.Errorf("prettify: %w", err)
	}

	data, err := util.JPEGBytes(out, p.JPEGQuality)
	if err != nil {
		return "", err
	}

	location, err := p.Sink.Put(ctx, job.Key(), data)
	if err != nil {
		return "", fmt.Errorf("put %s: %w", job.Key(), err)
	}
	return location, nil
}

func (p *Pool) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
