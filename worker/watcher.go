package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	doneDir   = "done"
	failedDir = "failed"
)

// Watcher 按 cron 表达式定时扫描收件目录，处理完的原图移到 done/ 或 failed/，
// 超时或被取消的留在收件目录等下一轮
type Watcher struct {
	Pool     *Pool
	Inbox    string
	Schedule string
	Logger   *zap.Logger

	cron *cron.Cron
}

func NewWatcher(pool *Pool, inbox, schedule string) *Watcher {
	return &Watcher{
		Pool:     pool,
		Inbox:    inbox,
		Schedule: schedule,
		Logger:   zap.NewNop(),
	}
}

// Start 注册定时任务后立即返回；上一轮未结束时跳过本轮
func (w *Watcher) Start(ctx context.Context) error {
	if w.cron != nil {
		return errors.New("watcher already started")
	}
	if err := os.MkdirAll(w.Inbox, 0o755); err != nil {
		return fmt.Errorf("ensure inbox: %w", err)
	}

	l := cronLogger{w.logger().Sugar()}
	c := cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)))
	if _, err := c.AddFunc(w.Schedule, func() {
		if _, err := w.Sweep(ctx); err != nil {
			w.logger().Error("sweep inbox", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", w.Schedule, err)
	}

	w.cron = c
	c.Start()
	w.logger().Info("watching inbox", zap.String("inbox", w.Inbox), zap.String("schedule", w.Schedule))
	return nil
}

// Stop 停止调度，等待正在进行的一轮结束
func (w *Watcher) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.cron = nil
}

// Sweep 处理收件目录里当前所有的图片
func (w *Watcher) Sweep(ctx context.Context) ([]Result, error) {
	entries, err := os.ReadDir(w.Inbox)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var jobs []Job
	for _, e := range entries {
		if e.IsDir() || !isPhoto(e.Name()) {
			continue
		}
		jobs = append(jobs, NewJob(filepath.Join(w.Inbox, e.Name())))
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Source < jobs[j].Source })

	results := w.Pool.Run(ctx, jobs)

	var failed, retry int
	for _, r := range results {
		dir := doneDir
		switch {
		case r.Err == nil:
		case r.Retryable || errors.Is(r.Err, context.Canceled):
			// 留在收件目录，下一轮重试
			retry++
			continue
		default:
			dir = failedDir
			failed++
		}
		if err := moveInto(r.Job.Source, filepath.Join(w.Inbox, dir)); err != nil {
			w.logger().Error("move original", zap.String("source", r.Job.Source), zap.Error(err))
		}
	}

	w.logger().Info("inbox swept", zap.Int("jobs", len(jobs)), zap.Int("failed", failed), zap.Int("retry", retry))
	return results, nil
}

func isPhoto(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return true
	}
	return false
}

func moveInto(path, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.Rename(path, filepath.Join(dir, filepath.Base(path)))
}

func (w *Watcher) logger() *zap.Logger {
	if w.Logger == nil {
		return zap.NewNop()
	}
	return w.Logger
}

// cronLogger 把 cron 的日志接到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
