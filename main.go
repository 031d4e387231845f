package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chaos-io/prettify/config"
	"github.com/chaos-io/prettify/logging"
	"github.com/chaos-io/prettify/studio"
	"github.com/chaos-io/prettify/studio/rembg"
	"github.com/chaos-io/prettify/util"
	"github.com/chaos-io/prettify/worker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "配置文件路径（yaml）")
	watch := flag.Bool("watch", false, "定时扫描收件目录，而不是处理命令行给出的图片")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config file] [-watch] [photo ...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	oracle, closeOracle, err := newOracle(cfg.Segmenter)
	if err != nil {
		return err
	}
	defer closeOracle()

	adapter := rembg.NewAdapter(oracle, cfg.Segmenter.Timeout)
	adapter.Logger = logger.Named("rembg")

	pipeline := studio.New(adapter, cfg.Studio)
	pipeline.MaxInputEdge = cfg.MaxInputEdge
	pipeline.Logger = logger.Named("studio")

	sink, err := worker.NewDirSink(cfg.Worker.Outbox)
	if err != nil {
		return err
	}

	pool := worker.NewPool(pipeline, sink, cfg.Worker.Concurrency)
	pool.JPEGQuality = cfg.Worker.JPEGQuality
	pool.Logger = logger.Named("pool")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *watch {
		w := worker.NewWatcher(pool, cfg.Worker.Inbox, cfg.Worker.Schedule)
		w.Logger = logger.Named("watcher")
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		logger.Info("shutting down")
		w.Stop()
		return nil
	}

	if flag.NArg() == 0 {
		flag.Usage()
		return errors.New("no photos given")
	}

	jobs := make([]worker.Job, 0, flag.NArg())
	for _, src := range flag.Args() {
		jobs = append(jobs, worker.NewJob(src))
	}

	defer util.Trace(logger, "batch done", zap.Int("jobs", len(jobs)))()

	var failed int
	for _, r := range pool.Run(ctx, jobs) {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s\tFAILED\t%v\n", r.Job.Source, r.Err)
			continue
		}
		fmt.Printf("%s\t%s\n", r.Job.Source, r.Location)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d photos failed", failed, len(jobs))
	}
	return nil
}

func newOracle(cfg config.Segmenter) (rembg.Oracle, func(), error) {
	switch cfg.Kind {
	case "onnx":
		o, err := rembg.NewONNXOracle(rembg.ONNXConfig{
			ModelPath:      cfg.ModelPath,
			SharedLibPath:  cfg.SharedLibPath,
			IntraOpThreads: cfg.Threads,
		})
		if err != nil {
			return nil, nil, err
		}
		return o, func() { _ = o.Close() }, nil
	case "alpha":
		return rembg.AlphaOracle{}, func() {}, nil
	default:
		o := rembg.NewHTTPOracle(cfg.URL, nil)
		o.Timeout = cfg.Timeout
		return o, func() {}, nil
	}
}
