package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"

	"matchbook/config"
	"matchbook/domain/orderbook"
	"matchbook/infra/kafka"
	"matchbook/infra/logger"
	"matchbook/infra/metrics"
	"matchbook/jobs/broadcaster"
	"matchbook/report"
	"matchbook/service"
)

type seed struct {
	qty   int64
	price float64
}

var (
	seedBids = []seed{
		{5, 98.5}, {12, 98.6}, {20, 98.9}, {15, 99.0},
		{8, 99.1}, {10, 99.5}, {14, 99.3}, {11, 99.4},
	}
	seedAsks = []seed{
		{8, 100.0}, {10, 100.5}, {7, 100.8}, {12, 101.0},
		{9, 101.3}, {10, 101.6}, {15, 102.0}, {5, 102.3},
	}
)

func main() {
	if err := run(); err != nil {
		logFatal(os.Stderr, err)
		os.Exit(1)
	}
}

// logFatal reports an error from run. Config may be what failed, so the
// logger is built from defaults.
func logFatal(w io.Writer, err error) {
	logger.New("error", "text", w).Component("main").Error("matchbook exited", "err", err)
}

func run() error {
	// ---------------- Config ----------------

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	log.Info("config loaded", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------- Metrics ----------------

	rec := metrics.New(cfg.Metrics.Namespace)
	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", rec.Handler())
		metricsSrv = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics listener exited", "err", err)
			}
		}()
		log.Info("metrics listening", "addr", cfg.Metrics.Addr)
	}

	// ---------------- Fill reports ----------------

	sink, err := newSink(cfg.Report, log)
	if err != nil {
		return err
	}
	ser, err := broadcaster.NewSerializer(cfg.Report.Encoding)
	if err != nil {
		return err
	}
	bc := broadcaster.New(sink, ser, log, rec, broadcaster.Options{
		QueueSize:    cfg.Report.QueueSize,
		WriteTimeout: cfg.Report.WriteTimeout,
	})

	bcCtx, stopBroadcast := context.WithCancel(ctx)
	bcDone := make(chan error, 1)
	go func() { bcDone <- bc.Run(bcCtx) }()

	// ---------------- Service ----------------

	svc := service.NewOrderService(orderbook.NewOrderBook(), log, rec, bc, time.Now)

	opts := []report.Option{report.BarCap(cfg.Demo.BarCap)}
	if !cfg.Demo.Color {
		opts = append(opts, report.NoColor())
	}
	printer := report.NewPrinter(os.Stdout, opts...)

	// ---------------- Demo ----------------

	if err := demo(svc, printer); err != nil {
		stopBroadcast()
		<-bcDone
		return err
	}

	stopBroadcast()
	if err := <-bcDone; err != nil {
		log.Error("broadcaster shutdown", "err", err)
	}
	st := bc.Stats()
	log.Info("fill reports", "sent", st.Sent, "failed", st.Failed, "dropped", st.Dropped)

	if metricsSrv != nil {
		log.Info("serving metrics until interrupted")
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return errors.Wrap(metricsSrv.Shutdown(shutdownCtx), "shutdown metrics listener")
	}
	return nil
}

func demo(svc *service.OrderService, printer *report.Printer) error {
	for _, s := range seedBids {
		if err := svc.AddOrder(s.qty, s.price, orderbook.Bid); err != nil {
			return errors.Wrap(err, "seed bids")
		}
	}
	for _, s := range seedAsks {
		if err := svc.AddOrder(s.qty, s.price, orderbook.Ask); err != nil {
			return errors.Wrap(err, "seed asks")
		}
	}
	if err := printer.PrintBook(svc.Snapshot(0)); err != nil {
		return err
	}

	steps := []struct {
		typ   orderbook.OrderType
		qty   int64
		side  orderbook.Side
		limit float64
	}{
		{orderbook.Limit, 20, orderbook.Buy, 100.0},
		{orderbook.Market, 16, orderbook.Sell, 0},
	}
	for _, st := range steps {
		fill, err := svc.HandleOrder(st.typ, st.qty, st.side, st.limit)
		if err != nil {
			return errors.Wrapf(err, "%s %s %d", st.typ, st.side, st.qty)
		}
		if err := printer.PrintFill(fill.Execution, fill.Requested, fill.Elapsed); err != nil {
			return err
		}
		if err := printer.PrintBook(svc.Snapshot(0)); err != nil {
			return err
		}
	}
	return nil
}

func newSink(cfg config.ReportConfig, log *logger.Logger) (broadcaster.Sink, error) {
	switch cfg.Sink {
	case "kafka-go":
		return kafka.NewProducer(cfg.Brokers, cfg.Topic, cfg.WriteTimeout)
	case "sarama":
		return kafka.NewSaramaProducer(cfg.Brokers, cfg.Topic)
	case "log":
		return broadcaster.NewLogSink(log), nil
	default:
		return broadcaster.DiscardSink{}, nil
	}
}
