package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type serveCmd struct {
	Listen string `short:"l" default:":9977" help:"Address to serve metrics on."`
	Config string `short:"c" optional:"" type:"existingfile" help:"Path to a YAML configuration file."`
}

// probeCollector probes the attached volumes on every scrape so that the
// exported statistics are current rather than sampled at startup.
type probeCollector struct {
	cfg    *Config
	logger *zap.Logger
}

func (pc *probeCollector) Describe(c chan<- *prometheus.Desc) {
}

func (pc *probeCollector) Collect(c chan<- prometheus.Metric) {
	state, err := collectState(true, pc.cfg.Allowed)
	if err != nil {
		pc.logger.Error("failed to collect volume state", zap.Error(err))
		return
	}
	for _, m := range buildMetrics(state) {
		c <- m
	}
}

func (s *serveCmd) Run(_ *context) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	// Device probe failures inside collectState are reported through the
	// standard logger, route them through zap while serving.
	defer zap.RedirectStdLog(logger)()

	cfg, err := loadConfig(s.Config)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(&probeCollector{cfg: cfg, logger: logger})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	logger.Info("serving volume metrics",
		zap.String("address", s.Listen),
		zap.Strings("devices", cfg.Devices))
	return http.ListenAndServe(s.Listen, mux)
}
