// cmd/agent/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	"github.com/tamzrod/telemetry-agent/internal/config"
	"github.com/tamzrod/telemetry-agent/internal/delivery"
	"github.com/tamzrod/telemetry-agent/internal/httpapi"
	"github.com/tamzrod/telemetry-agent/internal/ingest"
	"github.com/tamzrod/telemetry-agent/internal/metrics"
	"github.com/tamzrod/telemetry-agent/internal/poller"
	"github.com/tamzrod/telemetry-agent/internal/port"
	"github.com/tamzrod/telemetry-agent/internal/status"
)

const (
	exitFatal  = 1
	exitConfig = 2
)

// exitError carries the process exit status out of run.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func configError(format string, args ...any) error {
	return &exitError{code: exitConfig, err: fmt.Errorf(format, args...)}
}

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(exitFatal)
	}
}

// options are the command-line overrides.
type options struct {
	configPath   string
	once         bool
	statusListen string
	logLevel     string
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opt options

	flagSet := pflag.NewFlagSet("telemetry-agent", pflag.ContinueOnError)
	flagSet.StringVarP(&opt.configPath, "config", "c", "config.yaml", "path to the YAML or JSON configuration file")
	flagSet.BoolVar(&opt.once, "once", false, "register mode: read the sensor once, deliver, and exit")
	flagSet.StringVar(&opt.statusListen, "status-listen", "", "serve /healthz, /status and /metrics on this address (overrides status.listen)")
	flagSet.StringVar(&opt.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")

	if err := flagSet.Parse(args); err != nil {
		return opt, flagSet, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return opt, flagSet, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return opt, flagSet, nil
}

func run(args []string, stderr io.Writer) error {
	opt, flagSet, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &exitError{code: exitConfig, err: err}
	}

	// --------------------
	// Load + validate config
	// --------------------

	cfg, err := loadConfig(opt, flagSet)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --------------------
	// Observability
	// --------------------

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	tracker := status.NewTracker()

	// --------------------
	// Delivery
	// --------------------

	client, err := delivery.New(
		delivery.Config{
			Endpoint:          cfg.APIURL,
			APIKey:            cfg.APIKey,
			APIKeyHeader:      cfg.APIKeyHeader,
			Attempts:          cfg.Attempts(),
			Delay:             cfg.RetryDelay(),
			Timeout:           cfg.RequestTimeout(),
			RetryClientErrors: cfg.RetriesClientErrors(),
		},
		delivery.WithLogger(logger.With("component", "delivery")),
		delivery.WithObserver(m),
	)
	if err != nil {
		return configError("%w", err)
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	if cfg.Status.Listen != "" && !opt.once {
		srv := httpapi.NewServer(
			cfg.Status.Listen,
			httpapi.NewRouter(tracker, reg),
			accessLogWriter(cfg.Status, logger),
			logger.With("component", "httpapi"),
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				logger.Error("status_server_failed", "err", err)
			}
		}()
	}

	logger.Info("agent_starting",
		"source", cfg.Source,
		"sensor_id", cfg.SensorID,
		"api_url", cfg.APIURL,
		"retry_attempts", cfg.Attempts(),
		"retry_delay", cfg.RetryDelay(),
	)

	// ensure the status server stops once the pipeline returns
	defer stop()

	switch cfg.Source {
	case config.SourceModbus:
		err = runRegister(ctx, cfg, opt.once, client, logger, m, tracker)
	default:
		err = runSerial(ctx, cfg, client, logger, m, tracker)
	}
	if err != nil {
		logger.Error("agent_terminated", "err", err)
		return err
	}

	logger.Info("agent_stopped")
	return nil
}

func loadConfig(opt options, flagSet *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(opt.configPath)
	if err != nil {
		return nil, configError("config load failed: %w", err)
	}

	if flagSet.Changed("status-listen") {
		cfg.Status.Listen = opt.statusListen
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = opt.logLevel
	}

	if err := config.Validate(cfg); err != nil {
		return nil, configError("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	if opt.once && cfg.Source != config.SourceModbus {
		return nil, configError("--once requires source: %s", config.SourceModbus)
	}
	return cfg, nil
}

func newLogger(lc config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(lc.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if lc.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// accessLogWriter routes status server access lines into the agent log
// unless status.access_log is false.
func accessLogWriter(sc config.StatusConfig, logger *slog.Logger) io.Writer {
	if !sc.AccessLogEnabled() {
		return io.Discard
	}
	return httpapi.AccessLog(logger.With("component", "httpapi"))
}

// runSerial drives the serial ingestion loop until interrupt or a fatal fault.
func runSerial(ctx context.Context, cfg *config.Config, client *delivery.Client, logger *slog.Logger, m *metrics.Metrics, tracker *status.Tracker) error {
	var locator ingest.Locator
	if cfg.AutoDiscover() {
		locator = port.NewLocator(port.NewSystemEnumerator(), cfg.DeviceMatch)
	}

	loop, err := ingest.NewLoop(
		ingest.LoopConfig{
			SensorID:       cfg.SensorID,
			DevicePath:     cfg.SerialPort,
			AutoDiscover:   cfg.AutoDiscover(),
			BaudRate:       cfg.BaudRate,
			PollInterval:   cfg.PollInterval(),
			ReconnectDelay: cfg.ReconnectDelay(),
		},
		port.SerialOpener{ReadTimeout: cfg.ReadTimeout()},
		locator,
		client,
		ingest.WithLogger(logger.With("component", "ingest")),
		ingest.WithMetrics(m),
		ingest.WithStatus(tracker),
	)
	if err != nil {
		return configError("%w", err)
	}

	if err := loop.Run(ctx); err != nil {
		return &exitError{code: exitFatal, err: err}
	}
	return nil
}

// runRegister polls the register sensor on an interval; --once does a
// single read+deliver and fails unless the reading was delivered.
func runRegister(ctx context.Context, cfg *config.Config, once bool, client *delivery.Client, logger *slog.Logger, m *metrics.Metrics, tracker *status.Tracker) error {
	p, err := poller.Build(cfg.SensorID, cfg.Modbus)
	if err != nil {
		return configError("poller build failed: %w", err)
	}
	defer p.Close()

	orch := ingest.NewOrchestrator(cfg.SensorID, client, logger.With("component", "ingest"), m, tracker)

	if once {
		out, err := orch.Handle(ctx, p.PollOnce())
		if err != nil {
			return &exitError{code: exitFatal, err: err}
		}
		if out != delivery.Delivered {
			return &exitError{code: exitFatal, err: fmt.Errorf("reading not delivered: %s", out)}
		}
		return nil
	}

	// ---- channel between poller and orchestrator ----
	results := make(chan poller.PollResult)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.Run(ctx, results)
	}()

	err = orch.Run(ctx, results)
	wg.Wait()
	return err
}
