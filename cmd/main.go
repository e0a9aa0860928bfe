package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smart_fridge/internal/config"
	"smart_fridge/internal/handlers"
	"smart_fridge/internal/logger"
	"smart_fridge/internal/metrics"
	"smart_fridge/internal/render"
	"smart_fridge/internal/repository"
	"smart_fridge/internal/repository/db"
	"smart_fridge/internal/server"
	"smart_fridge/internal/service"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

const (
	defaultConfigPath = "configs/config.yml"
	shutdownTimeout   = 10 * time.Second
)

var version = "1.0.0"

type options struct {
	configPath  string
	help        bool
	version     bool
	printConfig bool
}

func parseFlags(args []string, stderr io.Writer) (options, *pflag.FlagSet, error) {
	var o options
	fs := pflag.NewFlagSet("smart_fridge", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.configPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	fs.BoolVarP(&o.help, "help", "h", false, "show this help")
	fs.BoolVarP(&o.version, "version", "v", false, "show version, thresholds and display geometry")
	fs.BoolVar(&o.printConfig, "print-config", false, "print the effective configuration and exit")
	if err := fs.Parse(args); err != nil {
		return o, fs, err
	}
	// An absent default file means built-in values; an explicit path must exist.
	if !fs.Changed("config") {
		if _, err := os.Stat(o.configPath); errors.Is(err, os.ErrNotExist) {
			o.configPath = ""
		}
	}
	return o, fs, nil
}

func printVersion(w io.Writer, cfg config.Config) {
	fmt.Fprintf(w, "Smart Fridge Controller v%s\n", version)
	fmt.Fprintf(w, "Temperature range: %.1f°C to %.1f°C (target %.1f°C)\n",
		cfg.Thresholds.MinTempC, cfg.Thresholds.MaxTempC, cfg.Targets.TemperatureC)
	fmt.Fprintf(w, "Door alarm after: %s\n", cfg.Thresholds.DoorOpen)
	fmt.Fprintf(w, "Max energy draw: %.0fW (target %.0fW)\n", cfg.Thresholds.MaxEnergyW, cfg.Targets.EnergyWatts)
	fmt.Fprintf(w, "Display: 2x%d\n", cfg.Display.Cols)
}

func main() {
	opts, flags, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.help {
		fmt.Fprintf(os.Stdout, "Usage: smart_fridge [flags]\n%s", flags.FlagUsages())
		return
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error reading config:", err)
		os.Exit(1)
	}
	switch {
	case opts.version:
		printVersion(os.Stdout, cfg)
		return
	case opts.printConfig:
		if err := cfg.WriteYAML(os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error reading config:", err)
		os.Exit(1)
	}
	log, err := logger.Open(level, cfg.Log.File)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to open log:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, stop, cfg, opts.configPath, log)
	stop()
	if err != nil {
		log.Errorw("smart fridge controller failed", "err", err)
	}
	_ = log.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run wires the controller and blocks until ctx is cancelled. Every resource it
// opens is closed before it returns.
func run(ctx context.Context, stop context.CancelFunc, cfg config.Config, configPath string, log *logger.Logger) error {
	fs := afero.NewOsFs()
	source := repository.NewFileSource(fs, cfg.Workspace)
	created, err := source.EnsureDefaults(ctx, cfg.Targets)
	if err != nil {
		return fmt.Errorf("prepare workspace %q: %w", cfg.Workspace.Dir, err)
	}
	for _, id := range created {
		log.Infow("created default sensor file", "sensor", id.String(), "path", source.Path(id))
	}

	sqlDB, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("init sqlite at %q: %w", cfg.DB.Path, err)
	}
	defer func() {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	m := metrics.New()
	repos := repository.NewRepository(sqlDB, source)
	services := service.NewService(cfg, repos, service.Deps{
		Log:     log,
		Metrics: m,
		Fs:      fs,
		Sinks: []render.Sink{
			render.NewConsole(os.Stdout),
			render.NewFile(fs, cfg.Display.File, cfg.Display.Cols),
		},
	})

	var srv *server.Server
	if cfg.HTTP.Enabled {
		srv = server.New(cfg.HTTP.Port, handlers.NewHandler(services, log, m).InitRoutes())
		runHTTPServer(srv, log, stop)
	}

	log.Infow("smart fridge controller starting", "version", version, "config", configPath)
	runErr := services.Run(ctx)

	shutdownHTTP(srv, log)
	log.Infow("smart fridge controller stopped")
	return runErr
}

// runHTTPServer serves the API in the background. A listen failure stops the controller.
func runHTTPServer(srv *server.Server, log *logger.Logger, stop context.CancelFunc) {
	go func() {
		if err := srv.Run(); err != nil {
			log.Errorw("http server failed", "addr", srv.Addr(), "err", err)
			stop()
		}
	}()
}

func shutdownHTTP(srv *server.Server, log *logger.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("http server forced to shutdown", "err", err)
	}
}
