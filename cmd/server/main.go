package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hazyhaar/termlink/pkg/api"
	"github.com/hazyhaar/termlink/pkg/buildlog"
	"github.com/hazyhaar/termlink/pkg/termindex"
	"github.com/hazyhaar/termlink/pkg/watch"
	"github.com/mark3labs/mcp-go/server"
	"gopkg.in/yaml.v3"
)

type config struct {
	Addr           string        `yaml:"addr"`
	ContentDir     string        `yaml:"content_dir"`
	BuildDB        string        `yaml:"build_db"`
	BuildRetention time.Duration `yaml:"build_retention"`
	Watch          bool          `yaml:"watch"`
	WatchDebounce  time.Duration `yaml:"watch_debounce"`
	LogLevel       string        `yaml:"log_level"`
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: termlink <command>

Commands:
  serve   Start the HTTP server
  mcp     Serve the MCP tools over stdio
  import  Validate content sources and write snapshot.gob
  check   Load content and print the load report
`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	logger := newLogger(cfg.LogLevel, os.Stderr)

	reg := termindex.NewRegistry(cfg.ContentDir, logger)

	var builds *buildlog.Store
	if cfg.BuildDB != "" {
		var err error
		builds, err = buildlog.Open(cfg.BuildDB)
		if err != nil {
			logger.Error("failed to open build log", "error", err)
			os.Exit(1)
		}
		defer builds.Close()
		if cfg.BuildRetention > 0 {
			if n, err := builds.Prune(cfg.BuildRetention); err != nil {
				logger.Warn("prune build log", "error", err)
			} else if n > 0 {
				logger.Info("build log pruned", "builds", n)
			}
		}
		reg.OnBuild(func(e *termindex.Engine) {
			if err := builds.Record(e); err != nil {
				logger.Warn("record build", "build", e.ID, "error", err)
			}
		})
	}

	if err := reg.Load(); err != nil {
		logger.Error("failed to load content", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewRouter(reg, builds, logger),
	}

	// SIGHUP: rebuild the engine.
	// SIGINT/SIGTERM: graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		for range sighup {
			logger.Info("SIGHUP received, rebuilding engine")
			if err := reg.Reload(); err != nil {
				logger.Error("reload failed, keeping previous engine", "error", err)
			}
		}
	}()

	if cfg.Watch {
		w, err := watch.New(cfg.ContentDir, cfg.WatchDebounce, reg.Reload, logger)
		if err != nil {
			logger.Error("failed to start watcher", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := w.Run(ctx); err != nil {
				logger.Error("watcher stopped", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("termlink listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg := loadConfig(*cfgPath)
	// stdout carries the protocol; logs go to stderr.
	logger := newLogger(cfg.LogLevel, os.Stderr)

	reg := termindex.NewRegistry(cfg.ContentDir, logger)
	if err := reg.Load(); err != nil {
		logger.Error("failed to load content", "error", err)
		os.Exit(1)
	}

	srv := server.NewMCPServer("termlink", "1.0.0", server.WithToolCapabilities(false))
	api.RegisterMCPTools(srv, reg, logger)

	if err := server.ServeStdio(srv); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path string) config {
	cfg := config{
		Addr:           ":8430",
		ContentDir:     "content",
		BuildDB:        "termlink.db",
		BuildRetention: 720 * time.Hour,
		WatchDebounce:  500 * time.Millisecond,
		LogLevel:       "info",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg
		}
		fmt.Fprintf(os.Stderr, "read config: %v\n", err)
		os.Exit(1)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "parse config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newLogger(level string, w *os.File) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
