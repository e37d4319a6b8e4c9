// Command manifoldd is the manifold daemon: it opens the local store,
// wires every package-manager adapter into the engine, and serves the
// façade over a Unix domain socket until signaled to stop. Wiring order
// and socket lifecycle are grounded on
// client/doublezerod/internal/runtime/run.go's Run().
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/manifoldpm/manifold/internal/adapter"
	"github.com/manifoldpm/manifold/internal/config"
	"github.com/manifoldpm/manifold/internal/executor"
	"github.com/manifoldpm/manifold/internal/facade"
	"github.com/manifoldpm/manifold/internal/fleet"
	"github.com/manifoldpm/manifold/internal/model"
	"github.com/manifoldpm/manifold/internal/orchestrator"
	"github.com/manifoldpm/manifold/internal/policy"
	"github.com/manifoldpm/manifold/internal/queue"
	"github.com/manifoldpm/manifold/internal/store"
)

// set by -ldflags at release build time.
var version = "dev"

func main() {
	var (
		configPath string
		envFile    string
		verbose    bool
		jsonLogs   bool
	)

	rootCmd := &cobra.Command{
		Use:     "manifoldd",
		Short:   "manifold package-management daemon",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, envFile, verbose, jsonLogs)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "/etc/manifold/manifold.yaml", "path to engine YAML config")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file holding fleet secrets (defaults to ./.env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", true, "emit structured JSON logs instead of console-formatted ones")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newLogger(verbose, jsonLogs bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	if jsonLogs {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: level, TimeFormat: time.Kitchen}))
}

func run(ctx context.Context, configPath, envFile string, verbose, jsonLogs bool) error {
	log := newLogger(verbose, jsonLogs)
	slog.SetDefault(log)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	secrets := config.LoadSecrets(envFile)

	s, err := store.Open(cfg.DBPath, store.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	for id, enabled := range cfg.ManagerEnabled {
		if err := s.SetManagerEnabled(ctx, id, enabled); err != nil {
			return fmt.Errorf("apply manager_enabled override for %s: %w", id, err)
		}
	}
	if _, ok, err := s.GetSetting(ctx, model.SettingSafeMode); err != nil {
		return fmt.Errorf("read safe_mode: %w", err)
	} else if !ok {
		if err := s.SetSafeMode(ctx, cfg.SafeMode); err != nil {
			return fmt.Errorf("seed safe_mode: %w", err)
		}
	}

	reg := adapter.NewDefaultRegistry()
	exec := executor.New()
	q := queue.New(s, reg, exec, queue.WithWorkerPoolSize(cfg.WorkerPoolSize), queue.WithLogger(log))
	if err := q.Start(ctx); err != nil {
		return fmt.Errorf("start queue: %w", err)
	}
	orch := orchestrator.New(s, reg, exec, orchestrator.WithLogger(log))
	gate := policy.New(s, reg)
	f := facade.New(s, reg, exec, q, orch, gate, log)

	stopFleet, err := startFleet(ctx, cfg, secrets, s, reg, q, f, log)
	if err != nil {
		return fmt.Errorf("start fleet components: %w", err)
	}
	defer stopFleet()

	srv := facade.NewServer(
		facade.WithSockFile(cfg.SockFile),
		facade.WithBaseContext(ctx),
		facade.WithHandler(f.Routes()),
	)

	lis, err := net.Listen("unix", cfg.SockFile)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.SockFile, err)
	}
	defer unix.Unlink(cfg.SockFile) //nolint:errcheck
	if err := os.Chmod(cfg.SockFile, 0o666); err != nil {
		log.Warn("failed to set socket permissions", "err", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("manifoldd: serving", "sock_file", cfg.SockFile)
		errCh <- srv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		log.Info("manifoldd: shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// startFleet wires the optional Postgres Exporter / Slack Notifier / S3
// Archiver per config.FleetConfig, each gated on its own block being
// non-nil. Returns a stop func closing whatever was started.
func startFleet(ctx context.Context, cfg *config.EngineConfig, secrets config.Secrets, s *store.Store, reg *adapter.Registry, q *queue.Queue, f *facade.Facade, log *slog.Logger) (func(), error) {
	var closers []func()
	stop := func() {
		for _, c := range closers {
			c()
		}
	}

	if cfg.Fleet.Exporter != nil {
		exp, err := fleet.NewExporter(ctx, secrets.PostgresDSN, cfg.Fleet.Exporter.HostID, s, log)
		if err != nil {
			return stop, fmt.Errorf("fleet exporter: %w", err)
		}
		closers = append(closers, exp.Close)

		sub := q.Subscribe()
		go func() {
			for ev := range sub {
				t, err := s.GetTask(ctx, ev.TaskID)
				if err != nil || !t.State.Terminal() {
					continue
				}
				exp.ExportTask(ctx, t)
			}
		}()
	}

	if cfg.Fleet.Notifier != nil {
		n := fleet.NewNotifier(secrets.SlackBotToken, cfg.Fleet.Notifier.Channel, s, reg, log)
		sub := q.Subscribe()
		go n.Run(ctx, sub)
		f.SetUpgradeNotifier(n)
	}

	if cfg.Fleet.Archiver != nil {
		ac := cfg.Fleet.Archiver
		retention := time.Duration(ac.RetentionHours) * time.Hour
		arch, err := fleet.NewArchiver(ctx, ac.Region, ac.Bucket, ac.Prefix, retention, s, log)
		if err != nil {
			return stop, fmt.Errorf("fleet archiver: %w", err)
		}
		go arch.Run(ctx, time.Hour)
	}

	return stop, nil
}
