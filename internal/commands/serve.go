package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/database"
	"github.com/AnshRaj112/serenify-journal/internal/middleware"
	"github.com/AnshRaj112/serenify-journal/internal/monitor"
	"github.com/AnshRaj112/serenify-journal/internal/routes"
	"github.com/AnshRaj112/serenify-journal/internal/services"
)

const (
	shutdownTimeout = 5 * time.Second
	uploadWindow    = time.Hour
	uploadsPerHour  = 30
)

func addServe(topLevel *cobra.Command, e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (the default command).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return serve(cmd.Context(), e.cfg, e.log)
		},
	}
	topLevel.AddCommand(cmd)
	return cmd
}

func newMonitor(cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) monitor.Monitor {
	if !cfg.MonitorEnabled {
		return monitor.NewNoop()
	}
	return monitor.New(log, monitor.Options{
		Interval:    cfg.MonitorInterval,
		ThresholdMB: cfg.MonitorThresholdMB,
		Registerer:  reg,
	})
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mon := newMonitor(cfg, log, reg)
	mon.Start(ctx)

	st, err := openStores(ctx, cfg, log, need{postgres: true, redis: true})
	if err != nil {
		mon.Shutdown("startup failed")
		return err
	}
	defer st.close(log)

	if err := database.RunMigrations(cfg.PostgresURI); err != nil {
		mon.Shutdown("startup failed")
		return err
	}
	if err := database.EnsureIndexes(ctx, st.mongoDB); err != nil {
		log.Warn("failed to ensure MongoDB indexes", zap.Error(err))
	}

	var uploader services.ImageUploader
	if cfg.CloudinaryConfigured() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.UploadFolder)
		if err != nil {
			log.Warn("cloudinary unavailable; uploads disabled", zap.Error(err))
		} else {
			uploader = cld
		}
	} else {
		log.Warn("cloudinary credentials not found; uploads disabled")
	}

	sessions := services.NewSessionStore(st.redis)
	accounts := services.NewAuthService(services.NewPostgresUserStore(st.postgres), sessions, log)

	handler := routes.New(routes.Deps{
		Config:      cfg,
		Log:         log,
		Monitor:     mon,
		Registry:    reg,
		Accounts:    accounts,
		Entries:     st.entryService(log),
		Prompts:     services.NewPromptService(services.NewPostgresPromptStore(st.postgres)),
		Events:      services.NewRedisEntryEvents(st.redis, log),
		Uploader:    uploader,
		UploadLimit: middleware.NewWindowLimiter(st.redis, "upload", uploadWindow, uploadsPerHour, cfg.TrustProxy, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("serenify API listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	reason := "signal received"
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			mon.Shutdown("server error")
			return err
		}
		reason = "server closed"
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	mon.Shutdown(reason)
	return nil
}
