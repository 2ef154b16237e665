package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "careerbot/internal/adapters/http"
	"careerbot/internal/common/config"
	"careerbot/internal/common/logger"
	"careerbot/internal/common/observability"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP chat API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("observability disabled", map[string]interface{}{"error": err.Error()})
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	rt, err := buildRuntime(ctx, cfg, log, obs)
	if err != nil {
		log.Error("startup failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	defer rt.Close()

	if rt.memory != nil {
		go rt.memory.RunSweeper(ctx, cfg.SessionSweepInterval(), logger.Component(log, "session"))
	}

	opts := []httpadapter.Option{httpadapter.WithAllowedOrigins(cfg.Server.AllowedOrigins)}
	if rt.redis != nil {
		opts = append(opts, httpadapter.WithReadinessCheck("redis", rt.redis.Ping))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpadapter.NewServer(rt.service, log, opts...),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", map[string]interface{}{
			"addr":        srv.Addr,
			"environment": cfg.App.Environment,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", map[string]interface{}{"error": err.Error()})
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received, draining connections", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", map[string]interface{}{"error": err.Error()})
		return err
	}
	log.Info("server stopped", nil)
	return nil
}
