package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/router"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and background jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.jobs.Start(a.cfg.Jobs.PurgeSchedule); err != nil {
			return err
		}
		defer a.jobs.Stop()

		r := router.SetupRouter(a.cfg, router.Deps{
			DB:        a.db,
			Ledgers:   a.ledgers,
			Dashboard: a.dashboard,
			Hub:       a.hub,
		})
		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", a.cfg.Server.Address, a.cfg.Server.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server listening", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("run server: %w", err)
		case <-quit:
		}
		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	// 不带子命令时直接启动服务
	rootCmd.RunE = serveCmd.RunE
}
