// Command qrserver runs the QR code manager HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"qrmanager/internal/api"
	"qrmanager/internal/config"
	"qrmanager/internal/logging"
	"qrmanager/internal/manager"
	"qrmanager/internal/metrics"
	"qrmanager/internal/qr"
	"qrmanager/internal/store"
	"qrmanager/internal/token"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "qrserver",
		Short: "HTTP API for creating, listing and deleting QR code images",
		Long: "qrserver exposes a token-gated HTTP API that turns URLs into " +
			"QR code image artifacts stored on the local filesystem. " +
			"Configuration is read from the environment; see the README for the variable list.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LISTEN_ADDR)")
	return cmd
}

func run(addr string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if addr != "" {
		cfg.ListenAddr = addr
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	st := store.New(cfg.QRDir, log)
	if err := st.EnsureRoot(); err != nil {
		return err
	}
	tokens, err := token.NewService(cfg, log)
	if err != nil {
		return err
	}
	mgr := manager.New(cfg, st, qr.Render, log)
	srv := api.NewServer(cfg, tokens, mgr, metrics.New(), log)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	log.Info("server listening",
		zap.String("addr", cfg.ListenAddr),
		zap.String("qr_dir", cfg.QRDir))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
