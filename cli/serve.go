package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mukhsinh/manajemenresiko-sub007/handlers"
	"github.com/Mukhsinh/manajemenresiko-sub007/middleware"
	"github.com/Mukhsinh/manajemenresiko-sub007/routes"
	"github.com/Mukhsinh/manajemenresiko-sub007/utils"
	"github.com/Mukhsinh/manajemenresiko-sub007/websocket"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	if err := e.store.EnsureIndexes(ctx); err != nil {
		e.log.Warn("failed to ensure indexes", zap.Error(err))
	}

	hub := websocket.NewHub(e.log)
	go hub.Run(ctx)

	signer := utils.NewTokenSigner(e.cfg.JWTKey, e.cfg.JWTExpiration)
	h := handlers.New(e.store, signer, hub, e.log)

	srv := &http.Server{
		Addr: ":" + e.cfg.Port,
		Handler: routes.NewRouter(routes.Options{
			Handler:     h,
			WebSocket:   hub.ServeWS,
			Auth:        middleware.Auth(e.store, signer, e.log),
			StaticDir:   e.cfg.StaticDir,
			CORSOrigins: e.cfg.CORSOrigins,
			Log:         e.log,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		e.log.Info("server listening",
			zap.String("addr", "http://localhost:"+e.cfg.Port),
			zap.String("static", e.cfg.StaticDir),
			zap.String("env", e.cfg.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	e.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		e.log.Error("server forced shutdown", zap.Error(err))
		return err
	}
	e.log.Info("server stopped")
	return nil
}
