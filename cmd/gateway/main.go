// Command gateway starts the FaaS control plane HTTP server: it wires the
// Worker Registry, the relational store, and blob storage into the chi
// router exposed by pkg/gateway, then serves until a termination signal
// arrives.
package main

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/wasmfaas/pkg/compiler"
	"github.com/DeBrosOfficial/wasmfaas/pkg/config"
	"github.com/DeBrosOfficial/wasmfaas/pkg/db"
	"github.com/DeBrosOfficial/wasmfaas/pkg/gateway"
	"github.com/DeBrosOfficial/wasmfaas/pkg/logging"
	"github.com/DeBrosOfficial/wasmfaas/pkg/registry"
	"github.com/DeBrosOfficial/wasmfaas/pkg/storage"
)

func main() {
	logger, err := logging.NewColoredLogger(logging.ComponentGeneral, true)
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to load config", zap.Error(err))
		os.Exit(1)
	}

	// Rebuild the logger now that the configured level and color choice
	// are known; the bootstrap logger only covered config loading itself.
	logger, err = logging.NewColoredLoggerWithLevel(logging.ComponentGeneral, cfg.Logging.Colors, cfg.Logging.Level)
	if err != nil {
		panic(err)
	}

	logger.ComponentInfo(logging.ComponentGeneral, "starting gateway initialization")

	store, err := db.Open(cfg.DBURL)
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to open relational store", zap.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	blobs, err := storage.NewLocalStorage(cfg.Storage.Medium.Directory)
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to open blob storage", zap.Error(err))
		os.Exit(1)
	}

	reg := registry.New(registry.Config{
		ChannelSize: cfg.Registry.ChannelSize,
		Timeout:     cfg.Registry.Timeout(),
	}, logger)

	deps := &gateway.Dependencies{
		Registry: reg,
		Store:    store,
		Blobs:    blobs,
		Compiler: compiler.NewCargoCompiler(cfg.Compiler.SourceDir, logger),
		Logger:   logger,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	handler := gateway.NewRouter(deps)

	logger.ComponentInfo(logging.ComponentGeneral, "gateway initialization completed successfully")

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to bind HTTP listen address", zap.Error(err))
		os.Exit(1)
	}
	logger.ComponentInfo(logging.ComponentGeneral, "HTTP listener bound", zap.String("listen_addr", ln.Addr().String()))

	serveErrCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			serveErrCh <- err
			return
		}
		serveErrCh <- nil
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.ComponentInfo(logging.ComponentGeneral, "shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serveErrCh:
		if err != nil {
			logger.ComponentError(logging.ComponentGeneral, "HTTP server error", zap.Error(err))
		} else {
			logger.ComponentInfo(logging.ComponentGeneral, "HTTP server exited normally")
		}
	}

	logger.ComponentInfo(logging.ComponentGeneral, "shutting down gateway HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.ComponentError(logging.ComponentGeneral, "HTTP server shutdown error", zap.Error(err))
	} else {
		logger.ComponentInfo(logging.ComponentGeneral, "gateway shutdown complete")
	}
}
