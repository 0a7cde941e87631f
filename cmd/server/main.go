package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/saudadez21/novel-downloader-sub001/internal/config"
	"github.com/saudadez21/novel-downloader-sub001/internal/logging"
	"github.com/saudadez21/novel-downloader-sub001/internal/server"
)

func main() {
	port := flag.String("port", "", "server port (overrides PORT)")
	host := flag.String("host", "", "bind address (overrides HOST)")
	logLevel := flag.String("log-level", "", "log level (overrides LOG_LEVEL)")
	dev := flag.Bool("dev", false, "development mode: colored debug logs")
	sitesDir := flag.String("sites-dir", "", "capability overlay directory (overrides SITES_DIR)")
	module := flag.String("module", "", "vendor unlocking module path (overrides DECRYPT_MODULE)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(server.Version)
		return
	}

	cfg := config.LoadOrDefault()
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *sitesDir != "" {
		cfg.Sites.OverlayDir = *sitesDir
	}
	if *module != "" {
		cfg.Decrypt.ModulePath = *module
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stdout"},
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case sig := <-sigChan:
		logger.Info("signal received", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	case err := <-errChan:
		logger.Fatal("server error", zap.Error(err))
	}
}
