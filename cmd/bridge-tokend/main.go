package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/near/near-bridge/config"
	"github.com/near/near-bridge/observability/logging"
	"github.com/near/near-bridge/prover"
	"github.com/near/near-bridge/rpc"
	"github.com/near/near-bridge/storage"
	"github.com/near/near-bridge/token"
)

func main() {
	configFile := flag.String("config", "./bridge.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup("bridge-tokend", logging.Options{
		File:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	})

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ledger, err := token.NewLedger(db, cfg.ContractAccount)
	if err != nil {
		logger.Error("failed to construct ledger", "err", err)
		os.Exit(1)
	}
	ledger.SetEmitter(logEmitter{logger})

	timeout, err := cfg.ProverTimeoutDuration()
	if err != nil {
		logger.Error("invalid prover timeout", "err", err)
		os.Exit(1)
	}
	proverClient, err := prover.NewHTTPClient(cfg.ProverEndpoint, timeout)
	if err != nil {
		logger.Error("failed to construct prover client", "err", err)
		os.Exit(1)
	}
	bridge, err := token.NewBridge(ledger, proverClient)
	if err != nil {
		logger.Error("failed to construct bridge", "err", err)
		os.Exit(1)
	}

	secret := strings.TrimSpace(cfg.AuthSecret)
	if secret == "" {
		logger.Error("AuthSecret must be configured; mutating endpoints need a caller identity")
		os.Exit(1)
	}
	auth := rpc.NewAuthenticator(secret)

	server := rpc.NewServer(ledger, bridge, rpc.Options{
		Auth: auth,
		RateLimit: rpc.RateLimit{
			RequestsPerMinute: cfg.RateLimitPerMinute,
			Burst:             cfg.RateLimitBurst,
		},
		Logger: logger,
	})

	httpServer := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("serving", "addr", cfg.ListenAddress, "database", cfg.Database, "initialized", ledger.Initialized())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server stopped", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
	logger.Info("stopped")
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Database)) {
	case "memory":
		return storage.NewMemDB(), nil
	case "bolt":
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "ledger.db"))
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	}
}

// logEmitter surfaces ledger events through the structured logger.
type logEmitter struct {
	logger *slog.Logger
}

func (e logEmitter) Emit(event token.Event) {
	args := make([]any, 0, 8)
	for key, value := range event.Attributes() {
		args = append(args, key, value)
	}
	e.logger.Info(event.EventType(), args...)
}
