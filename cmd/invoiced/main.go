// invoiced serves the read-only dashboard over the invoice ledger.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evcharge-tools/invoice-tracker/internal/common"
	"github.com/evcharge-tools/invoice-tracker/internal/dashboard"
	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
	ledgerpg "github.com/evcharge-tools/invoice-tracker/internal/ledger/postgres"
	ledgersqlite "github.com/evcharge-tools/invoice-tracker/internal/ledger/sqlite"
	ledgerxlsx "github.com/evcharge-tools/invoice-tracker/internal/ledger/xlsx"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openLedger(ctx, cfg, logger)
	if err != nil {
		logger.Error("open ledger", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	if err := store.Init(ctx); err != nil {
		logger.Error("initialize ledger", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           dashboard.NewServer(store, logger).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("dashboard listening", "addr", cfg.Server.HTTPAddr, "backend", cfg.Ledger.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("serve", "error", err)
		os.Exit(1)
	}
	logger.Info("dashboard stopped")
}

func openLedger(ctx context.Context, cfg *common.Config, logger *slog.Logger) (ledger.Store, error) {
	switch cfg.Ledger.Backend {
	case common.BackendXLSX:
		return ledgerxlsx.New(cfg.Ledger.Path, cfg.Ledger.Sheet, logger), nil
	case common.BackendSQLite:
		return ledgersqlite.New(cfg.Ledger.Path)
	case common.BackendPostgres:
		return ledgerpg.New(ctx, ledgerpg.Config{
			DSN:             cfg.Ledger.DSN,
			MaxConns:        cfg.Ledger.MaxConns,
			MinConns:        cfg.Ledger.MinConns,
			MaxConnLifetime: cfg.Ledger.MaxConnLifetime,
			DialTimeout:     cfg.Ledger.DialTimeout,
		}, logger)
	case common.BackendMemory:
		return ledger.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Ledger.Backend)
	}
}
