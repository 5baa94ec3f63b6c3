// invoicectl runs the invoice batch from the command line: process new
// invoices, rebuild the whole ledger, or dry-run extraction on one file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/evcharge-tools/invoice-tracker/internal/archive"
	"github.com/evcharge-tools/invoice-tracker/internal/batch"
	"github.com/evcharge-tools/invoice-tracker/internal/common"
	"github.com/evcharge-tools/invoice-tracker/internal/extract"
	"github.com/evcharge-tools/invoice-tracker/internal/ledger"
	ledgerpg "github.com/evcharge-tools/invoice-tracker/internal/ledger/postgres"
	ledgersqlite "github.com/evcharge-tools/invoice-tracker/internal/ledger/sqlite"
	ledgerxlsx "github.com/evcharge-tools/invoice-tracker/internal/ledger/xlsx"
	"github.com/evcharge-tools/invoice-tracker/internal/ocr"
	"github.com/evcharge-tools/invoice-tracker/internal/source"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		mode    = flag.String("mode", "process", "process | rebuild | test")
		file    = flag.String("file", "", "attachment file name (required for -mode test)")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		printError("Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if *mode == "test" && *file == "" {
		printError("Error: -file is required with -mode test\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *mode, *file, logger); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *common.Config, mode, file string, logger *slog.Logger) error {
	store, err := openLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := source.NewFSProvider(cfg.Source.Dir)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	archiveStore, err := archive.NewFSStore(cfg.Archive.Dir, logger)
	if err != nil {
		return err
	}
	extractor, err := buildExtractor(cfg, logger)
	if err != nil {
		return err
	}
	recognizer := ocr.NewPDFRecognizer(ocr.Config{
		Pdftotext: cfg.OCR.Pdftotext,
		Pdftoppm:  cfg.OCR.Pdftoppm,
		Tesseract: cfg.OCR.Tesseract,
		Language:  cfg.OCR.Language,
		DPI:       cfg.OCR.DPI,
		MaxPages:  cfg.OCR.MaxPages,
	}, logger)

	o := batch.NewOrchestrator(provider, recognizer, archiveStore, store, extractor, logger)

	switch mode {
	case "process", "rebuild":
		batchRun := batch.NewRun()
		go func() {
			<-ctx.Done()
			batchRun.Cancel()
		}()

		var res batch.Result
		if mode == "rebuild" {
			res, err = o.Rebuild(ctx, batchRun)
		} else {
			res, err = o.Process(ctx, batchRun)
		}
		if err != nil {
			return err
		}
		fmt.Println(res.Report())
		return nil

	case "test":
		rec, err := o.TestOne(ctx, file)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func buildExtractor(cfg *common.Config, logger *slog.Logger) (*extract.Extractor, error) {
	if cfg.Rules.Path == "" {
		return extract.NewExtractor(nil, logger), nil
	}
	rules, err := extract.LoadRulesFile(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("load rules override: %w", err)
	}
	logger.Info("extract.rules.override", "path", cfg.Rules.Path)
	return extract.NewExtractor(rules, logger), nil
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
