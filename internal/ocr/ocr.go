// Package ocr turns PDF invoice bytes into raw text. The batch treats it as
// an opaque service: any failure here makes the whole attachment
// unprocessable, it never yields a partial record.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Recognizer is the contract the orchestrator depends on.
type Recognizer interface {
	Recognize(ctx context.Context, content []byte, fileName string) (string, error)
}

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Language string // tesseract language, default "fra"
	DPI      int    // rasterization DPI for scanned PDFs, default 300
	MaxPages int    // 0 = no limit
}

// PDFRecognizer extracts text from PDF bytes, preferring the embedded text
// layer and falling back to rasterize+OCR for scanned documents.
type PDFRecognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewPDFRecognizer(cfg Config, logger *slog.Logger) *PDFRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Language == "" {
		cfg.Language = "fra"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &PDFRecognizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Recognize writes the attachment to a scratch file and runs the extraction
// chain on it.
func (r *PDFRecognizer) Recognize(ctx context.Context, content []byte, fileName string) (string, error) {
	start := time.Now()

	tmpDir, err := os.MkdirTemp("", "inv-ocr-*")
	if err != nil {
		return "", fmt.Errorf("scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			r.logger.Warn("ocr.scratch.cleanup_failed", "dir", tmpDir, "error", err)
		}
	}()

	path := filepath.Join(tmpDir, "input.pdf")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return "", fmt.Errorf("write scratch pdf: %w", err)
	}

	text, err := r.pdfToText(ctx, path)
	if err == nil && strings.TrimSpace(text) != "" {
		r.logger.Debug("ocr.ok", "file", fileName, "method", "pdf-text",
			"bytes", len(text), "elapsed_ms", time.Since(start).Milliseconds())
		return text, nil
	}
	if err != nil {
		r.logger.Debug("ocr.pdftotext.failed", "file", fileName, "error", err)
	}

	text, err = r.pdfToOCR(ctx, path, tmpDir)
	if err != nil {
		return "", fmt.Errorf("ocr %s: %w", fileName, err)
	}
	r.logger.Debug("ocr.ok", "file", fileName, "method", "pdf-ocr",
		"bytes", len(text), "elapsed_ms", time.Since(start).Milliseconds())
	return text, nil
}

func (r *PDFRecognizer) pdfToText(ctx context.Context, path string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := r.runner.Run(ctx, r.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

func (r *PDFRecognizer) pdfToOCR(ctx context.Context, path, tmpDir string) (string, error) {
	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	for _, img := range matches {
		// tesseract <img> stdout -l <lang>
		out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, img, "stdout", "-l", r.cfg.Language)
		if err != nil {
			return "", fmt.Errorf("tesseract %s: %w: %s", filepath.Base(img), err, truncate(string(errb), 512))
		}
		if b.Len() > 0 {
			b.WriteString("\n\f\n")
		}
		b.Write(out)
	}
	return b.String(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
