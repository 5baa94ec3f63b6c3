package common

import (
	"os"
	"strconv"
	"time"
)

// Ledger backends.
const (
	BackendXLSX     = "xlsx"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds all application configuration
type Config struct {
	Ledger  LedgerConfig
	Archive ArchiveConfig
	Source  SourceConfig
	OCR     OCRConfig
	Server  ServerConfig
	Rules   RulesConfig
}

// LedgerConfig selects and parameterizes the ledger backend
type LedgerConfig struct {
	Backend         string
	Path            string
	Sheet           string
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// ArchiveConfig holds archive-related configuration
type ArchiveConfig struct {
	Dir string
}

// SourceConfig holds invoice source configuration
type SourceConfig struct {
	Dir string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftotext string
	Pdftoppm  string
	Tesseract string
	Language  string
	DPI       int
	MaxPages  int
}

// ServerConfig holds dashboard server configuration
type ServerConfig struct {
	HTTPAddr string
}

// RulesConfig points to an optional extraction rules override file
type RulesConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Ledger: LedgerConfig{
			Backend:         getEnv("LEDGER_BACKEND", BackendXLSX),
			Path:            getEnv("LEDGER_PATH", "./data/factures.xlsx"),
			Sheet:           getEnv("LEDGER_SHEET", ""),
			DSN:             getEnv("LEDGER_DSN", ""),
			MaxConns:        getEnvAsInt32("LEDGER_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("LEDGER_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("LEDGER_MAX_CONN_LIFETIME", 30*time.Minute),
			DialTimeout:     getEnvAsDuration("LEDGER_DIAL_TIMEOUT", 3*time.Second),
		},
		Archive: ArchiveConfig{
			Dir: getEnv("ARCHIVE_DIR", "./archive"),
		},
		Source: SourceConfig{
			Dir: getEnv("SOURCE_DIR", "./inbox"),
		},
		OCR: OCRConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Tesseract: getEnv("TESSERACT_BIN", "tesseract"),
			Language:  getEnv("OCR_LANG", "fra"),
			DPI:       getEnvAsInt("OCR_DPI", 300),
			MaxPages:  getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Server: ServerConfig{
			HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		},
		Rules: RulesConfig{
			Path: getEnv("RULES_PATH", ""),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Ledger.Backend {
	case BackendXLSX, BackendSQLite:
		if c.Ledger.Path == "" {
			return NewAppError("CONFIG_ERROR", "LEDGER_PATH is required for backend "+c.Ledger.Backend, ErrInvalidInput)
		}
	case BackendPostgres:
		if c.Ledger.DSN == "" {
			return NewAppError("CONFIG_ERROR", "LEDGER_DSN is required for backend postgres", ErrInvalidInput)
		}
	case BackendMemory:
	default:
		return NewAppError("CONFIG_ERROR", "unknown LEDGER_BACKEND "+c.Ledger.Backend, ErrInvalidInput)
	}
	if c.Archive.Dir == "" {
		return NewAppError("CONFIG_ERROR", "ARCHIVE_DIR is required", ErrInvalidInput)
	}
	if c.Source.Dir == "" {
		return NewAppError("CONFIG_ERROR", "SOURCE_DIR is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
