package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Detection engine selection
	DetectEngineAuto          = "auto"
	DetectEngineMorphological = "morphological"
	DetectEnginePixelScan     = "pixelscan"

	// Default values
	DefaultPort             = 8080
	DefaultHost             = "127.0.0.1"
	DefaultLogLevel         = "info"
	DefaultMaxFileSize      = 100 * 1024 * 1024 // 100MB
	DefaultRasterDPI        = 300.0
	DefaultOCRLanguage      = "eng"
	DefaultOCRMinConfidence = 0.0

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the PDF annotation MCP server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string
	MaxFileSize  int64 // Maximum PDF file size in bytes
	RasterDPI    float64

	// Annotation configuration
	OCRLanguage      string
	OCRMinConfidence float64
	DetectEngine     string // "auto", "morphological", or "pixelscan"

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:             ModeStdio, // Default to stdio mode for MCP compatibility
		Host:             DefaultHost,
		Port:             DefaultPort,
		PDFDirectory:     currentDir,
		MaxFileSize:      DefaultMaxFileSize,
		RasterDPI:        DefaultRasterDPI,
		OCRLanguage:      DefaultOCRLanguage,
		OCRMinConfidence: DefaultOCRMinConfidence,
		DetectEngine:     DetectEngineAuto,
		Version:          "1.0.0",
		ServerName:       "mcp-pdf-annotator",
		LogLevel:         DefaultLogLevel,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("MCP_PDF_ANNOTATOR")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("raster-dpi", cfg.RasterDPI)
	viper.SetDefault("ocr-language", cfg.OCRLanguage)
	viper.SetDefault("ocr-min-confidence", cfg.OCRMinConfidence)
	viper.SetDefault("detect-engine", cfg.DetectEngine)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Float64("raster-dpi", cfg.RasterDPI, "Resolution pages are rasterized at")
	pflag.String("ocr-language", cfg.OCRLanguage, "Default OCR language (ISO 639-2 code)")
	pflag.Float64("ocr-min-confidence", cfg.OCRMinConfidence, "Default OCR confidence threshold (0-100)")
	pflag.String("detect-engine", cfg.DetectEngine,
		"Table detection engine: 'auto', 'morphological', or 'pixelscan'")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("raster-dpi", pflag.Lookup("raster-dpi"))
	_ = viper.BindPFlag("ocr-language", pflag.Lookup("ocr-language"))
	_ = viper.BindPFlag("ocr-min-confidence", pflag.Lookup("ocr-min-confidence"))
	_ = viper.BindPFlag("detect-engine", pflag.Lookup("detect-engine"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Annotator - A Model Context Protocol server for annotating PDF pages\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/pdfs                     "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --ocr-language=deu --ocr-min-confidence=60 # German OCR defaults\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --detect-engine=pixelscan               "+
			"# force the fallback detection strategy\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_MODE               Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_HOST               Server host\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_PORT               Server port\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_DIR                PDF directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_LOGLEVEL           Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_MAXFILESIZE        Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_RASTER_DPI         Rasterization resolution\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_OCR_LANGUAGE       Default OCR language\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_OCR_MIN_CONFIDENCE Default OCR confidence threshold\n")
		fmt.Fprintf(os.Stderr, "  MCP_PDF_ANNOTATOR_DETECT_ENGINE      Table detection engine\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.RasterDPI = viper.GetFloat64("raster-dpi")
	cfg.OCRLanguage = viper.GetString("ocr-language")
	cfg.OCRMinConfidence = viper.GetFloat64("ocr-min-confidence")
	cfg.DetectEngine = viper.GetString("detect-engine")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate raster DPI
	if c.RasterDPI <= 0 {
		return errors.New("raster DPI must be positive")
	}

	// Validate OCR settings
	if c.OCRLanguage == "" {
		return errors.New("OCR language cannot be empty")
	}
	if c.OCRMinConfidence < 0 || c.OCRMinConfidence > 100 {
		return errors.New("OCR minimum confidence must be between 0 and 100")
	}

	// Validate detection engine selection
	switch c.DetectEngine {
	case DetectEngineAuto, DetectEngineMorphological, DetectEnginePixelScan:
	default:
		return fmt.Errorf("invalid detection engine: %s (must be one of: auto, morphological, pixelscan)",
			c.DetectEngine)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
			"RasterDPI: %.0f, OCRLanguage: %s, DetectEngine: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.RasterDPI, c.OCRLanguage, c.DetectEngine)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
