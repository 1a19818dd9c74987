package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio = "stdio"
	ModeRun   = "run"

	// Default values
	DefaultLogLevel     = "info"
	DefaultMaxFileSize  = 100 * 1024 * 1024 // 100MB
	DefaultMinRegionGap = 5.0
	DefaultSnapPasses   = 3
)

// Config holds all configuration for the region correction server
type Config struct {
	// Execution configuration
	Mode string // "stdio" MCP server or one-shot "run"

	// Document configuration
	PDFDirectory string
	MaxFileSize  int64 // Maximum PDF file size in bytes

	// Pipeline tunables surfaced to operators
	MinRegionGap float64 // minimum vertical gap between regions, normalized units
	SnapPasses   int     // Phase 1 expansion iteration cap

	// One-shot run mode inputs
	InputPDF    string // PDF path (run mode)
	InputPage   int    // 1-based page number (run mode)
	RegionsFile string // proposed regions JSON (run mode)
	TraceFile   string // optional diagnostic trace output (run mode)

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
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		PDFDirectory: currentDir,
		MaxFileSize:  DefaultMaxFileSize,
		MinRegionGap: DefaultMinRegionGap,
		SnapPasses:   DefaultSnapPasses,
		InputPage:    1,
		Version:      "1.0.0",
		ServerName:   "regionfit",
		LogLevel:     DefaultLogLevel,
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
	viper.SetEnvPrefix("REGIONFIT")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("mingap", cfg.MinRegionGap)
	viper.SetDefault("snappasses", cfg.SnapPasses)
	viper.SetDefault("pdf", cfg.InputPDF)
	viper.SetDefault("page", cfg.InputPage)
	viper.SetDefault("regions", cfg.RegionsFile)
	viper.SetDefault("tracefile", cfg.TraceFile)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Execution mode: 'stdio' for the MCP server, 'run' for a one-shot correction")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Float64("mingap", cfg.MinRegionGap, "Minimum vertical gap between corrected regions, in normalized units")
	pflag.Int("snappasses", cfg.SnapPasses, "Iteration cap for the box snapping phase")
	pflag.String("pdf", cfg.InputPDF, "PDF file to correct (run mode)")
	pflag.Int("page", cfg.InputPage, "1-based page number (run mode)")
	pflag.String("regions", cfg.RegionsFile, "JSON file with proposed regions (run mode)")
	pflag.String("tracefile", cfg.TraceFile, "Write per-phase diagnostic trace JSON to this path (run mode)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	_ = viper.BindPFlag("mingap", pflag.Lookup("mingap"))
	_ = viper.BindPFlag("snappasses", pflag.Lookup("snappasses"))
	_ = viper.BindPFlag("pdf", pflag.Lookup("pdf"))
	_ = viper.BindPFlag("page", pflag.Lookup("page"))
	_ = viper.BindPFlag("regions", pflag.Lookup("regions"))
	_ = viper.BindPFlag("tracefile", pflag.Lookup("tracefile"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nregionfit - corrects AI-proposed page regions against the PDF text layer\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                          "+
			"# stdio MCP server, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/pdfs                      "+
			"# stdio MCP server with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=run --pdf=report.pdf --page=2 --regions=boxes.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  REGIONFIT_MODE        Execution mode\n")
		fmt.Fprintf(os.Stderr, "  REGIONFIT_DIR         PDF directory\n")
		fmt.Fprintf(os.Stderr, "  REGIONFIT_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  REGIONFIT_MAXFILESIZE Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  REGIONFIT_MINGAP      Minimum region gap\n")
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
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.MinRegionGap = viper.GetFloat64("mingap")
	cfg.SnapPasses = viper.GetInt("snappasses")
	cfg.InputPDF = viper.GetString("pdf")
	cfg.InputPage = viper.GetInt("page")
	cfg.RegionsFile = viper.GetString("regions")
	cfg.TraceFile = viper.GetString("tracefile")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeRun {
		return errors.New("mode must be either 'stdio' or 'run'")
	}

	// The directory is not required to exist yet; editors pass placeholder
	// paths like ${workspaceRoot} that resolve later.
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}
	if c.MinRegionGap < 0 {
		return errors.New("minimum region gap cannot be negative")
	}
	if c.SnapPasses < 1 {
		return errors.New("snap passes must be at least 1")
	}

	if c.Mode == ModeRun {
		if c.InputPDF == "" {
			return errors.New("run mode requires --pdf")
		}
		if c.RegionsFile == "" {
			return errors.New("run mode requires --regions")
		}
		if c.InputPage < 1 {
			return errors.New("page must be at least 1")
		}
	}

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

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, MinRegionGap: %g}",
		c.Mode, c.PDFDirectory, c.LogLevel, c.MaxFileSize, c.MinRegionGap)
}

// IsRunMode returns true when configured for a one-shot correction
func (c *Config) IsRunMode() bool {
	return c.Mode == ModeRun
}

// IsStdioMode returns true when configured as a stdio MCP server
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
