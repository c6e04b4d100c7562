package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeCLI   = "cli"
	ModeStdio = "stdio"

	// Log formats
	LogFormatConsole = "console"
	LogFormatJSON    = "json"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 500 * 1024 * 1024 // 500MB, scanned books are large
	DefaultCornerSize  = 50
	DefaultLogMaxSize  = 10 // MB

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment variable read by the program
	EnvPrefix = "REALBOOK"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is given
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the extractor
type Config struct {
	Mode string // "cli" or "stdio"

	// Extraction (cli mode)
	PDFPath      string
	OutputFolder string // explicit output folder
	OutputRoot   string // parent of the default output folder
	Overwrite    bool
	DryRun       bool
	ErrorReport  string // file to write error details to
	Progress     bool
	CornerSize   int

	// MCP server (stdio mode)
	PDFDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFormat   string
	LogFile     string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:         ModeCLI,
		PDFDirectory: currentDir,
		Progress:     true,
		CornerSize:   DefaultCornerSize,
		Version:      "1.0.0",
		ServerName:   "realbook-extractor",
		LogLevel:     DefaultLogLevel,
		LogFormat:    LogFormatConsole,
		MaxFileSize:  DefaultMaxFileSize,
	}
}

// LoadFromFlags loads an optional .env file, parses command line flags and
// returns a configuration. Flags override environment variables.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	loadDotEnv()
	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// A bare positional argument is taken as the PDF path
	if cfg.PDFPath == "" && pflag.NArg() > 0 {
		cfg.PDFPath = pflag.Arg(0)
	}

	for _, p := range []*string{&cfg.PDFDirectory, &cfg.PDFPath, &cfg.OutputFolder, &cfg.OutputRoot} {
		if *p == "" {
			continue
		}
		if abs, err := filepath.Abs(*p); err == nil {
			*p = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv reads .env from the working directory if present. Variables
// already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("pdf", cfg.PDFPath)
	viper.SetDefault("out", cfg.OutputFolder)
	viper.SetDefault("outroot", cfg.OutputRoot)
	viper.SetDefault("overwrite", cfg.Overwrite)
	viper.SetDefault("dryrun", cfg.DryRun)
	viper.SetDefault("errorreport", cfg.ErrorReport)
	viper.SetDefault("progress", cfg.Progress)
	viper.SetDefault("cornersize", cfg.CornerSize)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
	viper.SetDefault("logfile", cfg.LogFile)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' to extract one PDF, 'stdio' for an MCP server on standard I/O")
	pflag.String("pdf", cfg.PDFPath, "PDF file to extract images from (cli mode)")
	pflag.String("out", cfg.OutputFolder, "Output folder for the PNG files (default: <outroot>/<pdf name>)")
	pflag.String("outroot", cfg.OutputRoot, "Parent folder of the default output folder (default: the PDF's folder)")
	pflag.Bool("overwrite", cfg.Overwrite, "Write into an output folder that already contains files")
	pflag.Bool("dry-run", cfg.DryRun, "List the images of the PDF without writing files")
	pflag.String("error-report", cfg.ErrorReport, "Write the details of extraction errors to this file")
	pflag.Bool("progress", cfg.Progress, "Show a progress bar")
	pflag.Int("cornersize", cfg.CornerSize, "Side in pixels of the corner regions sampled for inverted scans")
	pflag.String("dir", cfg.PDFDirectory, "Directory the MCP tools are confined to (stdio mode)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (console, json)")
	pflag.String("logfile", cfg.LogFile, "Also write JSON logs to this rotating file")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("pdf", pflag.Lookup("pdf"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("outroot", pflag.Lookup("outroot"))
	_ = viper.BindPFlag("overwrite", pflag.Lookup("overwrite"))
	_ = viper.BindPFlag("dryrun", pflag.Lookup("dry-run"))
	_ = viper.BindPFlag("errorreport", pflag.Lookup("error-report"))
	_ = viper.BindPFlag("progress", pflag.Lookup("progress"))
	_ = viper.BindPFlag("cornersize", pflag.Lookup("cornersize"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("logformat", pflag.Lookup("logformat"))
	_ = viper.BindPFlag("logfile", pflag.Lookup("logfile"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nRealbook Extractor - extract the scanned pages of a PDF as numbered PNG files\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --pdf book.pdf                        # writes book/001.png, book/002.png, ...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --pdf book.pdf --out /tmp/pages       # explicit output folder\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --pdf book.pdf --dry-run              # list images only\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/pdfs      # MCP server\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from .env):\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_MODE         Run mode\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_OUTROOT      Parent of default output folders\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_DIR          MCP directory\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_LOGFORMAT    Log format\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_LOGFILE      Log file\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_MAXFILESIZE  Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  REALBOOK_CORNERSIZE   Corner sample size\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.PDFPath = viper.GetString("pdf")
	cfg.OutputFolder = viper.GetString("out")
	cfg.OutputRoot = viper.GetString("outroot")
	cfg.Overwrite = viper.GetBool("overwrite")
	cfg.DryRun = viper.GetBool("dryrun")
	cfg.ErrorReport = viper.GetString("errorreport")
	cfg.Progress = viper.GetBool("progress")
	cfg.CornerSize = viper.GetInt("cornersize")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
	cfg.LogFile = viper.GetString("logfile")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeCLI && c.Mode != ModeStdio {
		return errors.New("mode must be either 'cli' or 'stdio'")
	}

	if c.Mode == ModeCLI && c.PDFPath == "" {
		return errors.New("a PDF file is required (--pdf)")
	}

	if c.Mode == ModeCLI && c.OutputFolder != "" && c.OutputRoot != "" {
		return errors.New("--out and --outroot are mutually exclusive")
	}

	if c.Mode == ModeStdio {
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
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.CornerSize <= 0 {
		return errors.New("corner size must be positive")
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

	if c.LogFormat != LogFormatConsole && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("invalid log format: %s (must be console or json)", c.LogFormat)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, PDF: %s, Out: %s, OutRoot: %s, Overwrite: %t, DryRun: %t, "+
		"PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, CornerSize: %d}",
		c.Mode, c.PDFPath, c.OutputFolder, c.OutputRoot, c.Overwrite, c.DryRun,
		c.PDFDirectory, c.LogLevel, c.MaxFileSize, c.CornerSize)
}

// IsCLIMode returns true if a single PDF is extracted from the command line
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}

// IsStdioMode returns true if the MCP server runs on standard I/O
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
