package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/a3tai/realbook-extractor/internal/cli"
	"github.com/a3tai/realbook-extractor/internal/config"
	"github.com/a3tai/realbook-extractor/internal/extract"
	"github.com/a3tai/realbook-extractor/internal/logging"
	"github.com/a3tai/realbook-extractor/internal/mcp"
	"github.com/a3tai/realbook-extractor/internal/pdf"
	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
	"github.com/a3tai/realbook-extractor/internal/pdf/wrapper"
	"github.com/a3tai/realbook-extractor/internal/raster"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitCancelled = 130
)

// setupLogging configures logging based on the run mode
func setupLogging(cfg *config.Config) error {
	opts := logging.Options{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     os.Stderr,
		File:       cfg.LogFile,
		MaxSizeMB:  config.DefaultLogMaxSize,
		MaxBackups: 3,
		MaxAgeDays: 28,
	}
	// In stdio mode stdout carries the MCP protocol; keep the console quiet
	// unless debugging.
	if cfg.IsStdioMode() && !cfg.IsDebug() {
		opts.Output = io.Discard
	}
	return logging.Init(opts)
}

func main() {
	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(exitUsage)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(exitFailure)
	}

	logger := logging.Get()
	logger.Debug().Str("config", cfg.String()).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	var code int
	if cfg.IsStdioMode() {
		code = runStdioMode(ctx, cfg, logger)
	} else {
		code = runCLIMode(ctx, cfg, cli.NewUI(os.Stdout, os.Stderr, false), logger)
	}

	stop()
	logging.Close()
	os.Exit(code)
}

// runStdioMode serves the MCP tools until the client closes stdin or a
// signal arrives.
func runStdioMode(ctx context.Context, cfg *config.Config, logger zerolog.Logger) int {
	opts := extract.DefaultOptions()
	opts.Polarity = raster.PolarityOptions{CornerSize: cfg.CornerSize}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory,
		pdf.WithLogger(logger),
		pdf.WithOpener(wrapper.NewCompatibleOpener(wrapper.WithLogger(logger))),
		pdf.WithExtractOptions(opts),
	)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create PDF service")
		return exitFailure
	}

	server, err := mcp.NewServer(cfg, pdfService, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to create MCP server")
		return exitFailure
	}

	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server error")
		return exitFailure
	}
	return exitOK
}

// runCLIMode extracts the images of one PDF, or lists them for a dry run.
func runCLIMode(ctx context.Context, cfg *config.Config, ui *cli.UI, logger zerolog.Logger) int {
	out := pdf.ResolveOutputFolder(cfg.PDFPath, cfg.OutputFolder, cfg.OutputRoot)

	if err := pdf.NewValidator(cfg.MaxFileSize).ValidatePath(cfg.PDFPath); err != nil {
		ui.Error("%v", err)
		return exitFailure
	}

	if cfg.DryRun {
		inv, err := pdf.NewInventory(cfg.MaxFileSize).ListImages(pdf.PDFListImagesRequest{Path: cfg.PDFPath})
		if err != nil {
			ui.Error("%v", err)
			return exitFailure
		}
		ui.PrintInventory(inv, out)
		return exitOK
	}

	if err := pdf.CheckOutputFolder(out, cfg.Overwrite); err != nil {
		if errors.Is(err, pdf.ErrOutputNotEmpty) {
			ui.Error("%s already contains files (use --overwrite)", out)
		} else {
			ui.Error("%v", err)
		}
		return exitFailure
	}

	opts := extract.DefaultOptions()
	opts.Polarity = raster.PolarityOptions{CornerSize: cfg.CornerSize}
	opts.Logger = logger

	var progress *cli.ProgressListener
	var listener extract.Listener
	if cfg.Progress {
		progress = cli.NewProgressListener(ui, os.Stderr, cfg.PDFPath)
		listener = progress
	} else {
		listener = extract.ListenerFuncs{
			Error: func(e *pdferrors.ExtractionError) { ui.Warning("%s", e.Message) },
		}
	}

	opener := wrapper.NewCompatibleOpener(wrapper.WithLogger(logger))
	job := extract.NewRunner(opener, opts, listener).Start(ctx, out, cfg.PDFPath)

	completed, err := job.Wait()
	if progress != nil {
		progress.Finish(completed)
	}

	res := job.Result()
	ui.PrintSummary(res)

	if cfg.ErrorReport != "" {
		if rerr := cli.WriteErrorReport(cfg.ErrorReport, res.Errors); rerr != nil {
			ui.Error("%v", rerr)
		} else if res.Errors.Len() > 0 {
			ui.Info("Error details written to %s", cfg.ErrorReport)
		}
	}

	switch {
	case err != nil:
		return exitFailure
	case res.Cancelled:
		ui.Error("extraction cancelled")
		return exitCancelled
	}
	return exitOK
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "Realbook Extractor\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
