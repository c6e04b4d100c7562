package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/a3tai/realbook-extractor/internal/config"
	"github.com/a3tai/realbook-extractor/internal/descriptions"
	"github.com/a3tai/realbook-extractor/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger zerolog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pdfExtractImagesTool := mcp.NewTool(
		"pdf_extract_images",
		mcp.WithDescription(descriptions.PDFExtractImagesDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
		mcp.WithString("output_folder",
			mcp.Description("Folder for the PNG files (default: folder named after the PDF)"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Allow writing into a folder that already contains files"),
		),
	)
	s.mcpServer.AddTool(pdfExtractImagesTool, s.handlePDFExtractImages)

	pdfListImagesTool := mcp.NewTool(
		"pdf_list_images",
		mcp.WithDescription(descriptions.PDFListImagesDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfListImagesTool, s.handlePDFListImages)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.PDFValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)
}

// Handler functions
func (s *Server) handlePDFExtractImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFExtractImagesRequest{Path: path}
	args := request.GetArguments()
	if out, ok := args["output_folder"].(string); ok {
		req.OutputFolder = out
	}
	if overwrite, ok := args["overwrite"].(bool); ok {
		req.Overwrite = overwrite
	}

	result, err := s.pdfService.PDFExtractImages(ctx, req)
	if err != nil {
		s.logger.Error().Err(err).Str("pdf", path).Msg("pdf_extract_images failed")
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFExtractImagesResult(result)), nil
}

func (s *Server) handlePDFListImages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFListImages(pdf.PDFListImagesRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatPDFListImagesResult(result)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PDFValidateFile(pdf.PDFValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable (%d pages, %d bytes)",
			result.Path, result.Pages, result.Size)
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatPDFExtractImagesResult(result *pdf.PDFExtractImagesResult) string {
	var b strings.Builder

	switch {
	case result.Cancelled:
		fmt.Fprintf(&b, "Extraction of %s was cancelled\n", result.Path)
	default:
		fmt.Fprintf(&b, "Extracted images from %s\n", result.Path)
	}
	fmt.Fprintf(&b, "Output folder: %s\n", result.OutputFolder)
	fmt.Fprintf(&b, "Pages: %d\n", result.Pages)
	fmt.Fprintf(&b, "Files written: %d\n", len(result.Files))
	if result.Inverted > 0 {
		fmt.Fprintf(&b, "Inverted scans corrected: %d\n", result.Inverted)
	}
	fmt.Fprintf(&b, "Duration: %dms\n", result.DurationMS)

	if len(result.Files) > 0 {
		fmt.Fprintf(&b, "\nFiles: %s", result.Files[0])
		if n := len(result.Files); n > 1 {
			fmt.Fprintf(&b, " ... %s", result.Files[n-1])
		}
		b.WriteString("\n")
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(&b, "\n%s\n", result.Summary)
		for _, e := range result.Errors {
			fmt.Fprintf(&b, "• %s", e.Message)
			if e.Sequence > 0 {
				fmt.Fprintf(&b, " (image %03d)", e.Sequence)
			}
			if e.Cause != "" {
				fmt.Fprintf(&b, ": %s", e.Cause)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}

func (s *Server) formatPDFListImagesResult(result *pdf.PDFListImagesResult) string {
	text := fmt.Sprintf("Images in: %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Total images found: %d (%d bilevel)\n", result.TotalCount, result.Bilevel)

	if result.TotalCount > 0 {
		text += "\nImages:\n"
		for i, img := range result.Images {
			text += fmt.Sprintf("%d. Page %d %s: %dx%d pixels, %d bpc, Format: %s",
				i+1, img.PageNumber, img.Name, img.Width, img.Height, img.BitsPerComponent, img.Format)
			if img.ColorSpace != "" {
				text += fmt.Sprintf(", %s", img.ColorSpace)
			}
			text += "\n"
		}
	}

	return text
}

// Run serves MCP on standard I/O until ctx is done or stdin closes
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve serves MCP over the given streams
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info().
		Str("dir", s.config.PDFDirectory).
		Str("version", s.config.Version).
		Msg("starting MCP server on stdio")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(s.logger, "", 0))

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		s.logger.Info().Msg("MCP server stopped")
		return nil
	}
	return fmt.Errorf("failed to serve stdio: %w", err)
}
