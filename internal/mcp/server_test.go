package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/realbook-extractor/internal/config"
	"github.com/a3tai/realbook-extractor/internal/pdf"
	"github.com/a3tai/realbook-extractor/internal/testutil"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Mode:         config.ModeStdio,
		PDFDirectory: dir,
		ServerName:   "realbook-extractor",
		Version:      "test",
		MaxFileSize:  config.DefaultMaxFileSize,
	}

	service, err := pdf.NewService(cfg.MaxFileSize, dir)
	require.NoError(t, err)

	s, err := NewServer(cfg, service, zerolog.Nop())
	require.NoError(t, err)
	return s, dir
}

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	service, err := pdf.NewService(1024, t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		name    string
		cfg     *config.Config
		service *pdf.Service
		wantErr string
	}{
		{name: "nil config", service: service, wantErr: "config cannot be nil"},
		{name: "nil service", cfg: &config.Config{}, wantErr: "pdfService cannot be nil"},
		{name: "valid", cfg: &config.Config{ServerName: "x", Version: "1"}, service: service},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewServer(tt.cfg, tt.service, zerolog.Nop())
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				assert.Nil(t, s)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s.mcpServer)
		})
	}
}

func TestServer_HandlePDFExtractImages(t *testing.T) {
	s, dir := newTestServer(t)
	testutil.WriteImagePDF(t, dir, "realbook.pdf",
		testutil.Gray(20, 30, 0xff),
		testutil.Checker(40, 40, 5),
		testutil.Gray(8, 8, 0x10),
	)

	result, err := s.handlePDFExtractImages(context.Background(), callTool("pdf_extract_images", map[string]interface{}{
		"path": "realbook.pdf",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Extracted images from")
	assert.Contains(t, text, "Pages: 3")
	assert.Contains(t, text, "Files written: 3")
	assert.Contains(t, text, "Files: 001.png ... 003.png")

	for _, name := range []string{"001.png", "002.png", "003.png"} {
		_, err := os.Stat(filepath.Join(dir, "realbook", name))
		assert.NoError(t, err, name)
	}

	// Second run into the same folder needs overwrite.
	result, err = s.handlePDFExtractImages(context.Background(), callTool("pdf_extract_images", map[string]interface{}{
		"path": "realbook.pdf",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), "not empty")

	result, err = s.handlePDFExtractImages(context.Background(), callTool("pdf_extract_images", map[string]interface{}{
		"path":          "realbook.pdf",
		"output_folder": "pages",
		"overwrite":     true,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, extractTextFromResult(result), filepath.Join(dir, "pages"))
}

func TestServer_HandlePDFExtractImages_Errors(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{name: "missing path", args: map[string]interface{}{}, want: "path"},
		{name: "missing file", args: map[string]interface{}{"path": "nope.pdf"}, want: "nope.pdf"},
		{name: "outside directory", args: map[string]interface{}{"path": "/etc/passwd.pdf"}, want: "security validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.handlePDFExtractImages(context.Background(), callTool("pdf_extract_images", tt.args))
			require.NoError(t, err)
			assert.True(t, result.IsError)
			assert.Contains(t, extractTextFromResult(result), tt.want)
		})
	}
}

func TestServer_HandlePDFListImages(t *testing.T) {
	s, dir := newTestServer(t)
	testutil.WriteImagePDF(t, dir, "book.pdf", testutil.Gray(10, 20, 0x80), testutil.Checker(16, 16, 4))

	result, err := s.handlePDFListImages(context.Background(), callTool("pdf_list_images", map[string]interface{}{
		"path": "book.pdf",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractTextFromResult(result)
	assert.Contains(t, text, "Pages: 2")
	assert.Contains(t, text, "Total images found: 2")
	assert.Contains(t, text, "1. Page 1")
	assert.Contains(t, text, "10x20 pixels")
	assert.Contains(t, text, "2. Page 2")

	result, err = s.handlePDFListImages(context.Background(), callTool("pdf_list_images", map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_HandlePDFValidateFile(t *testing.T) {
	s, dir := newTestServer(t)
	testutil.WriteImagePDF(t, dir, "book.pdf", testutil.Gray(4, 4, 0))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fake.pdf"), []byte("just text, not a document"), 0o600))

	result, err := s.handlePDFValidateFile(context.Background(), callTool("pdf_validate_file", map[string]interface{}{
		"path": "book.pdf",
	}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "is valid and readable (1 pages")

	result, err = s.handlePDFValidateFile(context.Background(), callTool("pdf_validate_file", map[string]interface{}{
		"path": "fake.pdf",
	}))
	require.NoError(t, err)
	assert.Contains(t, extractTextFromResult(result), "PDF validation failed")
}

func TestServer_FormatPDFExtractImagesResult(t *testing.T) {
	s, _ := newTestServer(t)

	text := s.formatPDFExtractImagesResult(&pdf.PDFExtractImagesResult{
		Path:         "/books/vol1.pdf",
		OutputFolder: "/books/vol1",
		Cancelled:    true,
		Pages:        4,
		Files:        []string{"001.png", "003.png"},
		Inverted:     1,
		Summary:      "There were 2 errors.",
		Errors: []pdf.ErrorDetail{
			{Level: "IMAGE", Page: 2, Sequence: 2, Message: "Cannot decode image on page 2"},
			{Level: "PAGE", Page: 4, Message: "Couldn't extract image on page 4", Cause: "bad resources"},
		},
	})

	assert.Contains(t, text, "Extraction of /books/vol1.pdf was cancelled")
	assert.Contains(t, text, "Inverted scans corrected: 1")
	assert.Contains(t, text, "Files: 001.png ... 003.png")
	assert.Contains(t, text, "There were 2 errors.")
	assert.Contains(t, text, "• Cannot decode image on page 2 (image 002)")
	assert.Contains(t, text, "• Couldn't extract image on page 4: bad resources")
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
