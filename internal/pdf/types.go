package pdf

// ImageInfo describes an image XObject found on a PDF page
type ImageInfo struct {
	PageNumber       int    `json:"page_number"`
	Name             string `json:"name"`
	Width            int    `json:"width"`
	Height           int    `json:"height"`
	BitsPerComponent int    `json:"bits_per_component"`
	ColorSpace       string `json:"color_space,omitempty"`
	Format           string `json:"format"`
	Bilevel          bool   `json:"bilevel"` // 1 bit per pixel, candidate for polarity correction
}

// Request Types

// PDFExtractImagesRequest represents a request to extract the images of a PDF
type PDFExtractImagesRequest struct {
	Path         string `json:"path"`
	OutputFolder string `json:"output_folder,omitempty"`
	Overwrite    bool   `json:"overwrite,omitempty"`
}

// PDFListImagesRequest represents a request to list the images of a PDF
type PDFListImagesRequest struct {
	Path string `json:"path"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// Response Types

// PDFExtractImagesResult represents the result of an image extraction
type PDFExtractImagesResult struct {
	RunID        string        `json:"run_id"`
	Path         string        `json:"path"`
	OutputFolder string        `json:"output_folder"`
	Success      bool          `json:"success"`
	Cancelled    bool          `json:"cancelled"`
	Pages        int           `json:"pages"`
	Files        []string      `json:"files"`
	Inverted     int           `json:"inverted"`
	Summary      string        `json:"summary"`
	Errors       []ErrorDetail `json:"errors,omitempty"`
	DurationMS   int64         `json:"duration_ms"`
}

// ErrorDetail is one recorded extraction error
type ErrorDetail struct {
	Level    string `json:"level"`
	Page     int    `json:"page,omitempty"`
	Sequence int    `json:"sequence,omitempty"`
	Message  string `json:"message"`
	Cause    string `json:"cause,omitempty"`
}

// PDFListImagesResult represents the result of an image inventory
type PDFListImagesResult struct {
	Path       string      `json:"path"`
	Pages      int         `json:"pages"`
	Images     []ImageInfo `json:"images"`
	TotalCount int         `json:"total_count"`
	Bilevel    int         `json:"bilevel"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid    bool   `json:"valid"`
	Path     string `json:"path"`
	MIMEType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Pages    int    `json:"pages,omitempty"`
	Message  string `json:"message,omitempty"`
}
