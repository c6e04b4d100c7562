package descriptions

// Tool descriptions shown to MCP clients

const (
	PDFExtractImagesDescription = `Extract every scanned page image of a PDF to numbered PNG files.

**When to use:** A PDF is a scan (sheet music, a book, a fake book) and you need the page images as files.

**What it does:** Walks the pages in order and writes each embedded image as 001.png, 002.png, ... into the output folder. Black and white scans that were stored inverted (white notes on black) are detected from their corners and fixed. PDFs the reader rejects are rewritten to PDF 1.4 and retried.

**Parameters:**
• path: PDF file, absolute or relative to the server directory
• output_folder: optional; defaults to a folder named after the PDF next to it
• overwrite: optional; required when the output folder already contains files

**Result:** the files written, a count of corrected images and any per-page or per-image errors. An image that fails still uses up its number, so gaps in the numbering show where.

**Best practices:** run pdf_list_images first to see how many images to expect.`

	PDFListImagesDescription = `List the images embedded in a PDF without extracting them.

**When to use:** Before extracting, to check that a PDF is a scan and how many images it holds.

**What it returns:** for every page, each image's resource name, size in pixels, bits per component, color space and encoding (JPEG, TIFF/Fax, JBIG2, ...). Images with 1 bit per component are flagged as bilevel; those are the ones checked for inversion during extraction.`

	PDFValidateFileDescription = `Verify that a file is a readable PDF.

**When to use:** Before extraction, especially for files from unknown sources.

**What it checks:** the file exists, has a .pdf extension, is within the size limit, its content is really PDF (by magic bytes, not name) and its page tree can be read.`
)
