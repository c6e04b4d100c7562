package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/a3tai/realbook-extractor/internal/extract"
	"github.com/a3tai/realbook-extractor/internal/pdf"
	pdferrors "github.com/a3tai/realbook-extractor/internal/pdf/errors"
)

// PrintSummary reports how a run ended.
func (ui *UI) PrintSummary(res *extract.Result) {
	switch {
	case res.Cancelled:
		ui.Warning("Extraction cancelled after %d images, %d written", res.Attempted, len(res.Written))
	case res.Success:
		ui.Success("Extracted %d images from %d pages into %s", len(res.Written), res.Pages, res.OutputFolder)
	}

	if res.Inverted > 0 {
		ui.Info("Corrected %d inverted scans", res.Inverted)
	}

	if res.Errors == nil || res.Errors.Len() == 0 {
		return
	}
	ui.Error("%s", res.Errors.Summary())
	for _, e := range res.Errors.ByLevel(pdferrors.LevelFatal) {
		if e.Err != nil {
			fmt.Fprintf(ui.errOut, "  %v\n", e.Err)
		}
	}
}

// WriteErrorReport writes the details of every recorded error to path. It
// does nothing when there are no errors.
func WriteErrorReport(path string, errs *pdferrors.ErrorCollection) error {
	if errs == nil || errs.Len() == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create error report folder: %w", err)
	}
	if err := os.WriteFile(path, []byte(errs.Report()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write error report: %w", err)
	}
	return nil
}

// PrintInventory lists the images of a PDF for a dry run.
func (ui *UI) PrintInventory(inv *pdf.PDFListImagesResult, outputFolder string) {
	ui.Section(filepath.Base(inv.Path))
	ui.KeyValue("Pages", inv.Pages)
	ui.KeyValue("Images", inv.TotalCount)
	ui.KeyValue("Bilevel", inv.Bilevel)
	ui.KeyValue("Output folder", outputFolder)

	if inv.TotalCount == 0 {
		ui.Warning("No images found")
		return
	}

	fmt.Fprintln(ui.out)
	for i, img := range inv.Images {
		fmt.Fprintf(ui.out, "  %s  page %-4d %-8s %5dx%-5d %d bpc  %s\n",
			fmt.Sprintf(extract.FileNameFormat, i+1),
			img.PageNumber, img.Name, img.Width, img.Height, img.BitsPerComponent, img.Format)
	}
}
