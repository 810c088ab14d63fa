package document

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math"

	_ "image/jpeg"
	_ "image/png"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"pdfbinder/internal/common"
)

// Output page geometry for embedded images: A4 in points, with a fixed
// margin around the drawn image.
const (
	PageWidthPt  = 595.0
	PageHeightPt = 842.0
	PageMarginPt = 20.0
)

// Assembler concatenates an ordered list of prepared files into one
// output document. PDFs contribute all of their pages in original order;
// each image becomes one page, centered and scaled to fit.
type Assembler struct {
	logger *slog.Logger
	conf   *model.Configuration
}

// NewAssembler creates a new assembler instance
func NewAssembler(logger *slog.Logger) *Assembler {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Assembler{
		logger: logger,
		conf:   conf,
	}
}

// Assemble produces the merged document. The call is all-or-nothing: any
// codec failure on any single file aborts the whole assembly.
func (a *Assembler) Assemble(files []common.File) ([]byte, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to assemble")
	}

	readers := make([]io.ReadSeeker, 0, len(files))
	for _, file := range files {
		switch common.DetectMediaType(file.Name, file.MediaType) {
		case common.MediaTypePDF:
			readers = append(readers, bytes.NewReader(file.Data))
		case common.MediaTypeJPEG, common.MediaTypePNG:
			page, err := a.imagePage(file)
			if err != nil {
				return nil, fmt.Errorf("failed to place image %s: %w", file.Name, err)
			}
			readers = append(readers, bytes.NewReader(page))
		default:
			return nil, &UnsupportedTypeError{Name: file.Name, MediaType: file.MediaType}
		}
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, a.conf); err != nil {
		return nil, fmt.Errorf("failed to merge documents: %w", err)
	}

	a.logger.Info("assembled document",
		"files", len(files),
		"size", common.FormatFileSize(int64(buf.Len())),
	)

	return buf.Bytes(), nil
}

// imagePage renders one image onto a single-page PDF, uniformly scaled to
// fit within the page minus the margin and centered both ways.
func (a *Assembler) imagePage(file common.File) ([]byte, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image dimensions: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no visible area")
	}

	maxWidth := PageWidthPt - 2*PageMarginPt
	maxHeight := PageHeightPt - 2*PageMarginPt
	scale := math.Min(maxWidth/float64(cfg.Width), maxHeight/float64(cfg.Height))
	drawnWidth := float64(cfg.Width) * scale
	drawnHeight := float64(cfg.Height) * scale
	x := (PageWidthPt - drawnWidth) / 2
	y := (PageHeightPt - drawnHeight) / 2

	pdf := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: PageWidthPt, Ht: PageHeightPt},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	imageType := "JPEG"
	if common.DetectMediaType(file.Name, file.MediaType) == common.MediaTypePNG {
		imageType = "PNG"
	}
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(file.Name, opts, bytes.NewReader(file.Data))
	pdf.ImageOptions(file.Name, x, y, drawnWidth, drawnHeight, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render image page: %w", err)
	}
	return buf.Bytes(), nil
}
