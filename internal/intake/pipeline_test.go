package intake

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"math/rand"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfbinder/internal/common"
	"pdfbinder/internal/document"
	"pdfbinder/internal/recompress"
)

func fixturePDF(t *testing.T, pages int) []byte {
	t.Helper()

	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Text(50, 50, "fixture")
	}

	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func fixtureNoisyJPEG(t *testing.T, width, height int) []byte {
	t.Helper()

	rng := rand.New(rand.NewSource(7))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 100}))
	return buf.Bytes()
}

// Full pipeline with the real recompressor, validator and assembler: two
// single-page PDFs plus one large JPEG come out as one three-page document.
func TestPipelineEndToEnd(t *testing.T) {
	logger := testLogger()
	o := NewOrchestrator(
		logger,
		recompress.NewRecompressor(logger),
		document.NewValidator(logger),
		document.NewAssembler(logger),
	)

	jpegData := fixtureNoisyJPEG(t, 2000, 1500)
	require.Greater(t, len(jpegData), common.RecompressThresholdBytes)

	files := []common.File{
		{Name: "first.pdf", Data: fixturePDF(t, 1), MediaType: common.MediaTypePDF, ModTime: time.Now()},
		{Name: "second.pdf", Data: fixturePDF(t, 1), MediaType: common.MediaTypePDF, ModTime: time.Now()},
		{Name: "photo.jpg", Data: jpegData, MediaType: common.MediaTypeJPEG, ModTime: time.Now()},
	}

	ids, err := o.AddFiles(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, o.AwaitSettled(ctx))

	imageEntry, ok := o.Entry(ids[2])
	require.True(t, ok)
	require.Equal(t, StateCompressed, imageEntry.State)
	require.NotNil(t, imageEntry.DerivedFile, "large noisy JPEG must have been recompressed")

	entries := o.Snapshot()
	plan, err := o.PrepareForMerge(entries)
	require.NoError(t, err)
	assert.Less(t, plan.TotalBytes, int64(len(jpegData)),
		"budget must be computed from post-compression sizes")

	out, err := o.Merge(entries)
	require.NoError(t, err)

	outcome := document.NewValidator(logger).Validate(common.File{
		Name:      "merged.pdf",
		Data:      out,
		MediaType: common.MediaTypePDF,
	})
	require.True(t, outcome.Valid, "merged output invalid: %s", outcome.Error)
	assert.Equal(t, 3, outcome.PageCount)
}
