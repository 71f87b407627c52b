package artifact

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// DefaultStampDescription places the screenshot upright at the bottom centre of each page.
const DefaultStampDescription = "pos:bc, scale:0.4 rel, rot:0, op:1"

// PDFStamper embeds images into PDFs with pdfcpu.
type PDFStamper struct {
	Description string
}

// NewPDFStamper creates a stamper using DefaultStampDescription.
func NewPDFStamper() *PDFStamper {
	return &PDFStamper{Description: DefaultStampDescription}
}

// Embed overlays the image on every page of the PDF, rewriting it in place.
func (s *PDFStamper) Embed(imagePath, pdfPath string) error {
	if err := api.AddImageWatermarksFile(pdfPath, pdfPath, nil, true, imagePath, s.Description, nil); err != nil {
		return fmt.Errorf("failed to stamp %s onto %s: %w", imagePath, pdfPath, err)
	}
	return nil
}
