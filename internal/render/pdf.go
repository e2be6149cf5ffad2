// Package render produces the paginated PDF documents mirrored to the
// remote drive.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"certivault/internal/cvault"
	"certivault/internal/model"
)

// categoryDescriptions is the blurb printed under each record's category.
var categoryDescriptions = map[string]string{
	"Academics":       "Academic achievement: coursework, olympiads and school honors.",
	"Sports":          "Sporting achievement: tournaments, meets and athletics awards.",
	"Arts":            "Visual and performing arts: exhibitions, drama and craft awards.",
	"Music":           "Musical achievement: recitals, grades and ensemble awards.",
	"Extracurricular": "Clubs, volunteering and other out-of-class activities.",
	"Other":           "General achievement record.",
}

// PDFRenderer renders certificates to a PDF, one certificate per page:
// title and issuer header, the record image, category description and the
// free-text summary.
type PDFRenderer struct{}

var _ cvault.Renderer = (*PDFRenderer)(nil)

// NewPDFRenderer creates a PDF renderer.
func NewPDFRenderer() *PDFRenderer { return &PDFRenderer{} }

// Render produces the document blob. An empty record set is an error: the
// sync engine always renders exactly the records it is about to upload.
func (r *PDFRenderer) Render(certs []*model.Certificate) ([]byte, error) {
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates to render")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	// Core fonts are cp1252; user text must be translated or multi-byte
	// runes come out as mojibake.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, cert := range certs {
		if err := renderPage(pdf, tr, cert, i); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPage(pdf *fpdf.Fpdf, tr func(string) string, cert *model.Certificate, idx int) error {
	pdf.AddPage()

	title := cert.Title
	if title == "" {
		title = "Untitled Certificate"
	}

	pdf.SetFont("Helvetica", "B", 18)
	pdf.MultiCell(0, 9, tr(title), "", "C", false)

	if header := issuerDateLine(cert.Issuer, cert.Date); header != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(header), "", "C", false)
	}
	pdf.Ln(4)

	if len(cert.Image) > 0 {
		imageType, err := imageTypeFromMIME(cert.ImageMIME)
		if err != nil {
			return fmt.Errorf("record %s: %w", cert.ID, err)
		}

		name := fmt.Sprintf("cert-%d", idx)
		opts := fpdf.ImageOptions{ImageType: imageType}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(cert.Image))
		if pdf.Err() {
			return fmt.Errorf("record %s: registering image: %v", cert.ID, pdf.Error())
		}

		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		width := pageW - left - right
		// Height 0 keeps the aspect ratio.
		pdf.ImageOptions(name, left, pdf.GetY(), width, 0, false, opts, 0, "")
		if pdf.Err() {
			return fmt.Errorf("record %s: placing image: %v", cert.ID, pdf.Error())
		}

		if info := pdf.GetImageInfo(name); info != nil && info.Width() > 0 {
			pdf.SetY(pdf.GetY() + width*info.Height()/info.Width() + 6)
		} else {
			pdf.Ln(6)
		}
	}

	category := cert.Category
	if category == "" {
		category = "Other"
	}
	desc, ok := categoryDescriptions[category]
	if !ok {
		desc = "Achievement filed under " + category + "."
	}
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, tr(category+" - "+desc), "", "L", false)
	pdf.Ln(2)

	if cert.Summary != "" {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(cert.Summary), "", "L", false)
	}

	if pdf.Err() {
		return fmt.Errorf("record %s: %v", cert.ID, pdf.Error())
	}
	return nil
}

// issuerDateLine joins issuer and date with a plain ASCII separator. The
// core PDF fonts are cp1252, so the separator must stay single-byte.
func issuerDateLine(issuer, date string) string {
	switch {
	case issuer == "":
		return date
	case date == "":
		return issuer
	default:
		return issuer + " - " + date
	}
}

func imageTypeFromMIME(mime string) (string, error) {
	switch strings.ToLower(mime) {
	case "image/jpeg", "image/jpg", "":
		return "JPG", nil
	case "image/png":
		return "PNG", nil
	case "image/gif":
		return "GIF", nil
	default:
		return "", fmt.Errorf("unsupported image type: %s", mime)
	}
}
