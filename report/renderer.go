package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/verandameister/quotedesk/internal/document"
	"github.com/verandameister/quotedesk/internal/quotes"
)

// PDFConverter turns print HTML into PDF bytes.
type PDFConverter interface {
	RenderHTML(ctx context.Context, html []byte) ([]byte, error)
}

// Renderer produces the printable forms of a quote.
type Renderer struct {
	company   document.Company
	converter PDFConverter
}

// NewRenderer constructs a renderer. A nil converter disables PDF output.
func NewRenderer(company document.Company, converter PDFConverter) *Renderer {
	return &Renderer{company: company, converter: converter}
}

// HTML returns the print page of q.
func (r *Renderer) HTML(q quotes.Quote) ([]byte, error) {
	return document.HTMLBytes(document.Render(q, r.company))
}

// PDF returns q as a PDF document.
func (r *Renderer) PDF(ctx context.Context, q quotes.Quote) ([]byte, error) {
	if r.converter == nil {
		return nil, ErrPDFUnavailable
	}
	html, err := r.HTML(q)
	if err != nil {
		return nil, err
	}
	pdf, err := r.converter.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("report: pdf for %s: %w", q.ID, err)
	}
	return pdf, nil
}

// Kind names the document type of q.
func Kind(q quotes.Quote) string {
	if q.IsInvoice {
		return "invoice"
	}
	return "quote"
}

// FileName is the download name of the PDF of q, e.g. Angebot-2026262.pdf.
func FileName(q quotes.Quote) string {
	prefix := "Angebot"
	if q.IsInvoice {
		prefix = "Rechnung"
	}
	number := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r == '-':
			return r
		}
		return -1
	}, q.QuoteNumber)
	if number == "" {
		number = q.ID
	}
	return prefix + "-" + number + ".pdf"
}

// Archive writes rendered PDFs below a directory.
type Archive struct {
	dir string
}

// NewArchive returns an archive rooted at dir.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save stores pdf under the file name of q and returns the path.
func (a *Archive) Save(q quotes.Quote, pdf []byte) (string, error) {
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return "", fmt.Errorf("report: archive dir: %w", err)
	}
	path := filepath.Join(a.dir, FileName(q))
	if err := os.WriteFile(path, pdf, 0o644); err != nil {
		return "", fmt.Errorf("report: write %s: %w", path, err)
	}
	return path, nil
}
