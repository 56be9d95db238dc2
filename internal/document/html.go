package document

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/cespare/xxhash/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var printTemplate = template.Must(template.New("document.html").Funcs(template.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).ParseFS(templateFS, "templates/document.html"))

// HTML writes the self-contained print page for v.
func HTML(w io.Writer, v View) error {
	if err := printTemplate.ExecuteTemplate(w, "document.html", v); err != nil {
		return fmt.Errorf("document: render html: %w", err)
	}
	return nil
}

// HTMLBytes renders v into memory.
func HTMLBytes(v View) ([]byte, error) {
	var buf bytes.Buffer
	if err := HTML(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ETag returns a strong validator for a rendered body.
func ETag(body []byte) string {
	return fmt.Sprintf("\"%016x\"", xxhash.Sum64(body))
}
