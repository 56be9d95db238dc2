package view

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/verandameister/quotedesk/internal/document"
	"github.com/verandameister/quotedesk/internal/quotes"
	"github.com/verandameister/quotedesk/internal/shared"
	"github.com/verandameister/quotedesk/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates *template.Template
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flash       *shared.FlashMessage
	CurrentPath string
	User        string
	Data        any
}

// NewEngine parses templates at build-time.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(d quotes.Date) string {
			return d.String()
		},
		"euro": func(v float64) string {
			return document.FormatCurrency(decimal.NewFromFloat(v))
		},
		"statusClass": func(s quotes.Status) string {
			switch s {
			case quotes.StatusSent:
				return "status-sent"
			case quotes.StatusAccepted:
				return "status-accepted"
			}
			return "status-created"
		},
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	return &Engine{templates: tpl}, nil
}

// Render executes a named template with TemplateData.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return e.templates.ExecuteTemplate(w, name, data)
}
