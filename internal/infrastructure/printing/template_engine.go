package printing

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders HTML templates with the report formatting helpers
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a template engine bound to loc for date output
func NewTemplateEngine(loc *time.Location) *TemplateEngine {
	if loc == nil {
		loc = time.UTC
	}
	return &TemplateEngine{
		funcMap: template.FuncMap{
			"formatDecimal": formatDecimal,
			"formatDateTime": func(t time.Time) string {
				if t.IsZero() {
					return ""
				}
				return t.In(loc).Format("02 Jan 2006 15:04")
			},
			"title":     titleCase,
			"join":      strings.Join,
			"shortUUID": shortUUID,
			"lower":     strings.ToLower,
		},
	}
}

// Parse compiles a named template with the engine's functions
func (e *TemplateEngine) Parse(name, text string) (*template.Template, error) {
	return template.New(name).Funcs(e.funcMap).Parse(text)
}

// Execute renders tmpl with data
func (e *TemplateEngine) Execute(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to execute template "+tmpl.Name(), err)
	}
	return buf.String(), nil
}

// formatDecimal formats v with a fixed number of decimals.
// Example: formatDecimal 85.456 1 -> "85.5"
func formatDecimal(v float64, precision int) string {
	return decimal.NewFromFloat(v).StringFixed(int32(precision))
}

// titleCase capitalizes each word. Example: "severe deficiency" -> "Severe Deficiency"
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func shortUUID(id uuid.UUID) string {
	return id.String()[:8]
}
