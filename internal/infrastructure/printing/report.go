package printing

import (
	"context"
	"html/template"
	"time"

	fertilizerapp "github.com/smartfertilizer/backend/internal/application/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"go.uber.org/zap"
)

// fertilizerLabels are the printable names of fertilizer classes
var fertilizerLabels = map[fertilizer.FertilizerType]string{
	fertilizer.FertilizerN:       "Nitrogen (N)",
	fertilizer.FertilizerP:       "Phosphorus (P)",
	fertilizer.FertilizerK:       "Potassium (K)",
	fertilizer.FertilizerOrganic: "Organic",
	fertilizer.FertilizerMixed:   "Mixed NPK",
}

func fertilizerLabel(t fertilizer.FertilizerType) string {
	if label, ok := fertilizerLabels[t]; ok {
		return label
	}
	return string(t)
}

// healthBand groups a 0-100 soil health score for display
func healthBand(score float64) string {
	switch {
	case score >= 75:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

type reportView struct {
	Rec             *fertilizer.Recommendation
	FertilizerLabel string
	HealthBand      string
	OwnerName       string
	Location        string
	GeneratedAt     time.Time
}

// RecommendationReports renders recommendations as PDF reports
type RecommendationReports struct {
	pdf    PDFRenderer
	engine *TemplateEngine
	tmpl   *template.Template
	logger *zap.Logger
	now    func() time.Time
}

// NewRecommendationReports creates a report renderer backed by pdf
func NewRecommendationReports(pdf PDFRenderer, logger *zap.Logger) (*RecommendationReports, error) {
	engine := NewTemplateEngine(time.UTC)
	tmpl, err := engine.Parse("recommendation", recommendationTemplate)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplate, "failed to parse recommendation template", err)
	}
	return &RecommendationReports{
		pdf:    pdf,
		engine: engine,
		tmpl:   tmpl,
		logger: logger,
		now:    time.Now,
	}, nil
}

// HTML renders the report body without printing it
func (r *RecommendationReports) HTML(rec *fertilizer.Recommendation) (string, error) {
	view := reportView{
		Rec:             rec,
		FertilizerLabel: fertilizerLabel(rec.FertilizerType),
		HealthBand:      healthBand(rec.SoilHealthScore),
		GeneratedAt:     r.now(),
	}
	if rec.Owner != nil {
		view.OwnerName = rec.Owner.Name
	}
	if rec.SoilReading != nil {
		view.Location = rec.SoilReading.Location
	}
	return r.engine.Execute(r.tmpl, view)
}

// RenderRecommendation implements the report renderer used by the recommendation service
func (r *RecommendationReports) RenderRecommendation(ctx context.Context, rec *fertilizer.Recommendation) ([]byte, error) {
	body, err := r.HTML(rec)
	if err != nil {
		return nil, err
	}

	result, err := r.pdf.Render(ctx, &RenderRequest{
		HTML:       body,
		PaperSize:  PaperA4,
		Title:      "Fertilizer Recommendation " + shortUUID(rec.ID),
		FooterHTML: reportFooter,
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Recommendation report rendered",
		zap.String("recommendation_id", rec.ID.String()),
		zap.Int("pages", result.PageCount))
	return result.PDFData, nil
}

var _ fertilizerapp.ReportRenderer = (*RecommendationReports)(nil)

const reportFooter = `<div style="font-size:8px;width:100%;text-align:center;color:#666;">` +
	`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`

const recommendationTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>Fertilizer Recommendation {{shortUUID .Rec.ID}}</title>
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #222; font-size: 12px; }
  h1 { color: #2e7d32; font-size: 20px; margin-bottom: 2px; }
  .meta { color: #666; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 16px; }
  th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: left; }
  th { background: #e8f5e9; }
  .summary td { font-size: 14px; }
  .band-good { color: #2e7d32; }
  .band-fair { color: #f9a825; }
  .band-poor { color: #c62828; }
</style>
</head>
<body>
<h1>Fertilizer Recommendation</h1>
<div class="meta">
  Reference {{shortUUID .Rec.ID}} &middot; Issued {{formatDateTime .Rec.CreatedAt}}
  {{- if .OwnerName}} &middot; Prepared for {{.OwnerName}}{{end}}
  {{- if .Location}} &middot; {{.Location}}{{end}}
</div>

<table class="summary">
  <tr><th>Crop</th><td>{{.Rec.Input.CropType}}</td></tr>
  <tr><th>Fertilizer</th><td>{{.FertilizerLabel}}</td></tr>
  <tr><th>Quantity</th><td>{{formatDecimal .Rec.QuantityKgPerAcre 1}} kg/acre</td></tr>
  <tr><th>Soil health</th><td class="band-{{.HealthBand}}">{{formatDecimal .Rec.SoilHealthScore 1}} / 100 ({{title .HealthBand}})</td></tr>
</table>

<h2>Soil input</h2>
<table>
  <tr><th>Nitrogen</th><th>Phosphorus</th><th>Potassium</th><th>pH</th><th>Moisture (%)</th><th>Temperature (&deg;C)</th></tr>
  <tr>
    <td>{{formatDecimal .Rec.Input.Nitrogen 1}}</td>
    <td>{{formatDecimal .Rec.Input.Phosphorus 1}}</td>
    <td>{{formatDecimal .Rec.Input.Potassium 1}}</td>
    <td>{{formatDecimal .Rec.Input.PH 1}}</td>
    <td>{{formatDecimal .Rec.Input.Moisture 1}}</td>
    <td>{{formatDecimal .Rec.Input.Temperature 1}}</td>
  </tr>
</table>

{{- if .Rec.Deficiencies}}
<h2>Deficiency analysis</h2>
<table>
  <tr><th>Nutrient</th><th>Level</th><th>Status</th><th>Severity</th><th>Advice</th></tr>
  {{- range .Rec.Deficiencies}}
  <tr>
    <td>{{title .Nutrient}}</td>
    <td>{{formatDecimal .Level 1}}</td>
    <td>{{title .Status}}</td>
    <td>{{title .Severity}}</td>
    <td>{{.Advice}}</td>
  </tr>
  {{- end}}
</table>
{{- end}}

{{- if .Rec.Suggestions}}
<h2>Improvement suggestions</h2>
<ul>
  {{- range .Rec.Suggestions}}
  <li>{{.}}</li>
  {{- end}}
</ul>
{{- end}}

{{- with .Rec.Feedback}}
<p class="meta">Feedback: {{if .IsHelpful}}helpful{{else}}not helpful{{end}}{{if .Comment}} &middot; {{.Comment}}{{end}}</p>
{{- end}}
<p class="meta">Generated {{formatDateTime .GeneratedAt}}</p>
</body>
</html>
`
