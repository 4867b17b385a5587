package prediction

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smartfertilizer/backend/internal/domain/fertilizer"
	"github.com/smartfertilizer/backend/internal/domain/soil"
)

// fields maps every key of a JSON object to its canonical form so that
// fertilizer_type, fertilizerType and FertilizerType are the same key.
type fields map[string]json.RawMessage

func canonicalKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", ""))
}

func decodeFields(data []byte) (fields, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(fields, len(raw))
	for k, v := range raw {
		out[canonicalKey(k)] = v
	}
	return out, nil
}

func (f fields) has(key string) bool {
	v, ok := f[canonicalKey(key)]
	return ok && string(v) != "null"
}

func (f fields) decode(key string, dst any) error {
	v, ok := f[canonicalKey(key)]
	if !ok || string(v) == "null" {
		return nil
	}
	if err := json.Unmarshal(v, dst); err != nil {
		return fmt.Errorf("field %s: %w", key, err)
	}
	return nil
}

// normalize converts a predictor response, in either key style, into the
// canonical prediction. Input fields the predictor does not echo keep the
// requested values.
func normalize(body []byte, requested soil.Measurements) (*fertilizer.Prediction, error) {
	f, err := decodeFields(body)
	if err != nil {
		return nil, err
	}

	p := &fertilizer.Prediction{}
	var fertilizerType string
	if err := f.decode("fertilizer_type", &fertilizerType); err != nil {
		return nil, err
	}
	p.FertilizerType = fertilizer.FertilizerType(fertilizerType)
	if err := f.decode("quantity_kg_per_acre", &p.QuantityKgPerAcre); err != nil {
		return nil, err
	}
	if err := f.decode("soil_health_score", &p.SoilHealthScore); err != nil {
		return nil, err
	}
	if err := f.decode("improvement_suggestions", &p.Suggestions); err != nil {
		return nil, err
	}

	var deficiencies []json.RawMessage
	if err := f.decode("deficiency_analysis", &deficiencies); err != nil {
		return nil, err
	}
	p.Deficiencies = make([]fertilizer.Deficiency, 0, len(deficiencies))
	for _, item := range deficiencies {
		d, err := normalizeDeficiency(item)
		if err != nil {
			return nil, err
		}
		p.Deficiencies = append(p.Deficiencies, d)
	}
	if p.Suggestions == nil {
		p.Suggestions = []string{}
	}

	if f.has("input_data") {
		var raw json.RawMessage
		if err := f.decode("input_data", &raw); err != nil {
			return nil, err
		}
		input, err := normalizeInput(raw, requested)
		if err != nil {
			return nil, err
		}
		p.Input = input
	}
	return p, nil
}

func normalizeDeficiency(data []byte) (fertilizer.Deficiency, error) {
	var d fertilizer.Deficiency
	f, err := decodeFields(data)
	if err != nil {
		return d, err
	}
	for key, dst := range map[string]any{
		"nutrient": &d.Nutrient,
		"level":    &d.Level,
		"status":   &d.Status,
		"severity": &d.Severity,
	} {
		if err := f.decode(key, dst); err != nil {
			return d, err
		}
	}
	adviceKey := "recommendation"
	if !f.has(adviceKey) {
		adviceKey = "advice"
	}
	if err := f.decode(adviceKey, &d.Advice); err != nil {
		return d, err
	}
	return d, nil
}

func normalizeInput(data []byte, requested soil.Measurements) (*fertilizer.InputSnapshot, error) {
	f, err := decodeFields(data)
	if err != nil {
		return nil, err
	}
	snapshot := fertilizer.SnapshotOf(requested)
	in := &snapshot
	for key, dst := range map[string]*float64{
		"nitrogen":    &in.Nitrogen,
		"phosphorus":  &in.Phosphorus,
		"potassium":   &in.Potassium,
		"ph":          &in.PH,
		"moisture":    &in.Moisture,
		"temperature": &in.Temperature,
	} {
		if err := f.decode(key, dst); err != nil {
			return nil, err
		}
	}
	var crop string
	if err := f.decode("crop_type", &crop); err != nil {
		return nil, err
	}
	if parsed := soil.ParseCropType(crop); parsed != "" {
		in.CropType = parsed
	}
	return in, nil
}
