// Package prompt renders the instruction text sent to the report model.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Protocol-Lattice/growth-report/pkg/modality"
)

// Variant selects the persona, rubric and output schema of a prompt.
type Variant int

const (
	// GrowthReport is the canonical English child-psychologist report.
	GrowthReport Variant = iota
	// CareerPlan is the historical Chinese career-planning report for volunteer teachers.
	CareerPlan
)

func (v Variant) String() string {
	switch v {
	case GrowthReport:
		return "growth"
	case CareerPlan:
		return "career"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant accepts "growth" (or "") and "career".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "growth", "report":
		return GrowthReport, nil
	case "career", "career_plan":
		return CareerPlan, nil
	default:
		return 0, fmt.Errorf("unknown prompt variant %q", s)
	}
}

// SchemaMarker precedes the example JSON object, which always ends the prompt.
const SchemaMarker = "Please strictly output ONLY a valid JSON object following this structure:"

var (
	growthMetrics = []string{"innovation", "communication", "stability", "drive", "empathy"}
	careerMetrics = []string{"empathy", "resilience", "communication"}
)

// Metrics returns the ordered score names of a variant.
func Metrics(v Variant) []string {
	if v == CareerPlan {
		return append([]string(nil), careerMetrics...)
	}
	return append([]string(nil), growthMetrics...)
}

// Input is the per-request data interpolated into a prompt.
type Input struct {
	SubjectName     string
	Description     string
	ImageAnalysis   modality.Analysis
	AudioTranscript modality.Analysis
}

type view struct {
	Name        string
	Description string
	Image       string
	Audio       string
	Marker      string
	Example     string
}

// Build renders the prompt for v. User-supplied values only ever appear as JSON string
// literals, so they cannot break out of their field or alter the example schema.
func Build(v Variant, in Input) (string, error) {
	var (
		tmpl    *template.Template
		example any
		vw      = view{Name: quote(in.SubjectName), Description: quote(in.Description), Marker: SchemaMarker}
	)

	switch v {
	case GrowthReport:
		tmpl = growthTemplate
		example = newGrowthExample(in.SubjectName)
		vw.Image = labelled("[Image Analysis Result]: ", in.ImageAnalysis, "None (Not provided or analyzed)")
		vw.Audio = labelled("[Audio Transcription]: ", in.AudioTranscript, "None (Not provided or analyzed)")
	case CareerPlan:
		tmpl = careerTemplate
		example = newCareerExample(in.SubjectName)
		vw.Image = labelled("", in.ImageAnalysis, "（无图片分析结果）")
		vw.Audio = labelled("", in.AudioTranscript, "（无音频转录文本）")
	default:
		return "", fmt.Errorf("unknown prompt variant %v", v)
	}

	ex, err := encodeExample(example)
	if err != nil {
		return "", fmt.Errorf("encode example schema: %w", err)
	}
	vw.Example = ex

	var b strings.Builder
	if err := tmpl.Execute(&b, vw); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", v, err)
	}
	return b.String(), nil
}

func labelled(label string, a modality.Analysis, placeholder string) string {
	if text, ok := a.Text(); ok {
		return label + quote(text)
	}
	return label + placeholder
}

// quote renders s as a JSON string literal without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return `""`
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func encodeExample(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
