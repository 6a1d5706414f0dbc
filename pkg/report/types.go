package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Protocol-Lattice/growth-report/pkg/modality"
	"github.com/Protocol-Lattice/growth-report/pkg/prompt"
)

// Request is the input of one report. Build it once and pass it by value.
type Request struct {
	SubjectName     string
	Description     string
	ImageAnalysis   modality.Analysis
	AudioTranscript modality.Analysis
}

func (r Request) promptInput() prompt.Input {
	return prompt.Input{
		SubjectName:     r.SubjectName,
		Description:     r.Description,
		ImageAnalysis:   r.ImageAnalysis,
		AudioTranscript: r.AudioTranscript,
	}
}

// Result is the canonical growth report.
type Result struct {
	UserName        string    `json:"user_name"`
	SummaryIntro    Narrative `json:"summary_intro,omitempty"`
	Personality     Narrative `json:"personality,omitempty"`
	LearningAdvice  Narrative `json:"learning_advice,omitempty"`
	HobbiesAnalysis Narrative `json:"hobbies_analysis,omitempty"`
	Scores          Scores    `json:"scores,omitempty"`
	KeyTakeaways    []string  `json:"key_takeaways,omitempty"`

	// Err is set on fallback results only.
	Err error `json:"-"`
}

// Failed reports whether r is a fallback result.
func (r Result) Failed() bool { return r.Err != nil }

// CareerPlan is the historical career-planning report. Its score names differ from
// Result's and are never merged into it.
type CareerPlan struct {
	UserName        string    `json:"user_name"`
	Personality     Narrative `json:"personality,omitempty"`
	CareerAdvice    Narrative `json:"career_advice,omitempty"`
	HobbiesAnalysis Narrative `json:"hobbies_analysis,omitempty"`
	Scores          Scores    `json:"scores,omitempty"`
	Error           string    `json:"error,omitempty"`
	Note            string    `json:"note,omitempty"`

	Err error `json:"-"`
}

func (c CareerPlan) Failed() bool { return c.Err != nil }

// Narrative is free text. Models sometimes answer with a list of paragraphs even when
// told not to; those are joined with blank lines.
type Narrative string

func (n *Narrative) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var parts []string
		if err := json.Unmarshal(data, &parts); err != nil {
			return fmt.Errorf("narrative list: %w", err)
		}
		*n = Narrative(strings.Join(parts, "\n\n"))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("narrative: %w", err)
	}
	*n = Narrative(s)
	return nil
}

// Scores maps metric names to integer scores. Fractional and quoted numbers are rounded.
type Scores map[string]int

func (s *Scores) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("scores: %w", err)
	}
	out := make(Scores, len(raw))
	for name, v := range raw {
		score, err := parseScore(v)
		if err != nil {
			return fmt.Errorf("score %q: %w", name, err)
		}
		out[name] = score
	}
	*s = out
	return nil
}

func parseScore(v json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return int(math.Round(f)), nil
	}
	var str string
	if err := json.Unmarshal(v, &str); err != nil {
		return 0, fmt.Errorf("not a number: %s", v)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", str)
	}
	return int(math.Round(f)), nil
}
