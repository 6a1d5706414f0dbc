// Package report turns a multimodal request into a structured report by prompting a
// chat-completion model in JSON mode. Generation never fails from the caller's point of
// view: any error yields a fixed-shape fallback report.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/apex/log"

	"github.com/Protocol-Lattice/growth-report/pkg/datauri"
	"github.com/Protocol-Lattice/growth-report/pkg/models"
	"github.com/Protocol-Lattice/growth-report/pkg/prompt"
)

// Agent generates reports. It is safe for concurrent use when its model is.
type Agent struct {
	model  models.Agent
	logger log.Interface
}

type Option func(*Agent)

// WithLogger replaces the default apex/log logger.
func WithLogger(l log.Interface) Option {
	return func(a *Agent) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Agent backed by model. The model is constructed once by the caller and
// reused for every request.
func New(model models.Agent, opts ...Option) *Agent {
	a := &Agent{model: model, logger: log.Log}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generate produces the canonical growth report. imageDataURI may be empty; when set it
// is attached to the request as an image part.
func (a *Agent) Generate(ctx context.Context, req Request, imageDataURI string) Result {
	var res Result
	if err := a.run(ctx, prompt.GrowthReport, req, imageDataURI, &res); err != nil {
		a.logFailure(prompt.GrowthReport, req, err)
		return Fallback(req.SubjectName, err)
	}
	return res
}

// GenerateCareerPlan produces the historical career-planning report.
func (a *Agent) GenerateCareerPlan(ctx context.Context, req Request, imageDataURI string) CareerPlan {
	var plan CareerPlan
	if err := a.run(ctx, prompt.CareerPlan, req, imageDataURI, &plan); err != nil {
		a.logFailure(prompt.CareerPlan, req, err)
		return CareerFallback(req.SubjectName, err)
	}
	return plan
}

func (a *Agent) run(ctx context.Context, v prompt.Variant, req Request, imageDataURI string, out any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{value: r}
		}
	}()

	if a.model == nil {
		return errNoModel
	}

	text, err := prompt.Build(v, req.promptInput())
	if err != nil {
		return &InputError{Err: err}
	}

	var reply string
	if imageDataURI != "" {
		mediaType, data, err := datauri.Decode(imageDataURI)
		if err != nil {
			return &InputError{Err: err}
		}
		files := []models.File{{Name: "image", MIME: mediaType, Data: data}}
		reply, err = a.model.GenerateWithFiles(ctx, text, files)
		if err != nil {
			return err
		}
	} else {
		reply, err = a.model.Generate(ctx, text)
		if err != nil {
			return err
		}
	}

	return decodeReply(reply, out)
}

func (a *Agent) logFailure(v prompt.Variant, req Request, err error) {
	a.logger.WithFields(log.Fields{
		"subject": req.SubjectName,
		"variant": v.String(),
		"kind":    FailureKind(err),
	}).WithError(err).Error("report generation failed, returning fallback")
}

// decodeReply parses a single JSON object, tolerating a surrounding markdown code fence.
func decodeReply(raw string, out any) error {
	body := stripCodeFence(raw)
	if !strings.HasPrefix(body, "{") {
		return &ParseError{Raw: raw, Err: errors.New("reply is not a JSON object")}
	}

	dec := json.NewDecoder(strings.NewReader(body))
	if err := dec.Decode(out); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return &ParseError{Raw: raw, Err: errors.New("unexpected data after JSON object")}
	}
	return nil
}

func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
