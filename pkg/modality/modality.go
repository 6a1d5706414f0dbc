// Package modality holds the audio and image analysers that feed extra context into a report.
// Real speech recognition and image understanding are not wired in yet; the no-op
// analysers always report an absent result.
package modality

import (
	"context"
	"strings"

	"github.com/apex/log"
)

// Analysis is the optional text produced by an analyser.
type Analysis struct {
	text string
}

// Present wraps analysis text. Blank text is treated as absent.
func Present(text string) Analysis {
	return Analysis{text: strings.TrimSpace(text)}
}

// Absent is the "no result" variant.
func Absent() Analysis {
	return Analysis{}
}

// Text returns the analysis text and whether it is present.
func (a Analysis) Text() (string, bool) {
	return a.text, a.text != ""
}

// Transcriber turns an audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (Analysis, error)
}

// Describer turns an image file into a scene/emotion description.
type Describer interface {
	Describe(ctx context.Context, path string) (Analysis, error)
}

type NoopTranscriber struct{}

func (NoopTranscriber) Transcribe(context.Context, string) (Analysis, error) {
	return Absent(), nil
}

type NoopDescriber struct{}

func (NoopDescriber) Describe(context.Context, string) (Analysis, error) {
	return Absent(), nil
}

// Static returns the same text for every input. It stands in for a real analyser when
// the transcript or description is already known.
type Static string

func (s Static) Transcribe(context.Context, string) (Analysis, error) {
	return Present(string(s)), nil
}

func (s Static) Describe(context.Context, string) (Analysis, error) {
	return Present(string(s)), nil
}

var (
	_ Transcriber = NoopTranscriber{}
	_ Describer   = NoopDescriber{}
	_ Transcriber = Static("")
	_ Describer   = Static("")
)

// Gather runs both analysers and returns their results in argument order, audio first.
// Empty paths, nil analysers and analyser errors all yield Absent; errors are logged.
func Gather(ctx context.Context, t Transcriber, d Describer, audioPath, imagePath string) (audio, image Analysis) {
	audio, image = Absent(), Absent()

	if d != nil && imagePath != "" {
		a, err := d.Describe(ctx, imagePath)
		if err != nil {
			log.WithField("path", imagePath).WithError(err).Error("image analysis failed")
		} else {
			image = a
		}
	}
	if t != nil && audioPath != "" {
		a, err := t.Transcribe(ctx, audioPath)
		if err != nil {
			log.WithField("path", audioPath).WithError(err).Error("audio transcription failed")
		} else {
			audio = a
		}
	}
	return audio, image
}
