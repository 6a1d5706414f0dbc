// Command report-debug runs one report end to end with hardcoded sample inputs and prints
// the JSON result.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"

	"github.com/Protocol-Lattice/growth-report/pkg/config"
	"github.com/Protocol-Lattice/growth-report/pkg/datauri"
	"github.com/Protocol-Lattice/growth-report/pkg/modality"
	"github.com/Protocol-Lattice/growth-report/pkg/models"
	"github.com/Protocol-Lattice/growth-report/pkg/report"
)

const (
	testImagePath = "uploads/test_photo.jpg"
	testAudioPath = "uploads/test_audio.mp3"

	testUserName    = "王小美"
	testDescription = "我虽然是数学老师，但我发现自己对艺术和非虚构写作更感兴趣，在校期间组织过辩论社和乡村写生团。"
	testAudioText   = "（这里假装是 ASR 识别出的音频文本，例如：我在和学生交流时，声音总是很轻，但我表达的内容通常能被他们理解。）"
)

func main() {
	log.SetHandler(cli.New(os.Stdout))
	ctx := context.Background()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	llm, err := models.NewLLMProvider(ctx, cfg.ProviderConfig())
	if err != nil {
		log.Fatalf("failed to create model: %v", err)
	}

	imageURI, ok := datauri.Encode(testImagePath)
	if !ok {
		return
	}

	audioTranscript, imageAnalysis := modality.Gather(ctx,
		modality.Static(testAudioText),
		modality.NoopDescriber{},
		testAudioPath,
		testImagePath,
	)

	agent := report.New(llm)
	res := agent.Generate(ctx, report.Request{
		SubjectName:     testUserName,
		Description:     testDescription,
		ImageAnalysis:   imageAnalysis,
		AudioTranscript: audioTranscript,
	}, imageURI)

	log.WithField("provider", cfg.Provider).Info("agent finished")

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(res); err != nil {
		log.WithError(err).Error("failed to print report")
	}
}
