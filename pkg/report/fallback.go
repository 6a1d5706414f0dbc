package report

import (
	"fmt"

	"github.com/Protocol-Lattice/growth-report/pkg/prompt"
)

const (
	// NeutralScore fills every metric of a fallback report.
	NeutralScore = 50
	// SystemErrorTakeaway is the only key takeaway of a fallback report.
	SystemErrorTakeaway = "System Error"
)

func neutralScores(v prompt.Variant) Scores {
	metrics := prompt.Metrics(v)
	scores := make(Scores, len(metrics))
	for _, m := range metrics {
		scores[m] = NeutralScore
	}
	return scores
}

func describe(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Fallback is the fixed-shape report returned when generation fails.
func Fallback(subjectName string, err error) Result {
	return Result{
		UserName:        subjectName,
		SummaryIntro:    "Error generating report.",
		Personality:     Narrative(fmt.Sprintf("AI Report Generation Failed. Error: %s", describe(err))),
		LearningAdvice:  "Please check API Key, network connection, or Agent Prompt.",
		HobbiesAnalysis: "No analysis result.",
		Scores:          neutralScores(prompt.GrowthReport),
		KeyTakeaways:    []string{SystemErrorTakeaway},
		Err:             err,
	}
}

// CareerFallback is the fixed-shape career plan returned when generation fails.
func CareerFallback(subjectName string, err error) CareerPlan {
	return CareerPlan{
		UserName:        subjectName,
		Personality:     Narrative(fmt.Sprintf("AI 报告生成失败。错误：%s", describe(err))),
		CareerAdvice:    "请检查 API Key、模型权限或网络连接。",
		HobbiesAnalysis: "无分析结果。",
		Scores:          neutralScores(prompt.CareerPlan),
		Error:           describe(err),
		Note:            "请检查 API Key、模型权限或网络连接。",
		Err:             err,
	}
}
