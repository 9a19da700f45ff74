package service

import (
	"chapterflux_backend/internal/model"
	"math"
)

// ProgressMetrics 从会话、文档、测验结果汇总出的指标
type ProgressMetrics struct {
	TotalWords         int
	TotalMinutes       float64
	ReadingSpeed       int     // words per minute
	HoursSaved         float64 // 未取整
	TotalDocuments     int
	CompletedDocuments int
	CompletionRate     int
	QuizAverage        int
	QuizAttempts       int
	Sessions           int
}

// AggregateProgress 纯计算，空集合时所有指标为 0
func AggregateProgress(sessions []model.ReadingSession, docs []model.Document, quizzes []model.QuizResult, baselineWPM int) ProgressMetrics {
	m := ProgressMetrics{
		Sessions:       len(sessions),
		TotalDocuments: len(docs),
		QuizAttempts:   len(quizzes),
	}

	for i := range sessions {
		m.TotalWords += sessions[i].WordsRead
		m.TotalMinutes += sessions[i].Minutes()
	}

	if m.TotalMinutes > 0 {
		m.ReadingSpeed = int(math.Round(float64(m.TotalWords) / m.TotalMinutes))
	}

	m.HoursSaved = hoursSaved(m.TotalWords, m.TotalMinutes, baselineWPM)

	for i := range docs {
		if docs[i].IsCompleted() {
			m.CompletedDocuments++
		}
	}
	m.CompletionRate = percent(m.CompletedDocuments, m.TotalDocuments)

	if len(quizzes) > 0 {
		var sum float64
		for i := range quizzes {
			sum += quizzes[i].Score
		}
		m.QuizAverage = int(math.Round(sum / float64(len(quizzes))))
	}

	return m
}

// hoursSaved 与基准阅读速度相比节省的小时数，不会为负
func hoursSaved(words int, minutes float64, baselineWPM int) float64 {
	if baselineWPM <= 0 {
		return 0
	}
	saved := float64(words)/float64(baselineWPM) - minutes
	if saved < 0 {
		return 0
	}
	return saved / 60
}

// percent part/total*100 取整，total 为 0 时返回 0
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
