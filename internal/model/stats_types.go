package model

import "time"

// DailyActivity 近 7 天活动向量中的一天
type DailyActivity struct {
	Day       string `json:"day"`  // Mon, Tue ...
	Date      string `json:"date"` // 2006-01-02
	Completed bool   `json:"completed"`
	Count     int    `json:"count"`
}

// StreakStats 连续阅读统计
type StreakStats struct {
	Current       int             `json:"current"`
	Best          int             `json:"best"`
	LastSevenDays []DailyActivity `json:"lastSevenDays"`
}

// WeeklyGoal 每周阅读目标
type WeeklyGoal struct {
	Current    int `json:"current"`
	Target     int `json:"target"`
	Percentage int `json:"percentage"`
}

// AchievementProgress 成就展示信息
type AchievementProgress struct {
	Type        AchievementType `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Earned      bool            `json:"earned"`
	UnlockedAt  *time.Time      `json:"unlockedAt,omitempty"`
	Current     float64         `json:"current"`
	Target      float64         `json:"target"`
	Progress    int             `json:"progress"`
}

// StatsTotals 汇总计数
type StatsTotals struct {
	Documents          int     `json:"documents"`
	CompletedDocuments int     `json:"completedDocuments"`
	Sessions           int     `json:"sessions"`
	QuizAttempts       int     `json:"quizAttempts"`
	WordsRead          int     `json:"wordsRead"`
	ReadingMinutes     float64 `json:"readingMinutes"`
}

// DerivedStats 仪表盘统计视图，不落库
type DerivedStats struct {
	DocumentsRead   int                   `json:"documentsRead"`
	HoursSaved      float64               `json:"hoursSaved"`
	QuizScore       int                   `json:"quizScore"`
	ReadingSpeed    int                   `json:"readingSpeed"`
	WeeklyGoal      WeeklyGoal            `json:"weeklyGoal"`
	Streak          StreakStats           `json:"streak"`
	Achievements    []AchievementProgress `json:"achievements"`
	Totals          StatsTotals           `json:"totals"`
	Consistency     int                   `json:"consistency"`
	WordsPerSession int                   `json:"wordsPerSession"`
	CompletionRate  int                   `json:"completionRate"`
}
