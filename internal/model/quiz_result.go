package model

import (
	"gorm.io/datatypes"
)

// QuizAnswer 单题作答记录
type QuizAnswer struct {
	QuestionID string `json:"questionId"`
	Selected   int    `json:"selected"`
	Correct    bool   `json:"correct"`
}

// QuizResult 存储用户的测验结果，Score 为百分制
type QuizResult struct {
	UUIDBase
	UserID           uint                             `gorm:"index;not null" json:"userId"`
	DocumentID       string                           `gorm:"type:varchar(36);index" json:"documentId"`
	Score            float64                          `gorm:"not null" json:"score"`
	TimeSpent        int                              `gorm:"default:0" json:"timeSpent"`
	TotalQuestions   int                              `gorm:"not null" json:"totalQuestions"`
	CorrectQuestions int                              `gorm:"not null" json:"correctQuestions"`
	Answers          datatypes.JSONType[[]QuizAnswer] `json:"answers"`
}

func (QuizResult) TableName() string {
	return "quiz_results"
}
