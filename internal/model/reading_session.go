package model

import (
	"math"
	"time"
)

// ReadingSession 一次文档（章节）阅读会话
// swagger:model ReadingSession
type ReadingSession struct {
	UUIDBase
	UserID         uint       `gorm:"not null;index:idx_reading_sessions_user_doc,priority:1" json:"userId"`
	DocumentID     string     `gorm:"type:varchar(36);not null;index:idx_reading_sessions_user_doc,priority:2" json:"documentId"`
	ChapterID      *string    `gorm:"size:64" json:"chapterId,omitempty"`
	StartTime      time.Time  `gorm:"not null;index" json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	StartProgress  float64    `gorm:"default:0" json:"startProgress"`
	EndProgress    float64    `gorm:"default:0" json:"endProgress"`
	WordsRead      int        `gorm:"default:0" json:"wordsRead"`
	TimeSpent      int        `gorm:"default:0" json:"timeSpent"` // 客户端上报的有效阅读秒数
	LastActivityAt time.Time  `gorm:"not null" json:"lastActivityAt"`
	IsCompleted    bool       `gorm:"default:false" json:"isCompleted"`
	TotalMinutes   float64    `gorm:"default:0" json:"totalMinutes"`
}

func (ReadingSession) TableName() string {
	return "reading_sessions"
}

// IsOpen 会话尚未结束
func (s *ReadingSession) IsOpen() bool {
	return s.EndTime == nil
}

// Close 在 at 时刻结束会话并计算总时长（分钟，保留两位小数）
func (s *ReadingSession) Close(at time.Time) {
	end := at
	if end.Before(s.StartTime) {
		end = s.StartTime
	}
	s.EndTime = &end
	s.TotalMinutes = math.Round(end.Sub(s.StartTime).Minutes()*100) / 100
	s.IsCompleted = s.EndProgress >= 100
}

// Minutes 已结束会话的时长，未结束的会话不计入
func (s *ReadingSession) Minutes() float64 {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime).Minutes()
}
