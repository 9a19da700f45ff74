package model

import "time"

// ReadingStreak 持久化的连续阅读天数，BestDays 只增不减
type ReadingStreak struct {
	BaseModel
	UserID       uint      `gorm:"uniqueIndex;not null" json:"userId"`
	CurrentDays  int       `gorm:"default:0" json:"currentDays"`
	BestDays     int       `gorm:"default:0" json:"bestDays"`
	LastComputed time.Time `json:"lastComputed"`
}

func (ReadingStreak) TableName() string {
	return "reading_streaks"
}
