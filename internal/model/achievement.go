package model

import "time"

type AchievementType string

const (
	SpeedReader AchievementType = "speed_reader"
	QuizMaster  AchievementType = "quiz_master"
	Consistency AchievementType = "consistency"
	Explorer    AchievementType = "explorer"
	Enthusiast  AchievementType = "enthusiast"
	TimeSaver   AchievementType = "time_saver"
)

// Achievement 用户已解锁的成就，(user_id, type) 唯一
type Achievement struct {
	BaseModel
	UserID     uint            `gorm:"not null;uniqueIndex:idx_achievements_user_type,priority:1" json:"userId"`
	Type       AchievementType `gorm:"size:32;not null;uniqueIndex:idx_achievements_user_type,priority:2" json:"type"`
	UnlockedAt time.Time       `gorm:"not null" json:"unlockedAt"`
}

func (Achievement) TableName() string {
	return "achievements"
}
