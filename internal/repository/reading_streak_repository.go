package repository

import (
	"chapterflux_backend/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadingStreakRepository struct {
	DB *gorm.DB
}

func NewReadingStreakRepository(db *gorm.DB) *ReadingStreakRepository {
	return &ReadingStreakRepository{DB: db}
}

// FindByUserID 没有记录时返回 nil, nil
func (r *ReadingStreakRepository) FindByUserID(ctx context.Context, userID uint) (*model.ReadingStreak, error) {
	var streak model.ReadingStreak
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&streak).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

// Upsert 写入当前连续天数，best 只在 current 更大时提升
func (r *ReadingStreakRepository) Upsert(ctx context.Context, userID uint, current int, at time.Time) error {
	streak := &model.ReadingStreak{
		UserID:       userID,
		CurrentDays:  current,
		BestDays:     current,
		LastComputed: at,
	}
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"current_days":  current,
				"best_days":     gorm.Expr("CASE WHEN best_days < ? THEN ? ELSE best_days END", current, current),
				"last_computed": at,
			}),
		}).
		Create(streak).Error
}
