package repository

import (
	"chapterflux_backend/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReadingSessionRepository struct {
	DB *gorm.DB
}

func NewReadingSessionRepository(db *gorm.DB) *ReadingSessionRepository {
	return &ReadingSessionRepository{DB: db}
}

// Start 关闭同一 (user, document) 下遗留的未结束会话后创建新会话。
// 遗留会话按最后一次活动时间结束。
func (r *ReadingSessionRepository) Start(ctx context.Context, session *model.ReadingSession) (int64, error) {
	var closed int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stale []model.ReadingSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND document_id = ? AND end_time IS NULL", session.UserID, session.DocumentID).
			Find(&stale).Error
		if err != nil {
			return err
		}

		for i := range stale {
			s := &stale[i]
			s.Close(s.LastActivityAt)
			if err := tx.Save(s).Error; err != nil {
				return err
			}
			closed++
		}

		return tx.Create(session).Error
	})
	return closed, err
}

// MutateLatestOpen 在事务中锁定 (user, document) 最近开始的未结束会话并执行 fn。
// 没有未结束会话时返回 false，fn 不会被调用。
func (r *ReadingSessionRepository) MutateLatestOpen(
	ctx context.Context,
	userID uint,
	documentID string,
	fn func(tx *gorm.DB, session *model.ReadingSession) error,
) (bool, error) {
	found := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var session model.ReadingSession
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND document_id = ? AND end_time IS NULL", userID, documentID).
			Order("start_time DESC").
			First(&session).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		if err := fn(tx, &session); err != nil {
			return err
		}
		return tx.Save(&session).Error
	})
	return found, err
}

func (r *ReadingSessionRepository) FindByUserID(ctx context.Context, userID uint) ([]model.ReadingSession, error) {
	var sessions []model.ReadingSession
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindRecent 最近的会话，documentID 为空时不过滤文档
func (r *ReadingSessionRepository) FindRecent(ctx context.Context, userID uint, documentID string, limit int) ([]model.ReadingSession, error) {
	var sessions []model.ReadingSession
	query := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if documentID != "" {
		query = query.Where("document_id = ?", documentID)
	}
	err := query.Order("start_time DESC").Limit(limit).Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// FindUserIDsSince 在 since 之后有阅读会话的用户
func (r *ReadingSessionRepository) FindUserIDsSince(ctx context.Context, since time.Time) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.ReadingSession{}).
		Where("start_time >= ?", since).
		Distinct("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}
