package repository

import (
	"chapterflux_backend/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	DB *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *DocumentRepository) WithTx(tx *gorm.DB) *DocumentRepository {
	return &DocumentRepository{DB: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) error {
	return r.DB.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) FindByIDAndUserID(ctx context.Context, id string, userID uint) (*model.Document, error) {
	var doc model.Document
	err := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByUserID 按最近更新时间倒序返回用户的全部文档
func (r *DocumentRepository) FindByUserID(ctx context.Context, userID uint) ([]model.Document, error) {
	var docs []model.Document
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateProgress 回写阅读进度并刷新 updated_at，只更新属于该用户的文档
func (r *DocumentRepository) UpdateProgress(ctx context.Context, id string, userID uint, progress float64, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&model.Document{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"progress":   progress,
			"updated_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// FindUserIDs 有文档的所有用户
func (r *DocumentRepository) FindUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&model.Document{}).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}
