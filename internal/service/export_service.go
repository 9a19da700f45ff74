package service

import (
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/internal/util"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StatsExport 导出快照
type StatsExport struct {
	UserID      uint        `json:"userId"`
	GeneratedAt time.Time   `json:"generatedAt"`
	Stats       interface{} `json:"stats"`
}

// ExportTicket 返回给客户端的下载凭证
type ExportTicket struct {
	Token       string    `json:"token"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

type ExportService struct {
	Stats *StatsService
	Store repository.ExportTokenStore
	TTL   time.Duration
	Now   func() time.Time
}

func NewExportService(stats *StatsService, store repository.ExportTokenStore, ttl time.Duration) *ExportService {
	return &ExportService{
		Stats: stats,
		Store: store,
		TTL:   ttl,
		Now:   time.Now,
	}
}

// CreateStatsExport 计算统计并保存快照，返回一次性下载令牌
func (s *ExportService) CreateStatsExport(ctx context.Context, userID uint) (*ExportTicket, error) {
	stats, err := s.Stats.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	payload, err := json.Marshal(StatsExport{
		UserID:      userID,
		GeneratedAt: now,
		Stats:       stats,
	})
	if err != nil {
		return nil, err
	}

	token, err := newExportToken()
	if err != nil {
		return nil, err
	}
	if err := s.Store.Put(ctx, token, payload, s.TTL); err != nil {
		return nil, fmt.Errorf("save export token: %w", err)
	}

	return &ExportTicket{
		Token:       token,
		DownloadURL: "/api/exports/" + token,
		ExpiresAt:   now.Add(s.TTL),
	}, nil
}

// Download 取出快照，令牌只能使用一次
func (s *ExportService) Download(ctx context.Context, token string) ([]byte, error) {
	data, err := s.Store.Take(ctx, token)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, util.ErrExportNotFound
	}
	return data, err
}

func newExportToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
