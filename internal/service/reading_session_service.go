package service

import (
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/internal/util"
	"chapterflux_backend/pkg/logger"
	"chapterflux_backend/pkg/monitoring"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ActionStart  = "start"
	ActionUpdate = "update"
	ActionEnd    = "end"
)

// TrackReadingRequest 阅读会话上报
// swagger:model TrackReadingRequest
type TrackReadingRequest struct {
	DocumentID string   `json:"documentId" binding:"required,max=36"`
	ChapterID  *string  `json:"chapterId" binding:"omitempty,max=64"`
	Action     string   `json:"action" binding:"required,oneof=start update end"`
	Progress   *float64 `json:"progress" binding:"omitempty,min=0,max=100"`
	WordsRead  *int     `json:"wordsRead" binding:"omitempty,min=0"`
	TimeSpent  *int     `json:"timeSpent" binding:"omitempty,min=0"`
}

// TrackReadingResult start 返回新会话 ID；update/end 找不到未结束会话时 Applied 为 false
type TrackReadingResult struct {
	SessionID string
	Applied   bool
}

type ReadingSessionService struct {
	SessionRepo  *repository.ReadingSessionRepository
	DocumentRepo *repository.DocumentRepository
	Now          func() time.Time
}

func NewReadingSessionService(sessionRepo *repository.ReadingSessionRepository, documentRepo *repository.DocumentRepository) *ReadingSessionService {
	return &ReadingSessionService{
		SessionRepo:  sessionRepo,
		DocumentRepo: documentRepo,
		Now:          time.Now,
	}
}

// Track 按 action 分发
func (s *ReadingSessionService) Track(ctx context.Context, userID uint, req TrackReadingRequest) (*TrackReadingResult, error) {
	if err := validateTrack(req); err != nil {
		return nil, err
	}

	var (
		result = &TrackReadingResult{}
		err    error
	)
	switch req.Action {
	case ActionStart:
		result.SessionID, err = s.Start(ctx, userID, req.DocumentID, req.ChapterID, req.Progress)
		result.Applied = err == nil
	case ActionUpdate:
		result.Applied, err = s.Update(ctx, userID, req.DocumentID, req.WordsRead, req.Progress, req.TimeSpent)
	case ActionEnd:
		result.Applied, err = s.End(ctx, userID, req.DocumentID, req.WordsRead, req.Progress, req.TimeSpent)
	}

	outcome := "applied"
	switch {
	case err != nil:
		outcome = "error"
	case !result.Applied:
		outcome = "noop"
	}
	monitoring.ReadingSessionActions.WithLabelValues(req.Action, outcome).Inc()

	if err != nil {
		return nil, err
	}
	return result, nil
}

// Start 新建会话，起始进度默认为 0
func (s *ReadingSessionService) Start(ctx context.Context, userID uint, documentID string, chapterID *string, progress *float64) (string, error) {
	now := s.Now()
	startProgress := 0.0
	if progress != nil {
		startProgress = *progress
	}

	session := &model.ReadingSession{
		UserID:         userID,
		DocumentID:     documentID,
		ChapterID:      chapterID,
		StartTime:      now,
		StartProgress:  startProgress,
		EndProgress:    startProgress,
		LastActivityAt: now,
	}

	closed, err := s.SessionRepo.Start(ctx, session)
	if err != nil {
		return "", fmt.Errorf("start reading session: %w", err)
	}
	if closed > 0 {
		logger.Log.Info("Closed stale reading sessions",
			zap.Uint("userId", userID),
			zap.String("documentId", documentID),
			zap.Int64("count", closed),
		)
	}

	return session.ID, nil
}

// Update 覆盖最近未结束会话的阅读字数和进度，未提供的字段保持原值
func (s *ReadingSessionService) Update(ctx context.Context, userID uint, documentID string, wordsRead *int, progress *float64, timeSpent *int) (bool, error) {
	now := s.Now()
	found, err := s.SessionRepo.MutateLatestOpen(ctx, userID, documentID, func(tx *gorm.DB, session *model.ReadingSession) error {
		applyReadingValues(session, wordsRead, progress, timeSpent)
		session.LastActivityAt = now
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("update reading session: %w", err)
	}
	if !found {
		logger.Log.Debug("No open reading session to update",
			zap.Uint("userId", userID),
			zap.String("documentId", documentID),
		)
	}
	return found, nil
}

// End 结束最近未结束的会话；提供了 progress 时同步回写文档进度
func (s *ReadingSessionService) End(ctx context.Context, userID uint, documentID string, wordsRead *int, progress *float64, timeSpent *int) (bool, error) {
	now := s.Now()
	found, err := s.SessionRepo.MutateLatestOpen(ctx, userID, documentID, func(tx *gorm.DB, session *model.ReadingSession) error {
		applyReadingValues(session, wordsRead, progress, timeSpent)
		session.LastActivityAt = now
		session.Close(now)

		if progress == nil {
			return nil
		}
		updated, err := s.DocumentRepo.WithTx(tx).UpdateProgress(ctx, documentID, userID, *progress, now)
		if err != nil {
			return err
		}
		if !updated {
			logger.Log.Warn("Reading session ended for unknown document",
				zap.Uint("userId", userID),
				zap.String("documentId", documentID),
			)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("end reading session: %w", err)
	}
	if !found {
		logger.Log.Debug("No open reading session to end",
			zap.Uint("userId", userID),
			zap.String("documentId", documentID),
		)
	}
	return found, nil
}

// GetRecentSessions 会话历史，最多 limit 条
func (s *ReadingSessionService) GetRecentSessions(ctx context.Context, userID uint, documentID string, limit int) ([]model.ReadingSession, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.SessionRepo.FindRecent(ctx, userID, documentID, limit)
}

func applyReadingValues(session *model.ReadingSession, wordsRead *int, progress *float64, timeSpent *int) {
	if wordsRead != nil {
		session.WordsRead = *wordsRead
	}
	if progress != nil {
		session.EndProgress = *progress
	}
	if timeSpent != nil {
		session.TimeSpent = *timeSpent
	}
}

// validateTrack 与绑定校验一致，供不经过 HTTP 的调用方使用
func validateTrack(req TrackReadingRequest) error {
	switch req.Action {
	case ActionStart, ActionUpdate, ActionEnd:
	default:
		return util.ErrInvalidAction
	}
	if req.DocumentID == "" {
		return util.ErrDocumentIDRequired
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		return util.ErrProgressOutOfRange
	}
	if (req.WordsRead != nil && *req.WordsRead < 0) || (req.TimeSpent != nil && *req.TimeSpent < 0) {
		return util.ErrNegativeCounter
	}
	return nil
}
