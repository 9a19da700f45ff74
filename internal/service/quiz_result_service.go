package service

import (
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"context"
	"fmt"

	"gorm.io/datatypes"
)

// RecordQuizRequest 测验结果由外部生成测验后回传
// swagger:model RecordQuizRequest
type RecordQuizRequest struct {
	DocumentID       string             `json:"documentId" binding:"required,max=36"`
	Score            *float64           `json:"score" binding:"required,min=0,max=100"`
	TimeSpent        int                `json:"timeSpent" binding:"min=0"`
	TotalQuestions   int                `json:"totalQuestions" binding:"required,min=1"`
	CorrectQuestions int                `json:"correctQuestions" binding:"min=0,ltefield=TotalQuestions"`
	Answers          []model.QuizAnswer `json:"answers"`
}

type QuizResultService struct {
	QuizRepo *repository.QuizResultRepository
}

func NewQuizResultService(quizRepo *repository.QuizResultRepository) *QuizResultService {
	return &QuizResultService{QuizRepo: quizRepo}
}

func (s *QuizResultService) Record(ctx context.Context, userID uint, req RecordQuizRequest) (*model.QuizResult, error) {
	answers := req.Answers
	if answers == nil {
		answers = []model.QuizAnswer{}
	}

	result := &model.QuizResult{
		UserID:           userID,
		DocumentID:       req.DocumentID,
		Score:            *req.Score,
		TimeSpent:        req.TimeSpent,
		TotalQuestions:   req.TotalQuestions,
		CorrectQuestions: req.CorrectQuestions,
		Answers:          datatypes.NewJSONType(answers),
	}
	if err := s.QuizRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("record quiz result: %w", err)
	}
	return result, nil
}

func (s *QuizResultService) List(ctx context.Context, userID uint) ([]model.QuizResult, error) {
	return s.QuizRepo.FindByUserID(ctx, userID)
}
