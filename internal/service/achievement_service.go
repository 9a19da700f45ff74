package service

import (
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/pkg/logger"
	"chapterflux_backend/pkg/monitoring"
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// AchievementInput 成就判定需要的指标
type AchievementInput struct {
	ReadingSpeed       int
	QuizAverage        int
	CurrentStreak      int
	CompletedDocuments int
	QuizAttempts       int
	HoursSaved         float64
}

// AchievementDefinition 固定的成就定义
type AchievementDefinition struct {
	Type        model.AchievementType
	Title       string
	Description string
	Target      float64
	Value       func(in AchievementInput) float64
}

var AchievementDefinitions = []AchievementDefinition{
	{
		Type:        model.SpeedReader,
		Title:       "Speed Reader",
		Description: "Read at 200 words per minute or faster",
		Target:      200,
		Value:       func(in AchievementInput) float64 { return float64(in.ReadingSpeed) },
	},
	{
		Type:        model.QuizMaster,
		Title:       "Quiz Master",
		Description: "Keep an average quiz score of 90% or higher",
		Target:      90,
		Value:       func(in AchievementInput) float64 { return float64(in.QuizAverage) },
	},
	{
		Type:        model.Consistency,
		Title:       "Consistency",
		Description: "Read on 7 consecutive days",
		Target:      7,
		Value:       func(in AchievementInput) float64 { return float64(in.CurrentStreak) },
	},
	{
		Type:        model.Explorer,
		Title:       "Explorer",
		Description: "Finish 10 documents",
		Target:      10,
		Value:       func(in AchievementInput) float64 { return float64(in.CompletedDocuments) },
	},
	{
		Type:        model.Enthusiast,
		Title:       "Enthusiast",
		Description: "Take 25 quizzes",
		Target:      25,
		Value:       func(in AchievementInput) float64 { return float64(in.QuizAttempts) },
	},
	{
		Type:        model.TimeSaver,
		Title:       "Time Saver",
		Description: "Save 10 hours compared to an average reader",
		Target:      10,
		Value:       func(in AchievementInput) float64 { return math.Round(in.HoursSaved) },
	},
}

type AchievementService struct {
	AchievementRepo *repository.AchievementRepository
	Now             func() time.Time
}

func NewAchievementService(achievementRepo *repository.AchievementRepository) *AchievementService {
	return &AchievementService{
		AchievementRepo: achievementRepo,
		Now:             time.Now,
	}
}

func (s *AchievementService) GetUserAchievements(ctx context.Context, userID uint) ([]model.Achievement, error) {
	return s.AchievementRepo.FindByUserID(ctx, userID)
}

// Evaluate 对照全部成就定义，达到目标且尚未获得的成就写入一次；已获得的成就不会被撤销。
// existing 为调用方已经读取的成就记录。
func (s *AchievementService) Evaluate(ctx context.Context, userID uint, in AchievementInput, existing []model.Achievement) ([]model.AchievementProgress, error) {
	earned := make(map[model.AchievementType]model.Achievement, len(existing))
	for _, a := range existing {
		earned[a.Type] = a
	}

	reload := false
	for _, def := range AchievementDefinitions {
		if _, ok := earned[def.Type]; ok {
			continue
		}
		if def.Value(in) < def.Target {
			continue
		}

		a := model.Achievement{
			UserID:     userID,
			Type:       def.Type,
			UnlockedAt: s.Now().Truncate(time.Second),
		}
		created, err := s.AchievementRepo.CreateIfAbsent(ctx, &a)
		if err != nil {
			return nil, fmt.Errorf("unlock achievement %s: %w", def.Type, err)
		}
		if !created {
			// 并发请求已经写入
			reload = true
			continue
		}

		earned[def.Type] = a
		monitoring.AchievementsUnlocked.WithLabelValues(string(def.Type)).Inc()
		logger.Log.Info("Achievement unlocked",
			zap.Uint("userId", userID),
			zap.String("type", string(def.Type)),
		)
	}

	if reload {
		all, err := s.AchievementRepo.FindByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		for _, a := range all {
			earned[a.Type] = a
		}
	}

	result := make([]model.AchievementProgress, 0, len(AchievementDefinitions))
	for _, def := range AchievementDefinitions {
		current := def.Value(in)
		p := model.AchievementProgress{
			Type:        def.Type,
			Title:       def.Title,
			Description: def.Description,
			Current:     current,
			Target:      def.Target,
			Progress:    progressPercent(current, def.Target),
		}
		if a, ok := earned[def.Type]; ok {
			unlockedAt := a.UnlockedAt
			p.Earned = true
			p.UnlockedAt = &unlockedAt
		}
		result = append(result, p)
	}

	return result, nil
}

// progressPercent min(100, current/target*100)
func progressPercent(current, target float64) int {
	if target <= 0 {
		return 0
	}
	return int(math.Min(100, math.Round(current/target*100)))
}
