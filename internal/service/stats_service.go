package service

import (
	"chapterflux_backend/internal/config"
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/pkg/monitoring"
	"chapterflux_backend/pkg/tracing"
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

// StatsService 汇总阅读会话、文档、测验和成就，生成仪表盘统计
type StatsService struct {
	SessionRepo  *repository.ReadingSessionRepository
	DocumentRepo *repository.DocumentRepository
	QuizRepo     *repository.QuizResultRepository
	StreakRepo   *repository.ReadingStreakRepository
	Achievements *AchievementService
	Now          func() time.Time

	mu       sync.RWMutex
	settings config.StatsConfig
	location *time.Location
}

func NewStatsService(
	sessionRepo *repository.ReadingSessionRepository,
	documentRepo *repository.DocumentRepository,
	quizRepo *repository.QuizResultRepository,
	streakRepo *repository.ReadingStreakRepository,
	achievements *AchievementService,
	settings config.StatsConfig,
) *StatsService {
	s := &StatsService{
		SessionRepo:  sessionRepo,
		DocumentRepo: documentRepo,
		QuizRepo:     quizRepo,
		StreakRepo:   streakRepo,
		Achievements: achievements,
		Now:          time.Now,
	}
	s.UpdateSettings(settings)
	return s
}

// UpdateSettings 配置热更新时调用
func (s *StatsService) UpdateSettings(settings config.StatsConfig) {
	if settings.BaselineWPM <= 0 {
		settings.BaselineWPM = config.DefaultBaselineWPM
	}
	if settings.WeeklyGoal <= 0 {
		settings.WeeklyGoal = config.DefaultWeeklyGoal
	}
	if settings.StreakWindowDays <= 0 {
		settings.StreakWindowDays = config.DefaultStreakWindowDays
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.location = settings.Location()
}

func (s *StatsService) currentSettings() (config.StatsConfig, *time.Location) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, s.location
}

type statsSources struct {
	sessions     []model.ReadingSession
	documents    []model.Document
	quizzes      []model.QuizResult
	achievements []model.Achievement
	streak       *model.ReadingStreak
}

// loadSources 并行读取统计所需的全部数据，任一失败则整体失败
func (s *StatsService) loadSources(ctx context.Context, userID uint) (*statsSources, error) {
	src := &statsSources{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		src.sessions, err = s.SessionRepo.FindByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		src.documents, err = s.DocumentRepo.FindByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		src.quizzes, err = s.QuizRepo.FindByUserID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		src.achievements, err = s.Achievements.GetUserAchievements(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		src.streak, err = s.StreakRepo.FindByUserID(gctx, userID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return src, nil
}

// GetUserStats 计算用户统计，新用户返回全 0 结果
func (s *StatsService) GetUserStats(ctx context.Context, userID uint) (*model.DerivedStats, error) {
	started := time.Now()
	defer func() {
		monitoring.StatsDuration.Observe(time.Since(started).Seconds())
	}()

	ctx, span := tracing.StartSpan(ctx, "StatsService.GetUserStats")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", int64(userID)))

	settings, loc := s.currentSettings()
	now := s.Now().In(loc)

	src, err := s.loadSources(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load stats sources: %w", err)
	}

	metrics := AggregateProgress(src.sessions, src.documents, src.quizzes, settings.BaselineWPM)
	streak := CalculateStreak(src.documents, now, settings.StreakWindowDays)

	best := streak.Current
	if src.streak != nil && src.streak.BestDays > best {
		best = src.streak.BestDays
	}
	if src.streak == nil || src.streak.CurrentDays != streak.Current {
		if err := s.StreakRepo.Upsert(ctx, userID, streak.Current, now); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("save reading streak: %w", err)
		}
	}

	achievements, err := s.Achievements.Evaluate(ctx, userID, AchievementInput{
		ReadingSpeed:       metrics.ReadingSpeed,
		QuizAverage:        metrics.QuizAverage,
		CurrentStreak:      streak.Current,
		CompletedDocuments: metrics.CompletedDocuments,
		QuizAttempts:       metrics.QuizAttempts,
		HoursSaved:         metrics.HoursSaved,
	}, src.achievements)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	activeDays := 0
	for _, d := range streak.LastSevenDays {
		if d.Completed {
			activeDays++
		}
	}

	wordsPerSession := 0
	if metrics.Sessions > 0 {
		wordsPerSession = int(math.Round(float64(metrics.TotalWords) / float64(metrics.Sessions)))
	}

	weekly := weeklyGoal(src.documents, now, settings.WeeklyGoal)

	return &model.DerivedStats{
		DocumentsRead: metrics.CompletedDocuments,
		HoursSaved:    math.Round(metrics.HoursSaved*10) / 10,
		QuizScore:     metrics.QuizAverage,
		ReadingSpeed:  metrics.ReadingSpeed,
		WeeklyGoal:    weekly,
		Streak: model.StreakStats{
			Current:       streak.Current,
			Best:          best,
			LastSevenDays: streak.LastSevenDays,
		},
		Achievements: achievements,
		Totals: model.StatsTotals{
			Documents:          metrics.TotalDocuments,
			CompletedDocuments: metrics.CompletedDocuments,
			Sessions:           metrics.Sessions,
			QuizAttempts:       metrics.QuizAttempts,
			WordsRead:          metrics.TotalWords,
			ReadingMinutes:     math.Round(metrics.TotalMinutes*10) / 10,
		},
		Consistency:     percent(activeDays, len(streak.LastSevenDays)),
		WordsPerSession: wordsPerSession,
		CompletionRate:  metrics.CompletionRate,
	}, nil
}

// weeklyGoal 本周（周一起）有更新且已读完（progress >= 100）的文档数，
// 只更新过进度但未读完的文档不计入
func weeklyGoal(docs []model.Document, now time.Time, target int) model.WeeklyGoal {
	weekStart := startOfWeek(now)
	current := 0
	for i := range docs {
		if docs[i].IsCompleted() && !docs[i].UpdatedAt.Before(weekStart) {
			current++
		}
	}

	pct := percent(current, target)
	if pct > 100 {
		pct = 100
	}
	return model.WeeklyGoal{
		Current:    current,
		Target:     target,
		Percentage: pct,
	}
}
