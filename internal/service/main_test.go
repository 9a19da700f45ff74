package service

import (
	"chapterflux_backend/internal/config"
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/pkg/database"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 2025-03-12 是周三
var testNow = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	db       *gorm.DB
	clock    *clock
	docs     *repository.DocumentRepository
	sessions *ReadingSessionService
	quizzes  *QuizResultService
	stats    *StatsService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	c := &clock{now: testNow}

	docRepo := repository.NewDocumentRepository(db)
	sessionRepo := repository.NewReadingSessionRepository(db)
	quizRepo := repository.NewQuizResultRepository(db)

	sessions := NewReadingSessionService(sessionRepo, docRepo)
	sessions.Now = c.Now

	achievements := NewAchievementService(repository.NewAchievementRepository(db))
	achievements.Now = c.Now

	stats := NewStatsService(
		sessionRepo,
		docRepo,
		quizRepo,
		repository.NewReadingStreakRepository(db),
		achievements,
		config.StatsConfig{Timezone: "UTC"},
	)
	stats.Now = c.Now

	return &testEnv{
		db:       db,
		clock:    c,
		docs:     docRepo,
		sessions: sessions,
		quizzes:  NewQuizResultService(quizRepo),
		stats:    stats,
	}
}

// addDocument 直接写入文档，updatedAt 决定它落在哪一天
func (e *testEnv) addDocument(t *testing.T, userID uint, progress float64, updatedAt time.Time) *model.Document {
	t.Helper()
	doc := &model.Document{UserID: userID, Title: "doc", Progress: progress}
	doc.UpdatedAt = updatedAt
	if err := e.docs.Create(context.Background(), doc); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func ptr[T any](v T) *T { return &v }
