package service

import (
	"chapterflux_backend/internal/model"
	"context"
	"reflect"
	"testing"
	"time"
)

func TestStatsService_NewUserAllZero(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.stats.GetUserStats(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}

	if stats.DocumentsRead != 0 || stats.HoursSaved != 0 || stats.QuizScore != 0 || stats.ReadingSpeed != 0 {
		t.Errorf("headline stats not zero: %+v", stats)
	}
	if stats.Consistency != 0 || stats.WordsPerSession != 0 || stats.CompletionRate != 0 {
		t.Errorf("derived stats not zero: %+v", stats)
	}
	if stats.Totals != (model.StatsTotals{}) {
		t.Errorf("totals = %+v", stats.Totals)
	}
	if stats.WeeklyGoal != (model.WeeklyGoal{Target: 5}) {
		t.Errorf("weekly goal = %+v", stats.WeeklyGoal)
	}
	if stats.Streak.Current != 0 || stats.Streak.Best != 0 || len(stats.Streak.LastSevenDays) != 7 {
		t.Errorf("streak = %+v", stats.Streak)
	}
	if len(stats.Achievements) != len(AchievementDefinitions) {
		t.Fatalf("achievements = %d, want %d", len(stats.Achievements), len(AchievementDefinitions))
	}
	for _, a := range stats.Achievements {
		if a.Earned || a.Progress != 0 {
			t.Errorf("achievement %s = %+v", a.Type, a)
		}
	}
}

// seedReader 两篇读完的文档（一篇在本周）、一篇读了一半，一次 20 分钟 6000 字的会话，两次测验
func seedReader(t *testing.T, env *testEnv) {
	t.Helper()
	ctx := context.Background()

	env.addDocument(t, 1, 100, testNow.Add(-time.Hour))
	env.addDocument(t, 1, 50, testNow.AddDate(0, 0, -1))
	env.addDocument(t, 1, 100, testNow.AddDate(0, 0, -10))
	env.addDocument(t, 2, 100, testNow)

	s := closedSession(6000, 20)
	s.UserID = 1
	s.DocumentID = "doc-1"
	s.LastActivityAt = s.StartTime
	if err := env.db.Create(&s).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}

	for _, score := range []float64{95, 90} {
		_, err := env.quizzes.Record(ctx, 1, RecordQuizRequest{
			DocumentID:       "doc-1",
			Score:            ptr(score),
			TotalQuestions:   10,
			CorrectQuestions: 9,
		})
		if err != nil {
			t.Fatalf("record quiz: %v", err)
		}
	}
}

func TestStatsService_GetUserStats(t *testing.T) {
	env := newTestEnv(t)
	seedReader(t, env)

	stats, err := env.stats.GetUserStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}

	checks := []struct {
		name      string
		got, want interface{}
	}{
		{"documentsRead", stats.DocumentsRead, 2},
		{"readingSpeed", stats.ReadingSpeed, 300},
		{"hoursSaved", stats.HoursSaved, 0.3},
		{"quizScore", stats.QuizScore, 93},
		{"completionRate", stats.CompletionRate, 67},
		{"wordsPerSession", stats.WordsPerSession, 6000},
		{"consistency", stats.Consistency, 29},
		{"weeklyGoal", stats.WeeklyGoal, model.WeeklyGoal{Current: 1, Target: 5, Percentage: 20}},
		{"streak.current", stats.Streak.Current, 2},
		{"streak.best", stats.Streak.Best, 2},
		{"totals", stats.Totals, model.StatsTotals{
			Documents:          3,
			CompletedDocuments: 2,
			Sessions:           1,
			QuizAttempts:       2,
			WordsRead:          6000,
			ReadingMinutes:     20,
		}},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}

	earned := map[model.AchievementType]bool{}
	for _, a := range stats.Achievements {
		earned[a.Type] = a.Earned
		if a.Earned && (a.UnlockedAt == nil || !a.UnlockedAt.Equal(testNow)) {
			t.Errorf("%s unlocked at %v, want %v", a.Type, a.UnlockedAt, testNow)
		}
		if a.Type == model.Consistency && a.Progress != 29 {
			t.Errorf("consistency progress = %d, want 29", a.Progress)
		}
	}
	want := map[model.AchievementType]bool{
		model.SpeedReader: true,
		model.QuizMaster:  true,
		model.Consistency: false,
		model.Explorer:    false,
		model.Enthusiast:  false,
		model.TimeSaver:   false,
	}
	if !reflect.DeepEqual(earned, want) {
		t.Errorf("earned = %v, want %v", earned, want)
	}
}

func TestStatsService_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	seedReader(t, env)
	ctx := context.Background()

	first, err := env.stats.GetUserStats(ctx, 1)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	env.clock.Advance(time.Minute)
	second, err := env.stats.GetUserStats(ctx, 1)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	if !reflect.DeepEqual(first.Achievements, second.Achievements) {
		t.Errorf("achievements changed between calls:\n%+v\n%+v", first.Achievements, second.Achievements)
	}
	first.Achievements, second.Achievements = nil, nil
	if !reflect.DeepEqual(first, second) {
		t.Errorf("stats changed between calls:\n%+v\n%+v", first, second)
	}

	var count int64
	env.db.Model(&model.Achievement{}).Where("user_id = ?", 1).Count(&count)
	if count != 2 {
		t.Errorf("achievement rows = %d, want 2", count)
	}
}

func TestStatsService_BestStreakNeverDecreases(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for d := 0; d < 4; d++ {
		env.addDocument(t, 1, 20, testNow.AddDate(0, 0, -d))
	}

	stats, err := env.stats.GetUserStats(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.Streak.Current != 4 || stats.Streak.Best != 4 {
		t.Fatalf("streak = %+v, want 4/4", stats.Streak)
	}

	env.clock.Advance(3 * 24 * time.Hour)
	stats, err = env.stats.GetUserStats(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.Streak.Current != 0 || stats.Streak.Best != 4 {
		t.Errorf("streak after gap = %+v, want 0/4", stats.Streak)
	}

	env.addDocument(t, 1, 20, env.clock.now)
	stats, _ = env.stats.GetUserStats(ctx, 1)
	if stats.Streak.Current != 1 || stats.Streak.Best != 4 {
		t.Errorf("streak after restart = %+v, want 1/4", stats.Streak)
	}
}

func TestStatsService_AchievementsAreNotRevoked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	s := closedSession(3000, 10)
	s.UserID = 1
	s.DocumentID = "doc-1"
	s.LastActivityAt = s.StartTime
	env.db.Create(&s)

	stats, _ := env.stats.GetUserStats(ctx, 1)
	if !stats.Achievements[0].Earned {
		t.Fatalf("speed reader not earned: %+v", stats.Achievements[0])
	}

	// 一次很慢的会话把平均速度拉到 200 以下
	slow := closedSession(100, 60)
	slow.UserID = 1
	slow.DocumentID = "doc-1"
	slow.LastActivityAt = slow.StartTime
	env.db.Create(&slow)

	stats, err := env.stats.GetUserStats(ctx, 1)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.ReadingSpeed >= 200 {
		t.Fatalf("reading speed = %d, expected below 200", stats.ReadingSpeed)
	}
	if a := stats.Achievements[0]; a.Type != model.SpeedReader || !a.Earned {
		t.Errorf("speed reader revoked: %+v", a)
	}
}

func TestWeeklyGoal(t *testing.T) {
	var docs []model.Document
	for i := 0; i < 7; i++ {
		d := model.Document{Progress: 100}
		d.UpdatedAt = testNow.Add(-time.Duration(i) * time.Hour)
		docs = append(docs, d)
	}

	got := weeklyGoal(docs, testNow, 5)
	if got != (model.WeeklyGoal{Current: 7, Target: 5, Percentage: 100}) {
		t.Errorf("weeklyGoal = %+v", got)
	}

	got = weeklyGoal(docs[:1], testNow.AddDate(0, 0, 5), 5)
	if got.Current != 0 {
		t.Errorf("next week current = %d, want 0", got.Current)
	}

	partial := model.Document{Progress: 60}
	partial.UpdatedAt = testNow
	got = weeklyGoal([]model.Document{docs[0], partial}, testNow, 5)
	if got != (model.WeeklyGoal{Current: 1, Target: 5, Percentage: 20}) {
		t.Errorf("unfinished document counted: %+v", got)
	}
}
