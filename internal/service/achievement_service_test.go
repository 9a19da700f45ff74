package service

import (
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"context"
	"testing"
	"time"
)

func TestAchievementService_Evaluate(t *testing.T) {
	db := newTestDB(t)
	svc := NewAchievementService(repository.NewAchievementRepository(db))
	svc.Now = func() time.Time { return testNow.Add(500 * time.Millisecond) }
	ctx := context.Background()

	in := AchievementInput{
		ReadingSpeed:       250,
		QuizAverage:        45,
		CurrentStreak:      7,
		CompletedDocuments: 3,
		QuizAttempts:       30,
		HoursSaved:         9.6,
	}

	got, err := svc.Evaluate(ctx, 1, in, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	want := map[model.AchievementType]struct {
		earned   bool
		progress int
	}{
		model.SpeedReader: {true, 100},
		model.QuizMaster:  {false, 50},
		model.Consistency: {true, 100},
		model.Explorer:    {false, 30},
		model.Enthusiast:  {true, 100},
		model.TimeSaver:   {true, 100},
	}
	for _, a := range got {
		w := want[a.Type]
		if a.Earned != w.earned || a.Progress != w.progress {
			t.Errorf("%s = earned %v progress %d, want %v %d", a.Type, a.Earned, a.Progress, w.earned, w.progress)
		}
		if a.Earned && !a.UnlockedAt.Equal(testNow) {
			t.Errorf("%s unlocked at %v, want truncated %v", a.Type, a.UnlockedAt, testNow)
		}
	}

	existing, _ := svc.GetUserAchievements(ctx, 1)
	if len(existing) != 4 {
		t.Fatalf("stored achievements = %d, want 4", len(existing))
	}

	// 指标回落后再次判定：已获得的成就保留
	again, err := svc.Evaluate(ctx, 1, AchievementInput{}, existing)
	if err != nil {
		t.Fatalf("Evaluate again: %v", err)
	}
	for _, a := range again {
		if a.Earned != want[a.Type].earned {
			t.Errorf("%s earned = %v after metrics dropped", a.Type, a.Earned)
		}
	}
}

func TestAchievementService_EvaluateWithStaleExisting(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAchievementRepository(db)
	svc := NewAchievementService(repo)
	svc.Now = func() time.Time { return testNow }
	ctx := context.Background()

	// 另一个请求已经写入
	earlier := testNow.Add(-time.Hour)
	repo.CreateIfAbsent(ctx, &model.Achievement{UserID: 1, Type: model.SpeedReader, UnlockedAt: earlier})

	got, err := svc.Evaluate(ctx, 1, AchievementInput{ReadingSpeed: 300}, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !got[0].Earned || !got[0].UnlockedAt.Equal(earlier) {
		t.Errorf("speed reader = %+v, want the earlier record", got[0])
	}

	all, _ := repo.FindByUserID(ctx, 1)
	if len(all) != 1 {
		t.Errorf("stored achievements = %d, want 1", len(all))
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		current, target float64
		want            int
	}{
		{0, 10, 0},
		{3, 7, 43},
		{7, 7, 100},
		{500, 200, 100},
		{1, 0, 0},
	}
	for _, tt := range tests {
		if got := progressPercent(tt.current, tt.target); got != tt.want {
			t.Errorf("progressPercent(%v, %v) = %d, want %d", tt.current, tt.target, got, tt.want)
		}
	}
}
