package service

import (
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/util"
	"time"
)

// StreakResult 连续阅读计算结果
type StreakResult struct {
	Current       int
	LastSevenDays []model.DailyActivity
}

// ActivityByDay 自然日 -> 当天有更新且进度大于 0 的文档数
func ActivityByDay(docs []model.Document, loc *time.Location) map[string]int {
	days := make(map[string]int)
	for i := range docs {
		if docs[i].Progress <= 0 || docs[i].UpdatedAt.IsZero() {
			continue
		}
		days[docs[i].UpdatedAt.In(loc).Format(util.DateFormat)]++
	}
	return days
}

// CalculateStreak 从今天往回数连续有阅读活动的天数，最多回溯 windowDays 天。
// 今天还没有活动不算中断，之后遇到的第一个空白日结束计数。
func CalculateStreak(docs []model.Document, now time.Time, windowDays int) StreakResult {
	loc := now.Location()
	activity := ActivityByDay(docs, loc)
	today := startOfDay(now)

	current := 0
	for i := 0; i < windowDays; i++ {
		key := today.AddDate(0, 0, -i).Format(util.DateFormat)
		if activity[key] > 0 {
			current++
			continue
		}
		if i == 0 {
			continue
		}
		break
	}

	week := make([]model.DailyActivity, 0, 7)
	for i := 6; i >= 0; i-- {
		day := today.AddDate(0, 0, -i)
		key := day.Format(util.DateFormat)
		week = append(week, model.DailyActivity{
			Day:       day.Format("Mon"),
			Date:      key,
			Completed: activity[key] > 0,
			Count:     activity[key],
		})
	}

	return StreakResult{Current: current, LastSevenDays: week}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek 本周一零点
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
