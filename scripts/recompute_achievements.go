// 重新计算全部用户的连续阅读天数和成就
//
// 统计接口每次调用都会补发成就，此脚本用于调整成就阈值或批量导入历史阅读数据之后，
// 一次性为所有有阅读数据的用户补齐记录。已获得的成就不会被撤销。
//
// 用法: go run scripts/recompute_achievements.go [-days 30]

package main

import (
	"chapterflux_backend/internal/config"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/internal/service"
	"chapterflux_backend/pkg/database"
	"chapterflux_backend/pkg/logger"
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	days := flag.Int("days", 0, "只处理最近 N 天有阅读会话的用户，0 表示全部有文档的用户")
	flag.Parse()

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	sessionRepo := repository.NewReadingSessionRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	stats := service.NewStatsService(
		sessionRepo,
		documentRepo,
		repository.NewQuizResultRepository(db),
		repository.NewReadingStreakRepository(db),
		service.NewAchievementService(repository.NewAchievementRepository(db)),
		cfg.Stats,
	)

	ctx := context.Background()
	var userIDs []uint
	if *days > 0 {
		userIDs, err = sessionRepo.FindUserIDsSince(ctx, time.Now().AddDate(0, 0, -*days))
	} else {
		userIDs, err = documentRepo.FindUserIDs(ctx)
	}
	if err != nil {
		log.Fatalf("查询用户失败: %v", err)
	}

	log.Printf("开始重新计算 %d 个用户的成就...", len(userIDs))
	failed := 0
	for _, userID := range userIDs {
		if _, err := stats.GetUserStats(ctx, userID); err != nil {
			failed++
			logger.Log.Error("Failed to recompute stats", zap.Uint("userID", userID), zap.Error(err))
		}
	}
	log.Printf("完成！失败 %d 个", failed)
}
