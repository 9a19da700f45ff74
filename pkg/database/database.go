package database

import (
	"chapterflux_backend/internal/config"
	"chapterflux_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, mode string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logLevel := logger.Warn
	if mode == "debug" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate 同步表结构，achievements 的 (user_id, type) 唯一索引在这里建立
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.Document{},
		&model.ReadingSession{},
		&model.QuizResult{},
		&model.Achievement{},
		&model.ReadingStreak{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
