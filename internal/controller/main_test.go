package controller

import (
	"bytes"
	"chapterflux_backend/internal/config"
	"chapterflux_backend/internal/middleware"
	"chapterflux_backend/internal/model"
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/internal/service"
	"chapterflux_backend/internal/util"
	"chapterflux_backend/pkg/database"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "controller-test-secret-0123456789abcdef"

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	store  *repository.MemoryExportTokenStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.RegisterJSONTagNames()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{JWT: config.JWTConfig{Secret: testSecret}}

	docRepo := repository.NewDocumentRepository(db)
	sessionRepo := repository.NewReadingSessionRepository(db)
	quizRepo := repository.NewQuizResultRepository(db)
	achievementSvc := service.NewAchievementService(repository.NewAchievementRepository(db))
	statsSvc := service.NewStatsService(sessionRepo, docRepo, quizRepo,
		repository.NewReadingStreakRepository(db), achievementSvc, config.StatsConfig{})
	store := repository.NewMemoryExportTokenStore(0)
	t.Cleanup(store.Stop)
	storage := &service.StorageService{Provider: &service.LocalStorageProvider{Config: &config.StorageConfig{LocalPath: t.TempDir()}}}

	sessions := NewReadingSessionController(service.NewReadingSessionService(sessionRepo, docRepo))
	stats := NewStatsController(statsSvc, service.NewExportService(statsSvc, store, time.Minute))
	documents := NewDocumentController(service.NewDocumentService(docRepo, storage, 1))
	quizzes := NewQuizResultController(service.NewQuizResultService(quizRepo))
	achievements := NewAchievementController(achievementSvc, statsSvc)

	r := gin.New()
	r.GET("/api/health", NewHealthController(db).HealthCheck)
	r.GET("/api/exports/:token", stats.DownloadExport)

	api := r.Group("/api", middleware.AuthMiddleware(cfg))
	api.POST("/reading-sessions", sessions.Track)
	api.GET("/reading-sessions", sessions.List)
	api.GET("/user/stats", stats.GetUserStats)
	api.POST("/user/stats/export", stats.CreateExport)
	api.POST("/documents", documents.Create)
	api.POST("/documents/upload", documents.Upload)
	api.GET("/documents", documents.List)
	api.GET("/documents/:id", documents.Get)
	api.POST("/quiz-results", quizzes.Record)
	api.GET("/achievements", achievements.GetUserAchievements)

	admin := r.Group("/api/admin", middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	admin.POST("/users/:userId/achievements/recompute", achievements.Recompute)

	return &testServer{router: r, db: db, store: store}
}

func token(t *testing.T, userID uint, role model.UserRole) string {
	t.Helper()
	tok, err := util.GenerateJWT(userID, role, "reader@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	return tok
}

// do 发送请求并解析 JSON 响应体
func (s *testServer) do(t *testing.T, method, path, tok string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 && json.Unmarshal(w.Body.Bytes(), &resp) != nil {
		resp = nil
	}
	return w, resp
}

func detailFields(resp map[string]interface{}) []string {
	details, _ := resp["details"].([]interface{})
	fields := make([]string, 0, len(details))
	for _, d := range details {
		if m, ok := d.(map[string]interface{}); ok {
			fields = append(fields, m["field"].(string))
		}
	}
	return fields
}
