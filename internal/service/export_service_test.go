package service

import (
	"chapterflux_backend/internal/repository"
	"chapterflux_backend/internal/util"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestExportService_OneShotDownload(t *testing.T) {
	env := newTestEnv(t)
	seedReader(t, env)
	ctx := context.Background()

	store := repository.NewMemoryExportTokenStore(0)
	defer store.Stop()
	exports := NewExportService(env.stats, store, 10*time.Minute)
	exports.Now = env.clock.Now

	ticket, err := exports.CreateStatsExport(ctx, 1)
	if err != nil {
		t.Fatalf("CreateStatsExport: %v", err)
	}
	if len(ticket.Token) != 48 {
		t.Errorf("token length = %d, want 48", len(ticket.Token))
	}
	if ticket.DownloadURL != "/api/exports/"+ticket.Token {
		t.Errorf("download url = %s", ticket.DownloadURL)
	}
	if !ticket.ExpiresAt.Equal(testNow.Add(10 * time.Minute)) {
		t.Errorf("expires at = %v", ticket.ExpiresAt)
	}

	data, err := exports.Download(ctx, ticket.Token)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	var payload struct {
		UserID uint `json:"userId"`
		Stats  struct {
			ReadingSpeed int `json:"readingSpeed"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if payload.UserID != 1 || payload.Stats.ReadingSpeed != 300 {
		t.Errorf("payload = %+v", payload)
	}

	if _, err := exports.Download(ctx, ticket.Token); !errors.Is(err, util.ErrExportNotFound) {
		t.Errorf("second download err = %v, want ErrExportNotFound", err)
	}
}

func TestExportService_TokensAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		token, err := newExportToken()
		if err != nil {
			t.Fatalf("newExportToken: %v", err)
		}
		if seen[token] || strings.Trim(token, "0123456789abcdef") != "" {
			t.Fatalf("bad token %q", token)
		}
		seen[token] = true
	}
}
