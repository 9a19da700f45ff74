package repository

import (
	"chapterflux_backend/internal/model"
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
)

func TestDocumentRepository_UpdateProgress(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	doc := &model.Document{
		UserID:   1,
		Title:    "Dune",
		Chapters: datatypes.NewJSONType([]model.Chapter{{ID: "c1", Title: "One", WordCount: 900}}),
	}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("Create: %v", err)
	}

	at := baseTime.Add(3 * time.Hour)
	updated, err := repo.UpdateProgress(ctx, doc.ID, 1, 55.5, at)
	if err != nil || !updated {
		t.Fatalf("UpdateProgress = %v, %v", updated, err)
	}

	got, err := repo.FindByIDAndUserID(ctx, doc.ID, 1)
	if err != nil {
		t.Fatalf("FindByIDAndUserID: %v", err)
	}
	if got.Progress != 55.5 {
		t.Errorf("progress = %v, want 55.5", got.Progress)
	}
	if !got.UpdatedAt.Equal(at) {
		t.Errorf("updated_at = %v, want %v", got.UpdatedAt, at)
	}
	if chapters := got.Chapters.Data(); len(chapters) != 1 || chapters[0].WordCount != 900 {
		t.Errorf("chapters = %+v", chapters)
	}

	updated, err = repo.UpdateProgress(ctx, doc.ID, 2, 90, at)
	if err != nil {
		t.Fatalf("UpdateProgress other user: %v", err)
	}
	if updated {
		t.Error("progress of another user's document was updated")
	}
}

func TestDocumentRepository_FindByUserIDOrdersByUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	ctx := context.Background()

	for i, title := range []string{"a", "b", "c"} {
		doc := &model.Document{UserID: 1, Title: title}
		doc.UpdatedAt = baseTime.Add(time.Duration(i) * time.Hour)
		if err := repo.Create(ctx, doc); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	repo.Create(ctx, &model.Document{UserID: 2, Title: "other"})

	docs, err := repo.FindByUserID(ctx, 1)
	if err != nil {
		t.Fatalf("FindByUserID: %v", err)
	}
	if len(docs) != 3 || docs[0].Title != "c" || docs[2].Title != "a" {
		t.Errorf("unexpected order: %+v", docs)
	}

	ids, err := repo.FindUserIDs(ctx)
	if err != nil {
		t.Fatalf("FindUserIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("user ids = %v, want [1 2]", ids)
	}
}
