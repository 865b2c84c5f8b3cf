package services

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	model "taskhub.com/taskhub/internal/models"
	repository "taskhub.com/taskhub/internal/repositories"
)

func TestSweepOnce_RemovesOnlyAgedOrphans(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.New(db)
	store := newMemStore()
	ctx := context.Background()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	put := func(path string, age time.Duration) {
		if err := store.Put(ctx, path, strings.NewReader("blob")); err != nil {
			t.Fatalf("failed to seed blob: %v", err)
		}
		store.setTime(path, time.Now().Add(-age))
	}

	// Referenced original + thumb, both old enough to be sweep candidates.
	put("tasks/t1/kept.png", 2*time.Hour)
	put("tasks/t1/thumbs/kept.png", 2*time.Hour)
	// Orphan past the grace period, and one still inside it.
	put("tasks/t1/orphan.png", 2*time.Hour)
	put("tasks/t1/fresh-orphan.png", time.Minute)

	thumb := store.PublicPath("tasks/t1/thumbs/kept.png")
	row := model.Attachment{
		ID:     uuid.NewString(),
		TaskID: "t1",
		UserID: "u1",
		Name:   "kept.png",
		Path:   store.PublicPath("tasks/t1/kept.png"),
		Thumb:  &thumb,
		Type:   "image/png",
		Size:   4,
	}
	if err := repos.Attachments.Create(ctx, &row); err != nil {
		t.Fatalf("failed to seed attachment: %v", err)
	}

	sweeper := NewSweeperService(repos.Attachments, store, time.Hour, time.Hour, logger)
	defer sweeper.Shutdown(ctx)

	sweeper.SweepOnce(ctx)

	for _, path := range []string{"tasks/t1/kept.png", "tasks/t1/thumbs/kept.png", "tasks/t1/fresh-orphan.png"} {
		if _, ok := store.get(path); !ok {
			t.Errorf("expected %q to survive the sweep", path)
		}
	}
	if _, ok := store.get("tasks/t1/orphan.png"); ok {
		t.Error("expected aged orphan to be removed")
	}
}
