package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDiskStore_PutAndRemove(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")
	ctx := context.Background()

	path := "tasks/t1/file.txt"
	if err := store.Put(ctx, path, strings.NewReader("payload")); err != nil {
		t.Fatalf("failed to put blob: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(store.root, "tasks", "t1", "file.txt"))
	if err != nil {
		t.Fatalf("blob not written to disk: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("unexpected blob content %q", data)
	}

	if err := store.Remove(ctx, path); err != nil {
		t.Fatalf("failed to remove blob: %v", err)
	}
	if err := store.Remove(ctx, path); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestDiskStore_WalkVisitsBlobsUnderPrefix(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")
	ctx := context.Background()

	for _, path := range []string{"tasks/t1/a.txt", "tasks/t1/thumbs/a.png", "other/b.txt"} {
		if err := store.Put(ctx, path, strings.NewReader("x")); err != nil {
			t.Fatalf("failed to put blob: %v", err)
		}
	}

	seen := map[string]bool{}
	err := store.Walk(ctx, "tasks", func(path string, modTime time.Time) error {
		seen[path] = true
		if modTime.IsZero() {
			t.Errorf("expected a mod time for %q", path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	if !seen["tasks/t1/a.txt"] || !seen["tasks/t1/thumbs/a.png"] {
		t.Errorf("walk missed task blobs: %v", seen)
	}
	if seen["other/b.txt"] {
		t.Error("walk escaped its prefix")
	}
}

func TestDiskStore_WalkOfMissingPrefixIsEmpty(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")

	err := store.Walk(context.Background(), "tasks", func(path string, modTime time.Time) error {
		t.Errorf("unexpected visit: %q", path)
		return nil
	})
	if err != nil {
		t.Fatalf("walk of missing prefix should be a no-op, got %v", err)
	}
}

func TestDiskStore_PublicPathRoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir(), "/storage")

	public := store.PublicPath("tasks/t1/file.txt")
	if public != "/storage/tasks/t1/file.txt" {
		t.Errorf("unexpected public path %q", public)
	}

	path, ok := store.FromPublicPath(public)
	if !ok || path != "tasks/t1/file.txt" {
		t.Errorf("round trip failed: %q, %v", path, ok)
	}

	if _, ok := store.FromPublicPath("/elsewhere/file.txt"); ok {
		t.Error("foreign paths must not resolve")
	}
}
