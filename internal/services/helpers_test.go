package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"taskhub.com/taskhub/internal/events"
	model "taskhub.com/taskhub/internal/models"
	repository "taskhub.com/taskhub/internal/repositories"
	"taskhub.com/taskhub/internal/storage"
	"taskhub.com/taskhub/internal/thumbs"
)

// memStore is an in-memory blob store for testing.
type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	times map[string]time.Time
}

func newMemStore() *memStore {
	return &memStore{
		blobs: make(map[string][]byte),
		times: make(map[string]time.Time),
	}
}

func (m *memStore) Put(ctx context.Context, path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[path] = data
	m.times[path] = time.Now()
	return nil
}

func (m *memStore) Remove(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[path]; !ok {
		return storage.ErrNotFound
	}
	delete(m.blobs, path)
	delete(m.times, path)
	return nil
}

func (m *memStore) Walk(ctx context.Context, prefix string, fn func(path string, modTime time.Time) error) error {
	m.mu.Lock()
	paths := make(map[string]time.Time, len(m.times))
	for p, t := range m.times {
		paths[p] = t
	}
	m.mu.Unlock()

	for p, t := range paths {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		if err := fn(p, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *memStore) PublicPath(path string) string {
	return "/storage/" + path
}

func (m *memStore) FromPublicPath(public string) (string, bool) {
	return strings.CutPrefix(public, "/storage/")
}

func (m *memStore) get(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[path]
	return data, ok
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

func (m *memStore) setTime(path string, t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.times[path] = t
}

// memPublisher records published events.
type memPublisher struct {
	mu     sync.Mutex
	events []events.TaskCreatedEvent
}

func (p *memPublisher) TaskCreated(ctx context.Context, event events.TaskCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *memPublisher) published() []events.TaskCreatedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.TaskCreatedEvent(nil), p.events...)
}

// failPublisher rejects every publish, forcing the creation transaction to
// roll back.
type failPublisher struct{}

func (failPublisher) TaskCreated(ctx context.Context, event events.TaskCreatedEvent) error {
	return fmt.Errorf("publish refused")
}

// conflictingPublisher fails its first publishes with the number-conflict
// sentinel, simulating creation attempts that lose the race for the unique
// (project_id, number) slot after their blobs are already written.
type conflictingPublisher struct {
	mu        sync.Mutex
	conflicts int
	calls     int
}

func (p *conflictingPublisher) TaskCreated(ctx context.Context, event events.TaskCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.conflicts {
		return fmt.Errorf("lost the number slot: %w", repository.ErrDuplicateNumber)
	}
	return nil
}

func (p *conflictingPublisher) attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Project{},
		&model.TaskGroup{},
		&model.Label{},
		&model.User{},
		&model.Task{},
		&model.Attachment{},
	)
	if err != nil {
		t.Fatalf("failed to migrate database: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	return db
}

type fixture struct {
	db      *gorm.DB
	repos   *repository.Repositories
	store   *memStore
	pub     *memPublisher
	service *TaskService

	project model.Project
	group   model.TaskGroup
	label   model.Label
	label2  model.Label
	admin   model.User
	member  model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	repos := repository.New(db)
	store := newMemStore()
	pub := &memPublisher{}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	f := &fixture{
		db:      db,
		repos:   repos,
		store:   store,
		pub:     pub,
		service: NewTaskService(repos, store, thumbs.NewGenerator(store), pub, logger),

		project: model.Project{ID: uuid.NewString(), Name: "Website Relaunch"},
		label:   model.Label{ID: uuid.NewString(), Name: "bug", Color: "red"},
		label2:  model.Label{ID: uuid.NewString(), Name: "feature", Color: "blue"},
		admin: model.User{
			ID: uuid.NewString(), Name: "Ada", Email: uuid.NewString() + "@example.com", Role: model.RoleAdmin,
		},
		member: model.User{
			ID: uuid.NewString(), Name: "Max", Email: uuid.NewString() + "@example.com", Role: model.RoleMember,
		},
	}
	f.group = model.TaskGroup{ID: uuid.NewString(), ProjectID: f.project.ID, Name: "Backlog"}

	for _, seed := range []any{&f.project, &f.group, &f.label, &f.label2, &f.admin, &f.member} {
		if err := db.Create(seed).Error; err != nil {
			t.Fatalf("failed to seed fixture: %v", err)
		}
	}

	return f
}

func (f *fixture) createInput() CreateTaskInput {
	return CreateTaskInput{
		GroupID:  f.group.ID,
		Name:     "Fix login flow",
		Billable: true,
	}
}

// pngUpload builds a decodable PNG larger than the thumbnail size.
func pngUpload(t *testing.T, name string) Upload {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 320, 240))
	for x := 0; x < 320; x++ {
		for y := 0; y < 240; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture image: %v", err)
	}

	return Upload{
		Name:   name,
		Type:   "image/png",
		Size:   int64(buf.Len()),
		Reader: bytes.NewReader(buf.Bytes()),
	}
}

func (f *fixture) countRows(t *testing.T, table string) int64 {
	t.Helper()

	var count int64
	if err := f.db.Table(table).Count(&count).Error; err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return count
}
