package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	repository "taskhub.com/taskhub/internal/repositories"
	"taskhub.com/taskhub/internal/storage"
)

// SweeperService removes orphaned blobs: files under tasks/ that no
// attachment row references. Orphans appear when a creation rolls back
// after its blob writes and the compensating cleanup did not run (crash,
// kill). The grace period keeps the sweep from racing an in-flight
// creation whose rows are not committed yet.
type SweeperService struct {
	attachments *repository.AttachmentRepository
	store       storage.Store
	interval    time.Duration
	grace       time.Duration
	log         *logrus.Logger

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewSweeperService(
	attachments *repository.AttachmentRepository,
	store storage.Store,
	interval time.Duration,
	grace time.Duration,
	log *logrus.Logger,
) *SweeperService {
	s := &SweeperService{
		attachments: attachments,
		store:       store,
		interval:    interval,
		grace:       grace,
		log:         log,
		stop:        make(chan struct{}),
	}

	s.wg.Add(1)
	go s.loop()

	return s
}

func (s *SweeperService) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(context.Background())
		case <-s.stop:
			return
		}
	}
}

// SweepOnce walks blob storage and deletes every file older than the grace
// period whose public path no attachment row references.
func (s *SweeperService) SweepOnce(ctx context.Context) {
	referenced, err := s.attachments.ReferencedPublicPaths(ctx)
	if err != nil {
		s.log.WithError(err).Warn("sweep: failed to list referenced paths")
		return
	}

	cutoff := time.Now().Add(-s.grace)
	removed := 0

	err = s.store.Walk(ctx, "tasks", func(path string, modTime time.Time) error {
		if modTime.After(cutoff) {
			return nil
		}
		if referenced[s.store.PublicPath(path)] {
			return nil
		}

		if err := s.store.Remove(ctx, path); err != nil && err != storage.ErrNotFound {
			s.log.WithField("path", path).WithError(err).Warn("sweep: failed to remove orphan")
			return nil
		}
		removed++
		return nil
	})
	if err != nil {
		s.log.WithError(err).Warn("sweep: walk failed")
		return
	}

	if removed > 0 {
		s.log.WithField("removed", removed).Info("sweep: removed orphaned blobs")
	}
}

func (s *SweeperService) Shutdown(ctx context.Context) {
	close(s.stop)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info("sweeper shut down cleanly")
	case <-ctx.Done():
		s.log.Warn("sweeper shutdown timed out")
	}
}
