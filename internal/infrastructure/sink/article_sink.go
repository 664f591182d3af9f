package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kellemar/text-analyzer/internal/core/domain"
	"github.com/kellemar/text-analyzer/internal/core/ports"
)

const storeTimeout = 10 * time.Second

// ArticleSink persists analysis logs off the request path. Store never
// blocks: when the queue is full the entry is dropped and counted, and the
// caller's response is unaffected either way.
type ArticleSink struct {
	repo    ports.ArticleLogRepository
	queue   chan domain.ArticleLog
	logger  *slog.Logger
	dropped func()

	wg       sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
}

// New starts the background worker. onDrop is invoked once per discarded
// entry and may be nil.
func New(repo ports.ArticleLogRepository, queueDepth int, logger *slog.Logger, onDrop func()) *ArticleSink {
	if queueDepth <= 0 {
		queueDepth = 64
	}
	if onDrop == nil {
		onDrop = func() {}
	}
	s := &ArticleSink{
		repo:    repo,
		queue:   make(chan domain.ArticleLog, queueDepth),
		logger:  logger,
		dropped: onDrop,
		stop:    make(chan struct{}),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *ArticleSink) Store(log domain.ArticleLog) {
	select {
	case s.queue <- log:
	default:
		s.dropped()
		s.logger.Warn("article sink queue full, dropping entry", "article_id", log.ID)
	}
}

func (s *ArticleSink) run() {
	defer s.wg.Done()
	for {
		select {
		case entry := <-s.queue:
			s.persist(entry)
		case <-s.stop:
			for {
				select {
				case entry := <-s.queue:
					s.persist(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *ArticleSink) persist(entry domain.ArticleLog) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, &entry); err != nil {
		s.logger.Warn("failed to persist article log", "article_id", entry.ID, "error", err)
	}
}

// Close drains queued entries and stops the worker. It returns early if the
// context expires before the drain finishes.
func (s *ArticleSink) Close(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stop) })
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
