// internal/historian/historian.go is an asynchronous historian that pops lobby event records
// from a Redis queue and persists them in batches.
package historian

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/jason-s-yu/imposter/internal/cache"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Queue yields raw records. Pop blocks for at most timeout and reports ok=false when
// nothing arrived.
type Queue interface {
	Pop(ctx context.Context, timeout time.Duration) (data []byte, ok bool, err error)
}

// Sink persists a batch of records.
type Sink interface {
	InsertLobbyEvents(ctx context.Context, records []cache.LobbyEventRecord) error
}

// RedisQueue pops from a Redis list with BLPOP.
type RedisQueue struct {
	Client *redis.Client
	Name   string
}

func (q RedisQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, bool, error) {
	res, err := q.Client.BLPop(ctx, timeout, q.Name).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	// res[0] is the queue name and res[1] the payload.
	if len(res) < 2 {
		return nil, false, nil
	}
	return []byte(res[1]), true, nil
}

// Service accumulates records and flushes them when the batch is full or the flush
// delay has passed.
type Service struct {
	queue      Queue
	sink       Sink
	batchSize  int
	flushDelay time.Duration

	batchMu   sync.Mutex
	batch     []cache.LobbyEventRecord
	lastFlush time.Time
}

// NewService builds a Service. Non-positive sizes fall back to 20 records and 500ms.
func NewService(queue Queue, sink Sink, batchSize int, flushDelay time.Duration) *Service {
	if batchSize <= 0 {
		batchSize = 20
	}
	if flushDelay <= 0 {
		flushDelay = 500 * time.Millisecond
	}
	return &Service{
		queue:      queue,
		sink:       sink,
		batchSize:  batchSize,
		flushDelay: flushDelay,
		batch:      make([]cache.LobbyEventRecord, 0, batchSize),
		lastFlush:  time.Now(),
	}
}

// Run pops records until ctx is cancelled, then flushes what is left.
func (s *Service) Run(ctx context.Context) error {
	log.Info("imposter-historian service started.")
	defer log.Info("imposter-historian shutting down.")

	for {
		if ctx.Err() != nil {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.Flush(flushCtx)
			cancel()
			return nil
		}

		data, ok, err := s.queue.Pop(ctx, s.flushDelay)
		switch {
		case err != nil && ctx.Err() == nil:
			log.WithError(err).Error("failed to pop lobby event")
			time.Sleep(s.flushDelay)
		case ok:
			s.Handle(ctx, data)
		}

		if s.due() {
			s.Flush(ctx)
		}
	}
}

// Handle decodes one raw record and adds it to the batch. Invalid records are logged and dropped.
func (s *Service) Handle(ctx context.Context, data []byte) {
	var rec cache.LobbyEventRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		log.WithError(err).Warn("invalid lobby event record")
		return
	}

	s.batchMu.Lock()
	s.batch = append(s.batch, rec)
	full := len(s.batch) >= s.batchSize
	s.batchMu.Unlock()

	if full {
		s.Flush(ctx)
	}
}

func (s *Service) due() bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch) > 0 && time.Since(s.lastFlush) >= s.flushDelay
}

// Flush writes the current batch in one call to the sink. A failed batch is logged and dropped.
func (s *Service) Flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.lastFlush = time.Now()
		s.batchMu.Unlock()
		return
	}
	out := make([]cache.LobbyEventRecord, len(s.batch))
	copy(out, s.batch)
	s.batch = s.batch[:0]
	s.lastFlush = time.Now()
	s.batchMu.Unlock()

	if err := s.sink.InsertLobbyEvents(ctx, out); err != nil {
		log.WithError(err).WithField("count", len(out)).Error("failed to flush lobby events")
		return
	}
	log.Debugf("Flushed %d lobby events to DB.", len(out))
}

// Pending returns the number of buffered records.
func (s *Service) Pending() int {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return len(s.batch)
}
