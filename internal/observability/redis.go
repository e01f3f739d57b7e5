package observability

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/phambaophuc/dali/internal/config"
	"github.com/phambaophuc/dali/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultRedisTimeout = 400 * time.Millisecond
	defaultRedisBuffer  = 1024
)

// RedisObserver keeps running counters in one hash per process group so
// several instances can be aggregated by an external scraper.
//
//	<prefix>:metrics  fetch_count, fetch_ms_total, input_bytes_total:<format>,
//	                  output_bytes_total:<format>, output_count:<format>,
//	                  watermarks_dropped, files_exceeding_max_size,
//	                  requests:<class>, request_ms_total:<class>
//
// Events are queued and written by a single background goroutine. When the
// queue is full the update is dropped, so a slow Redis never holds a request.
type RedisObserver struct {
	client  *redis.Client
	key     string
	timeout time.Duration
	logger  *zap.Logger

	mu      sync.RWMutex
	closed  bool
	updates chan map[string]int64
	done    chan struct{}
	dropped atomic.Int64
}

// NewRedisClient builds a client whose commands honour context deadlines.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:                  cfg.Addr,
		Password:              cfg.Password,
		DB:                    cfg.DB,
		DialTimeout:           cfg.DialTimeout,
		ReadTimeout:           cfg.ReadTimeout,
		WriteTimeout:          cfg.WriteTimeout,
		ContextTimeoutEnabled: true,
	})
}

// NewRedisObserver starts the writer goroutine. Close stops it.
func NewRedisObserver(client *redis.Client, cfg config.RedisConfig, logger *zap.Logger) *RedisObserver {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "dali"
	}
	timeout := cfg.ReadTimeout + cfg.WriteTimeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = defaultRedisBuffer
	}

	r := &RedisObserver{
		client:  client,
		key:     prefix + ":metrics",
		timeout: timeout,
		logger:  logger,
		updates: make(chan map[string]int64, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *RedisObserver) Key() string {
	return r.key
}

// Close flushes queued updates and stops the writer. Events after Close are
// ignored.
func (r *RedisObserver) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.updates)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *RedisObserver) incr(fields map[string]int64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}

	select {
	case r.updates <- fields:
	default:
		r.dropped.Add(1)
	}
}

func (r *RedisObserver) run() {
	defer close(r.done)
	for fields := range r.updates {
		r.write(r.merge(fields))
	}
}

// merge folds every update already queued into batch.
func (r *RedisObserver) merge(batch map[string]int64) map[string]int64 {
	for {
		select {
		case fields, ok := <-r.updates:
			if !ok {
				return batch
			}
			for field, delta := range fields {
				batch[field] += delta
			}
		default:
			return batch
		}
	}
}

func (r *RedisObserver) write(fields map[string]int64) {
	if n := r.dropped.Swap(0); n > 0 {
		r.logger.Warn("Metrics queue full, updates dropped", zap.String("key", r.key), zap.Int64("dropped", n))
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	pipe := r.client.Pipeline()
	for field, delta := range fields {
		pipe.HIncrBy(ctx, r.key, field, delta)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn("Failed to record metrics", zap.String("key", r.key), zap.Error(err))
	}
}

func (r *RedisObserver) FetchCompleted(d time.Duration) {
	r.incr(map[string]int64{"fetch_count": 1, "fetch_ms_total": d.Milliseconds()})
}

func (r *RedisObserver) InputSize(format models.OutputFormat, bytes int) {
	r.incr(map[string]int64{"input_bytes_total:" + string(format): int64(bytes)})
}

func (r *RedisObserver) OutputSize(format models.OutputFormat, bytes int) {
	r.incr(map[string]int64{
		"output_count:" + string(format):       1,
		"output_bytes_total:" + string(format): int64(bytes),
	})
}

func (r *RedisObserver) WatermarkDropped(count int) {
	r.incr(map[string]int64{"watermarks_dropped": int64(count)})
}

func (r *RedisObserver) SizeExceeded() {
	r.incr(map[string]int64{"files_exceeding_max_size": 1})
}

func (r *RedisObserver) RequestCompleted(class StatusClass, d time.Duration) {
	r.incr(map[string]int64{
		"requests:" + string(class):         1,
		"request_ms_total:" + string(class): d.Milliseconds(),
	})
}

// Name and Ping let the observer report on /health.
func (r *RedisObserver) Name() string {
	return "redis"
}

func (r *RedisObserver) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
