package api

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/rpupo63/portfolio-blog-backend/errs"
	"github.com/rpupo63/portfolio-blog-backend/metrics"
)

// rateLimiter decides whether key may make another request.
type rateLimiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute
)

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// memoryLimiter keeps one token bucket per key in process memory.
type memoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	limit   rate.Limit
	burst   int
	stopCh  chan struct{}
}

func newMemoryLimiter(perMinute int) *memoryLimiter {
	l := &memoryLimiter{
		entries: make(map[string]*limiterEntry),
		limit:   rate.Limit(float64(perMinute) / 60.0),
		burst:   perMinute,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

func (l *memoryLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastUse = time.Now()
	l.mu.Unlock()

	res := e.limiter.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return false, delay, nil
	}
	return true, 0, nil
}

func (l *memoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := time.Now()
			for k, e := range l.entries {
				if now.Sub(e.lastUse) > limiterTTL {
					delete(l.entries, k)
				}
			}
			l.mu.Unlock()
		}
	}
}

func (l *memoryLimiter) Stop() {
	close(l.stopCh)
}

// redisLimiter is a fixed one-minute window shared by every instance.
type redisLimiter struct {
	client    *redis.Client
	perMinute int
	window    time.Duration
}

func newRedisLimiter(client *redis.Client, perMinute int) *redisLimiter {
	return &redisLimiter{client: client, perMinute: perMinute, window: time.Minute}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix()/int64(l.window.Seconds()))

	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, l.window)
		return nil
	})
	if err != nil {
		return false, 0, err
	}

	if incr.Val() > int64(l.perMinute) {
		ttl, err := l.client.TTL(ctx, redisKey).Result()
		if err != nil || ttl <= 0 {
			ttl = l.window
		}
		return false, ttl, nil
	}
	return true, 0, nil
}

// clientIP returns the host part of RemoteAddr. Forwarding headers only reach
// it through chi's RealIP, which is mounted when TRUST_PROXY_HEADERS is set.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// rateLimitMiddleware limits requests per client IP and route. A limiter
// error lets the request through.
func rateLimitMiddleware(limiter rateLimiter, rec metrics.Recorder, name string) func(http.Handler) http.Handler {
	responder := NewResponder(log.With().Str("handlerName", "rateLimiter").Logger())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, retry, err := limiter.Allow(r.Context(), name+":"+clientIP(r))
			if err != nil {
				log.Warn().Err(err).Str("limit", name).Msg("rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				rec.RecordRateLimited(name)
				seconds := max(int(math.Ceil(retry.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				responder.WriteError(w, errs.NewRateLimitedError(seconds))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
