package ratelimit

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/GlebRadaev/artauction/pkg/auth"
	"github.com/GlebRadaev/artauction/pkg/utils"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxTrackedKeys = 10000

// Limiter is a token bucket per caller. Authenticated callers are keyed by
// user id, everybody else by remote address. Least recently seen callers
// are evicted once maxTrackedKeys is reached.
type Limiter struct {
	mu       sync.Mutex
	limiters *lru.Cache
	rate     rate.Limit
	burst    int
}

func New(requestsPerSecond, burst int) *Limiter {
	cache, _ := lru.New(maxTrackedKeys)
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		limiters: cache,
		rate:     rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (l *Limiter) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if v, ok := l.limiters.Get(key); ok {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	l.limiters.Add(key, limiter)
	return limiter
}

func (l *Limiter) Allow(key string) bool {
	return l.get(key).Allow()
}

func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if userID, ok := auth.UserIDFromContext(r.Context()); ok {
			key = "user:" + strconv.Itoa(userID)
		}

		if !l.Allow(key) {
			zap.L().Info("rate limit exceeded", zap.String("key", key), zap.String("path", r.URL.Path))
			utils.RespondWithError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
