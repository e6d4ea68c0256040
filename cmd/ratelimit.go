package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ClientLimiter keeps one token bucket per client address.
type ClientLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	clients map[string]*clientBucket
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewClientLimiter allows each client perSec requests per second with bursts
// of up to burst requests.
func NewClientLimiter(perSec float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		limit:   rate.Limit(perSec),
		burst:   burst,
		clients: make(map[string]*clientBucket),
	}
}

func (l *ClientLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = b
	}
	b.lastSeen = time.Now()
	return b.limiter.Allow()
}

// Prune forgets clients idle for longer than maxIdle.
func (l *ClientLimiter) Prune(maxIdle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	pruned := 0
	for key, b := range l.clients {
		if time.Since(b.lastSeen) > maxIdle {
			delete(l.clients, key)
			pruned++
		}
	}
	return pruned
}

// Middleware rejects requests over the limit with 429.
func (l *ClientLimiter) Middleware(onLimited http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if !l.Allow(clientKey(req)) {
				onLimited(w, req)
				return
			}
			next.ServeHTTP(w, req)
		})
	}
}

func clientKey(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}
