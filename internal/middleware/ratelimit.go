package middleware

import (
	"encoding/json"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// MaxRateLimitBuckets bounds the number of clients tracked at once.
const MaxRateLimitBuckets = 4096

type bucket struct {
	count int
	until time.Time
}

type limiter struct {
	limit      int
	per        time.Duration
	maxBuckets int
	now        func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

// RateLimit allows limit requests per client ip within each window. A
// non-positive limit disables limiting.
//
// The client ip is the peer address of the connection. Forwarded headers are
// only honored when a proxy-aware middleware such as chi's RealIP rewrote
// RemoteAddr before this one runs.
func RateLimit(limit int, per time.Duration) func(http.Handler) http.Handler {
	return newLimiter(limit, per, MaxRateLimitBuckets, time.Now).middleware
}

func newLimiter(limit int, per time.Duration, maxBuckets int, now func() time.Time) *limiter {
	return &limiter{
		limit:      limit,
		per:        per,
		maxBuckets: maxBuckets,
		now:        now,
		buckets:    make(map[string]*bucket),
	}
}

func (l *limiter) middleware(next http.Handler) http.Handler {
	if l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if retry, ok := l.allow(clientIPForRateLimit(r)); !ok {
			writeTooManyRequests(w, retry)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// allow counts one request for ip and reports the seconds to wait when the
// window is exhausted.
func (l *limiter) allow(ip string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	t := l.now()
	b, ok := l.buckets[ip]
	if !ok || t.After(b.until) {
		if !ok && len(l.buckets) >= l.maxBuckets {
			l.makeRoom(t)
		}
		b = &bucket{until: t.Add(l.per)}
		l.buckets[ip] = b
	}
	if b.count >= l.limit {
		return int(math.Ceil(b.until.Sub(t).Seconds())), false
	}
	b.count++
	return 0, true
}

// makeRoom drops expired buckets, then the one closest to expiry if the map
// is still full.
func (l *limiter) makeRoom(t time.Time) {
	var oldestIP string
	var oldest time.Time
	for ip, b := range l.buckets {
		if t.After(b.until) {
			delete(l.buckets, ip)
			continue
		}
		if oldestIP == "" || b.until.Before(oldest) {
			oldestIP, oldest = ip, b.until
		}
	}
	if len(l.buckets) >= l.maxBuckets && oldestIP != "" {
		delete(l.buckets, oldestIP)
	}
}

func writeTooManyRequests(w http.ResponseWriter, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    "rate_limited",
			"message": "Too many requests. Please wait a moment and try again.",
		},
	})
}

func clientIPForRateLimit(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && net.ParseIP(host) != nil {
		return host
	}
	return r.RemoteAddr
}
