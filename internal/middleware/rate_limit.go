package middleware

import (
	"net"
	"net/http"
	"time"

	"infinite-experiment/clanledger/internal/common"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// IPRateLimiter throttles callers per remote address. Idle limiters expire
// out of the cache so the table does not grow with every address seen.
type IPRateLimiter struct {
	limiters *gocache.Cache
	rps      rate.Limit
	burst    int
	trusted  map[string]bool
}

func NewIPRateLimiter(rps float64, burst int, trustedIPs []string) *IPRateLimiter {
	trusted := make(map[string]bool, len(trustedIPs))
	for _, ip := range trustedIPs {
		trusted[ip] = true
	}
	return &IPRateLimiter{
		limiters: gocache.New(10*time.Minute, 5*time.Minute),
		rps:      rate.Limit(rps),
		burst:    burst,
		trusted:  trusted,
	}
}

func (l *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	if v, ok := l.limiters.Get(ip); ok {
		limiter := v.(*rate.Limiter)
		l.limiters.SetDefault(ip, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	if err := l.limiters.Add(ip, limiter, gocache.DefaultExpiration); err != nil {
		// lost the race to another request from the same address
		if v, ok := l.limiters.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if l.trusted[ip] {
			next.ServeHTTP(w, r)
			return
		}

		if !l.getLimiter(ip).Allow() {
			common.RespondError(w, time.Now(), nil, "Too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
