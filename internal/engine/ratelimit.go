package engine

import (
	"strconv"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"infinite-experiment/clanledger/internal/constants"
)

// RateLimiter is the per-user cooldown gate for activity awards.
// Each user gets a token bucket of size one refilled once per cooldown, so a denied
// attempt leaves the bucket untouched. Idle users are evicted; losing state only
// resets a cooldown early.
type RateLimiter struct {
	cooldown time.Duration
	limiters *cache.Cache
	mu       sync.Mutex
}

func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	idle := cooldown * 4
	if idle < time.Minute {
		idle = time.Minute
	}
	return &RateLimiter{
		cooldown: cooldown,
		limiters: cache.New(idle, idle*2),
	}
}

// Allow reports whether userID is outside its cooldown at now, recording the grant if so.
func (rl *RateLimiter) Allow(userID int64, now time.Time) bool {
	_, ok := rl.Reserve(userID, now)
	return ok
}

// Reserve takes userID's cooldown token at now. On success the returned release
// hands the token back, for awards that failed before anything was written.
func (rl *RateLimiter) Reserve(userID int64, now time.Time) (release func(), ok bool) {
	if rl.cooldown <= 0 {
		return func() {}, true
	}
	r := rl.limiterFor(userID).ReserveN(now, 1)
	if !r.OK() {
		return nil, false
	}
	if r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		return nil, false
	}
	return func() { r.CancelAt(now) }, true
}

func (rl *RateLimiter) limiterFor(userID int64) *rate.Limiter {
	key := string(constants.CachePrefixCooldown) + strconv.FormatInt(userID, 10)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if v, found := rl.limiters.Get(key); found {
		// sliding expiry: touching the user keeps the limiter alive
		rl.limiters.SetDefault(key, v)
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rate.Every(rl.cooldown), 1)
	rl.limiters.SetDefault(key, limiter)
	return limiter
}
