package engine

import (
	"strconv"
	"sync"
	"time"

	"infinite-experiment/clanledger/internal/constants"

	"github.com/patrickmn/go-cache"
)

// DailyBudget caps the points a user may be awarded per UTC calendar day.
// State is process-local; a restart resets every budget.
type DailyBudget struct {
	cap     int64
	entries *cache.Cache
	mu      sync.Mutex
}

type budgetEntry struct {
	mu     sync.Mutex
	day    string
	points int64
}

func NewDailyBudget(dailyCap int64) *DailyBudget {
	return &DailyBudget{
		cap:     dailyCap,
		entries: cache.New(25*time.Hour, time.Hour),
	}
}

func (b *DailyBudget) Cap() int64 {
	return b.cap
}

// TryReserve commits amount against today's budget when it fits (inclusive of the cap).
// On refusal nothing changes and the current total is returned for error context.
func (b *DailyBudget) TryReserve(userID int64, amount int64, now time.Time) (bool, int64) {
	e := b.entryFor(userID)
	day := now.UTC().Format(constants.DateLayout)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.day != day {
		e.day = day
		e.points = 0
	}
	if e.points+amount > b.cap {
		return false, e.points
	}
	e.points += amount
	return true, e.points
}

// Release returns a reservation whose write did not commit.
func (b *DailyBudget) Release(userID int64, amount int64, now time.Time) {
	e := b.entryFor(userID)
	day := now.UTC().Format(constants.DateLayout)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.day != day {
		return
	}
	e.points -= amount
	if e.points < 0 {
		e.points = 0
	}
}

// Used returns the points reserved today for userID.
func (b *DailyBudget) Used(userID int64, now time.Time) int64 {
	e := b.entryFor(userID)
	day := now.UTC().Format(constants.DateLayout)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.day != day {
		return 0
	}
	return e.points
}

func (b *DailyBudget) entryFor(userID int64) *budgetEntry {
	key := string(constants.CachePrefixDailyBudget) + strconv.FormatInt(userID, 10)

	b.mu.Lock()
	defer b.mu.Unlock()

	if v, found := b.entries.Get(key); found {
		b.entries.SetDefault(key, v)
		return v.(*budgetEntry)
	}
	e := &budgetEntry{}
	b.entries.SetDefault(key, e)
	return e
}
