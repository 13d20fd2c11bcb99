package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/db"
	"infinite-experiment/clanledger/internal/metrics"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	wednesday = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	saturday  = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
)

type stubConfig struct {
	bonusRole string
	channels  map[int64]float64
	seasonal  []float64
	// seasonalFailures makes the next n seasonal lookups fail
	seasonalFailures int
}

func (s *stubConfig) BonusRole(context.Context) (string, error) {
	return s.bonusRole, nil
}

func (s *stubConfig) ChannelMultiplier(_ context.Context, channelID int64) (float64, bool, error) {
	m, ok := s.channels[channelID]
	return m, ok, nil
}

func (s *stubConfig) SeasonalMultipliers(context.Context, time.Time) ([]float64, error) {
	if s.seasonalFailures > 0 {
		s.seasonalFailures--
		return nil, errors.New("config store unavailable")
	}
	return s.seasonal, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(_ context.Context, ev common.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev.Type+":"+ev.Payload["achievement"].(string))
	return nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type testHarness struct {
	engine    *Engine
	db        *gorm.DB
	clock     *testClock
	config    *stubConfig
	publisher *recordingPublisher
}

func newHarness(t *testing.T, dailyCap int64) *testHarness {
	t.Helper()
	gdb := setupTestDB(t)
	clock := &testClock{now: wednesday}
	cfg := &stubConfig{channels: map[int64]float64{}}
	pub := &recordingPublisher{}
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())

	eng := NewEngine(gdb, cfg, pub, m, Options{
		Cooldown: 5 * time.Second,
		DailyCap: dailyCap,
		Now:      clock.Now,
	})
	return &testHarness{engine: eng, db: gdb, clock: clock, config: cfg, publisher: pub}
}

func (h *testHarness) createClan(t *testing.T, name string, maxPoints int64) {
	t.Helper()
	week := WeekStart(h.clock.Now())
	require.NoError(t, h.db.Create(&gormModels.Clan{
		Name:          name,
		MaxPoints:     maxPoints,
		LastWeekStart: &week,
	}).Error)
}

func (h *testHarness) clan(t *testing.T, name string) gormModels.Clan {
	t.Helper()
	var c gormModels.Clan
	require.NoError(t, h.db.Where("name = ?", name).First(&c).Error)
	return c
}

func (h *testHarness) userPoints(t *testing.T, userID int64) int64 {
	t.Helper()
	var u gormModels.User
	require.NoError(t, h.db.Where("user_id = ?", userID).First(&u).Error)
	return u.Points
}

func (h *testHarness) logSum(t *testing.T, userID int64) int64 {
	t.Helper()
	sum, err := h.engine.logs.SumForUser(context.Background(), userID)
	require.NoError(t, err)
	return sum
}

func int64Ptr(v int64) *int64 { return &v }
