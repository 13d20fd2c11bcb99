package services

import (
	"testing"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/db"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	db         *gorm.DB
	ledger     *engine.Engine
	config     *ConfigService
	clans      *ClanService
	stats      *StatsService
	shop       *ShopService
	challenges *ChallengeService
}

// Setup test database and every service over it
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	sqlxDB, err := db.NewSQLX(gdb)
	require.NoError(t, err)
	t.Cleanup(func() { sqlxDB.Close() })

	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	cache := common.NewCacheService(60, 120)
	configService := NewConfigService(repositories.NewConfigRepository(gdb), cache, m)

	ledger := engine.NewEngine(gdb, configService, common.LogEventPublisher{}, m, engine.Options{
		Cooldown: 5 * time.Second,
		DailyCap: 500,
		Now:      func() time.Time { return testNow },
	})
	leaderboard := repositories.NewLeaderboardRepository(sqlxDB)

	return &testEnv{
		db:         gdb,
		ledger:     ledger,
		config:     configService,
		clans:      NewClanService(gdb, leaderboard, ledger, 20000),
		stats:      NewStatsService(gdb, leaderboard, ledger),
		shop:       NewShopService(gdb, ledger),
		challenges: NewChallengeService(gdb, ledger),
	}
}
