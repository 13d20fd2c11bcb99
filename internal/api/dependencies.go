package api

import (
	"context"
	"time"

	"infinite-experiment/clanledger/internal/auth"
	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/config"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/metrics"
	"infinite-experiment/clanledger/internal/services"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

type Repositories struct {
	Keys        *repositories.KeysRepo
	Leaderboard *repositories.LeaderboardRepository
	Config      *repositories.ConfigRepository
}

type Services struct {
	Cache      common.CacheInterface
	Config     *services.ConfigService
	Clans      *services.ClanService
	Stats      *services.StatsService
	Shop       *services.ShopService
	Challenges *services.ChallengeService
	Tokens     *auth.TokenService
}

// ActivityEnqueuer accepts chat messages for asynchronous scoring.
type ActivityEnqueuer interface {
	Enqueue(ctx context.Context, item *common.ActivityQueueItem) (string, error)
}

type Dependencies struct {
	Repo     *Repositories
	Services *Services
	Ledger   *engine.Engine
	Metrics  *metrics.MetricsRegistry
	SQLX     *sqlx.DB
	// Queue is nil unless an activity stream is configured.
	Queue ActivityEnqueuer
}

// InitDependencies wires repositories, the award engine and the services on top of
// the shared database handles.
func InitDependencies(
	cfg *config.Config,
	gormDB *gorm.DB,
	sqlxDB *sqlx.DB,
	cache common.CacheInterface,
	publisher common.EventPublisher,
	metricsReg *metrics.MetricsRegistry,
	now func() time.Time,
) (*Dependencies, error) {

	repos := &Repositories{
		Keys:        repositories.NewApiKeysRepo(sqlxDB),
		Leaderboard: repositories.NewLeaderboardRepository(sqlxDB),
		Config:      repositories.NewConfigRepository(gormDB),
	}

	configSvc := services.NewConfigService(repos.Config, cache, metricsReg)

	ledger := engine.NewEngine(gormDB, configSvc, publisher, metricsReg, engine.Options{
		Cooldown: cfg.MessageCooldown,
		DailyCap: cfg.DailyPointCap,
		Now:      now,
	})

	svcs := &Services{
		Cache:      cache,
		Config:     configSvc,
		Clans:      services.NewClanService(gormDB, repos.Leaderboard, ledger, cfg.DefaultClanCap),
		Stats:      services.NewStatsService(gormDB, repos.Leaderboard, ledger),
		Shop:       services.NewShopService(gormDB, ledger),
		Challenges: services.NewChallengeService(gormDB, ledger),
		Tokens:     auth.NewTokenService([]byte(cfg.JWTSecret)),
	}

	return &Dependencies{
		Repo:     repos,
		Services: svcs,
		Ledger:   ledger,
		Metrics:  metricsReg,
		SQLX:     sqlxDB,
	}, nil
}
