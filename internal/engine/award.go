package engine

import (
	"context"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/metrics"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
)

// RuntimeConfig is the admin-mutated configuration the engine reads on every award.
type RuntimeConfig interface {
	BonusRole(ctx context.Context) (string, error)
	ChannelMultiplier(ctx context.Context, channelID int64) (float64, bool, error)
	SeasonalMultipliers(ctx context.Context, now time.Time) ([]float64, error)
}

type Options struct {
	Cooldown time.Duration
	DailyCap int64
	Now      func() time.Time
}

// Engine is the award hub. Every point mutation that touches a clan goes through it.
type Engine struct {
	db           *gorm.DB
	clans        *repositories.ClanRepository
	users        *repositories.UserRepository
	logs         *repositories.PointLogRepository
	achievements *repositories.AchievementRepository

	config    RuntimeConfig
	publisher common.EventPublisher
	metrics   *metrics.MetricsRegistry

	weekly    *WeeklyCycle
	directory *Directory
	evaluator *AchievementEvaluator
	limiter   *RateLimiter
	budget    *DailyBudget
	locks     *keyedMutex
	cooldown  time.Duration
	now       func() time.Time
}

func NewEngine(db *gorm.DB, cfg RuntimeConfig, publisher common.EventPublisher, m *metrics.MetricsRegistry, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DailyCap <= 0 {
		opts.DailyCap = constants.DefaultDailyPointCap
	}

	return &Engine{
		db:           db,
		clans:        repositories.NewClanRepository(db),
		users:        repositories.NewUserRepository(db),
		logs:         repositories.NewPointLogRepository(db),
		achievements: repositories.NewAchievementRepository(db),
		config:       cfg,
		publisher:    publisher,
		metrics:      m,
		weekly:       NewWeeklyCycle(db, m),
		directory:    NewDirectory(db),
		evaluator:    NewAchievementEvaluator(db, m, opts.Now),
		limiter:      NewRateLimiter(opts.Cooldown),
		budget:       NewDailyBudget(opts.DailyCap),
		locks:        newKeyedMutex(),
		cooldown:     opts.Cooldown,
		now:          opts.Now,
	}
}

func (e *Engine) Weekly() *WeeklyCycle                { return e.weekly }
func (e *Engine) Directory() *Directory               { return e.directory }
func (e *Engine) Achievements() *AchievementEvaluator { return e.evaluator }
func (e *Engine) Budget() *DailyBudget                { return e.budget }
func (e *Engine) Now() time.Time                      { return e.now() }

type AwardRequest struct {
	UserID     int64
	ClanName   string
	BaseAmount int64
	Source     string
	ChannelID  *int64
	// OncePerSource rejects with DUPLICATE when the user already has an entry with Source.
	OncePerSource bool
	// At overrides the engine clock, e.g. with the platform's message timestamp.
	At time.Time
}

type AwardResult struct {
	UserID          int64
	ClanName        string
	Amount          int64
	ClanPoints      int64
	UserPoints      int64
	NewAchievements []string
}

// Award runs the gated award pipeline: lazy rollover, multipliers, clan cap, daily
// budget, then one transaction for clan, user, log and achievements. Any rejection
// leaves the ledger unchanged; a rollover performed in the first step stays applied.
func (e *Engine) Award(ctx context.Context, req AwardRequest) (*AwardResult, error) {
	start := time.Now()
	now := req.At
	if now.IsZero() {
		now = e.now()
	}

	res, err := e.award(ctx, req, now)
	e.observe(req.Source, res, err, start)
	if err != nil {
		return nil, err
	}

	e.publishMilestones(ctx, res, req.ChannelID, now)
	return res, nil
}

func (e *Engine) award(ctx context.Context, req AwardRequest, now time.Time) (*AwardResult, error) {
	if req.BaseAmount <= 0 {
		return nil, NewLimitError(constants.ErrCodeInvalidAmount, req.BaseAmount, 1)
	}
	if req.ClanName == "" {
		return nil, NewError(constants.ErrCodeUserNotInClan)
	}

	unlock := e.locks.lockClanUser(req.ClanName, req.UserID)
	defer unlock()

	clan, _, err := e.weekly.resolve(ctx, req.ClanName, now)
	if err != nil {
		return nil, err
	}

	amount, err := e.finalAmount(ctx, req.BaseAmount, req.ChannelID, now)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, NewLimitError(constants.ErrCodeInvalidAmount, amount, 1)
	}

	if clan.Points+amount > clan.MaxPoints {
		return nil, NewLimitError(constants.ErrCodeClanCapExceeded, clan.Points, clan.MaxPoints)
	}

	ok, used := e.budget.TryReserve(req.UserID, amount, now)
	if !ok {
		return nil, NewLimitError(constants.ErrCodeDailyCapExceeded, used, e.budget.Cap())
	}

	res, err := e.applyCredit(ctx, creditOp{
		userID:    req.UserID,
		clanName:  req.ClanName,
		amount:    amount,
		source:    req.Source,
		channelID: req.ChannelID,
		once:      req.OncePerSource,
		now:       now,
	})
	if err != nil {
		e.budget.Release(req.UserID, amount, now)
		return nil, err
	}
	return res, nil
}

// finalAmount applies the channel multiplier and every active seasonal multiplier.
func (e *Engine) finalAmount(ctx context.Context, base int64, channelID *int64, now time.Time) (int64, error) {
	if e.config == nil {
		return base, nil
	}

	var factors []float64
	if channelID != nil {
		m, ok, err := e.config.ChannelMultiplier(ctx, *channelID)
		if err != nil {
			return 0, PersistenceError(err)
		}
		if ok {
			factors = append(factors, m)
		}
	}

	seasonal, err := e.config.SeasonalMultipliers(ctx, now)
	if err != nil {
		return 0, PersistenceError(err)
	}
	factors = append(factors, seasonal...)

	if len(factors) == 0 {
		return base, nil
	}
	return ApplyMultipliers(base, factors...), nil
}

type creditOp struct {
	userID    int64
	clanName  string
	amount    int64
	source    string
	channelID *int64
	once      bool
	now       time.Time
}

// applyCredit is the single write transaction for positive awards.
func (e *Engine) applyCredit(ctx context.Context, op creditOp) (*AwardResult, error) {
	res := &AwardResult{UserID: op.userID, ClanName: op.clanName, Amount: op.amount}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clans := e.clans.WithTx(tx)
		users := e.users.WithTx(tx)
		logs := e.logs.WithTx(tx)

		if op.once {
			exists, err := logs.ExistsWithSource(ctx, op.userID, op.source)
			if err != nil {
				return err
			}
			if exists {
				return NewError(constants.ErrCodeDuplicate)
			}
		}

		clan, err := clans.GetForUpdate(ctx, op.clanName)
		if err != nil {
			return err
		}
		if clan == nil {
			return NewError(constants.ErrCodeClanNotFound)
		}
		current, _, err := e.weekly.rollOverLocked(ctx, clans, clan, op.now)
		if err != nil {
			return err
		}
		if current+op.amount > clan.MaxPoints {
			return NewLimitError(constants.ErrCodeClanCapExceeded, current, clan.MaxPoints)
		}
		applied, err := clans.AddPoints(ctx, op.clanName, op.amount)
		if err != nil {
			return err
		}
		if !applied {
			return NewLimitError(constants.ErrCodeClanCapExceeded, current, clan.MaxPoints)
		}

		userPoints, err := creditUser(ctx, users, op)
		if err != nil {
			return err
		}

		if err := logs.Append(ctx, &gormModels.PointLog{
			UserID:    op.userID,
			Amount:    op.amount,
			Source:    op.source,
			Timestamp: op.now.UTC(),
			ChannelID: op.channelID,
		}); err != nil {
			return err
		}

		earned, err := evaluateMilestones(ctx, e.achievements.WithTx(tx), op.userID, userPoints, op.now.UTC())
		if err != nil {
			return err
		}

		res.ClanPoints = current + op.amount
		res.UserPoints = userPoints
		res.NewAchievements = earned
		return nil
	})
	if err != nil {
		return nil, e.wrapTxError(op, err)
	}

	e.evaluator.record(res.NewAchievements)
	return res, nil
}

func (e *Engine) wrapTxError(op creditOp, err error) error {
	wrapped := PersistenceError(err)
	if CodeOf(wrapped) == constants.ErrCodePersistenceFailure {
		logging.Error("Ledger transaction failed",
			"user_id", op.userID,
			"clan", op.clanName,
			"amount", op.amount,
			"source", op.source,
			"error", err.Error(),
		)
	}
	return wrapped
}

// creditUser adds points to the member, creating the record on first award.
func creditUser(ctx context.Context, users *repositories.UserRepository, op creditOp) (int64, error) {
	now := op.now.UTC()
	user, err := users.GetForUpdate(ctx, op.userID)
	if err != nil {
		return 0, err
	}

	if user == nil {
		clanName := op.clanName
		created := &gormModels.User{
			UserID:     op.userID,
			ClanName:   &clanName,
			Points:     op.amount,
			StreakDays: 1,
			WeeklyCap:  constants.DefaultUserWeeklyCap,
			LastActive: &now,
			JoinDate:   now,
		}
		if err := users.Create(ctx, created); err != nil {
			return 0, err
		}
		return op.amount, nil
	}

	streak := nextStreak(user.StreakDays, user.LastActive, now)
	if err := users.AddPoints(ctx, op.userID, op.amount, now, streak); err != nil {
		return 0, err
	}
	return user.Points + op.amount, nil
}

// nextStreak continues a streak on consecutive UTC days and restarts it after a gap.
func nextStreak(current int, lastActive *time.Time, now time.Time) int {
	if lastActive == nil {
		return 1
	}
	today := now.UTC().Format(constants.DateLayout)
	last := lastActive.UTC().Format(constants.DateLayout)
	switch last {
	case today:
		if current < 1 {
			return 1
		}
		return current
	case now.UTC().AddDate(0, 0, -1).Format(constants.DateLayout):
		return current + 1
	default:
		return 1
	}
}

func (e *Engine) publishMilestones(ctx context.Context, res *AwardResult, channelID *int64, now time.Time) {
	if e.publisher == nil || len(res.NewAchievements) == 0 {
		return
	}
	for _, name := range res.NewAchievements {
		event := common.LedgerEvent{
			Type:      constants.EventMilestone,
			UserID:    res.UserID,
			ClanName:  res.ClanName,
			ChannelID: channelID,
			Payload: map[string]any{
				"achievement": name,
				"points":      res.UserPoints,
			},
			OccurredAt: now.UTC(),
		}
		if err := e.publisher.Publish(ctx, event); err != nil {
			logging.Warn("Failed to publish milestone event",
				"user_id", res.UserID,
				"achievement", name,
				"error", err.Error(),
			)
		}
	}
}

func (e *Engine) observe(source string, res *AwardResult, err error, start time.Time) {
	if err != nil {
		code := CodeOf(err)
		if code == "" {
			code = constants.ErrCodePersistenceFailure
		}
		logging.Info("Award rejected", "source", source, "code", code)
		if e.metrics != nil {
			e.metrics.AwardsTotal.WithLabelValues(metrics.SourceKind(source), code).Inc()
		}
		return
	}
	if e.metrics == nil {
		return
	}
	kind := metrics.SourceKind(source)
	e.metrics.AwardsTotal.WithLabelValues(kind, "applied").Inc()
	amount := res.Amount
	if amount < 0 {
		amount = -amount
	}
	e.metrics.PointsAwardedTotal.WithLabelValues(kind).Add(float64(amount))
	e.metrics.AwardDuration.Observe(time.Since(start).Seconds())
}
