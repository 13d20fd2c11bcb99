package engine

import (
	"context"
	"fmt"
	"time"

	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/metrics"

	"gorm.io/gorm"
)

// Milestones are lifetime-point thresholds, ascending.
var Milestones = []int64{100, 500, 1000, 2500, 5000, 10000}

func MilestoneName(milestone int64) string {
	return fmt.Sprintf("Reached %d Points", milestone)
}

// AchievementEvaluator records crossed milestones exactly once per user.
type AchievementEvaluator struct {
	users        *repositories.UserRepository
	achievements *repositories.AchievementRepository
	metrics      *metrics.MetricsRegistry
	now          func() time.Time
}

func NewAchievementEvaluator(db *gorm.DB, m *metrics.MetricsRegistry, now func() time.Time) *AchievementEvaluator {
	if now == nil {
		now = time.Now
	}
	return &AchievementEvaluator{
		users:        repositories.NewUserRepository(db),
		achievements: repositories.NewAchievementRepository(db),
		metrics:      m,
		now:          now,
	}
}

// Evaluate checks the user's current lifetime points and returns the names earned by this call.
// Safe to call repeatedly; already-earned milestones are skipped silently.
func (a *AchievementEvaluator) Evaluate(ctx context.Context, userID int64) ([]string, error) {
	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, PersistenceError(err)
	}
	if user == nil {
		return []string{}, nil
	}

	earned, err := evaluateMilestones(ctx, a.achievements, userID, user.Points, a.now().UTC())
	if err != nil {
		return nil, PersistenceError(err)
	}
	a.record(earned)
	return earned, nil
}

func (a *AchievementEvaluator) record(names []string) {
	if a.metrics == nil {
		return
	}
	for _, name := range names {
		a.metrics.AchievementsTotal.WithLabelValues(name).Inc()
	}
}

// evaluateMilestones runs against whichever handle repo is bound to, so the award
// transaction can evaluate inside its own commit.
func evaluateMilestones(ctx context.Context, repo *repositories.AchievementRepository, userID int64, points int64, now time.Time) ([]string, error) {
	earned := []string{}
	for _, m := range Milestones {
		if points < m {
			break
		}
		name := MilestoneName(m)
		inserted, err := repo.InsertIfAbsent(ctx, userID, name, now)
		if err != nil {
			return nil, err
		}
		if inserted {
			earned = append(earned, name)
		}
	}
	return earned, nil
}
