package engine

import (
	"context"
	"time"

	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/metrics"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
)

// WeekStart returns the most recent Monday 00:00:00 UTC at or before now.
func WeekStart(now time.Time) time.Time {
	t := now.UTC()
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// FinishedWeekPoints returns what a clan scored in the week before now's week,
// reading the row the way a rollover at now would leave it. A clan not yet rolled
// over still holds that total in points; a clan never stamped has no finished week
// beyond its archive.
func FinishedWeekPoints(points, lastWeekPoints int64, lastWeekStart *time.Time, now time.Time) int64 {
	if lastWeekStart != nil && lastWeekStart.Before(WeekStart(now)) {
		return points
	}
	return lastWeekPoints
}

// WeeklyCycle performs lazy rollovers. A clan untouched for several weeks rolls over once,
// archiving only its last stored total; older weeks are not reconstructed.
type WeeklyCycle struct {
	db      *gorm.DB
	clans   *repositories.ClanRepository
	metrics *metrics.MetricsRegistry
}

func NewWeeklyCycle(db *gorm.DB, m *metrics.MetricsRegistry) *WeeklyCycle {
	return &WeeklyCycle{
		db:      db,
		clans:   repositories.NewClanRepository(db),
		metrics: m,
	}
}

// ResolveClanPoints returns the clan's current-week points, rolling the clan over first
// when its stored week is older than the week containing now.
func (w *WeeklyCycle) ResolveClanPoints(ctx context.Context, clanName string, now time.Time) (int64, bool, error) {
	clan, rolled, err := w.resolve(ctx, clanName, now)
	if err != nil {
		return 0, false, err
	}
	return clan.Points, rolled, nil
}

// resolve returns the clan row as it stands after any rollover.
func (w *WeeklyCycle) resolve(ctx context.Context, clanName string, now time.Time) (*gormModels.Clan, bool, error) {
	var resolved *gormModels.Clan
	var rolled bool

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clans := w.clans.WithTx(tx)
		clan, err := clans.GetForUpdate(ctx, clanName)
		if err != nil {
			return err
		}
		if clan == nil {
			return NewError(constants.ErrCodeClanNotFound)
		}
		if _, rolled, err = w.rollOverLocked(ctx, clans, clan, now); err != nil {
			return err
		}
		resolved = clan
		return nil
	})
	if err != nil {
		return nil, false, PersistenceError(err)
	}
	return resolved, rolled, nil
}

// RollOverStale applies the rollover to every clan whose week is stale. Used before
// standings reads so leaderboards never show last week's totals as current.
func (w *WeeklyCycle) RollOverStale(ctx context.Context, now time.Time) (int, error) {
	names, err := w.clans.Names(ctx)
	if err != nil {
		return 0, PersistenceError(err)
	}

	rolledCount := 0
	for _, name := range names {
		_, rolled, err := w.ResolveClanPoints(ctx, name, now)
		if err != nil {
			return rolledCount, err
		}
		if rolled {
			rolledCount++
		}
	}
	return rolledCount, nil
}

// rollOverLocked expects the caller to hold the clan row lock inside a transaction.
// A clan that never had a week recorded is stamped with the current week without archiving.
func (w *WeeklyCycle) rollOverLocked(ctx context.Context, clans *repositories.ClanRepository, clan *gormModels.Clan, now time.Time) (int64, bool, error) {
	weekStart := WeekStart(now)

	if clan.LastWeekStart == nil {
		if err := clans.StampWeek(ctx, clan.Name, weekStart); err != nil {
			return 0, false, err
		}
		clan.LastWeekStart = &weekStart
		return clan.Points, false, nil
	}

	if !clan.LastWeekStart.Before(weekStart) {
		return clan.Points, false, nil
	}

	if err := clans.Archive(ctx, clan.Name, weekStart); err != nil {
		return 0, false, err
	}

	logging.Info("Clan week rolled over",
		"clan", clan.Name,
		"archived_points", clan.Points,
		"previous_week", clan.LastWeekStart.Format(time.RFC3339),
		"week_start", weekStart.Format(time.RFC3339),
	)
	if w.metrics != nil {
		w.metrics.RolloversTotal.Inc()
	}

	clan.LastWeekPoints = clan.Points
	clan.Points = 0
	clan.LastWeekStart = &weekStart
	return 0, true, nil
}
