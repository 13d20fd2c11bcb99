package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/logging"
	"infinite-experiment/clanledger/internal/metrics"
	"infinite-experiment/clanledger/internal/models/entities"
)

const weeklySummarySize = 3

// StandingsReader is the read-only view of clan standings the summary needs.
type StandingsReader interface {
	ClanWeeks(ctx context.Context) ([]entities.ClanRow, error)
}

// WeeklySummaryJob announces the top clans once every Monday (UTC). It only
// reads standings; rollover stays with the award engine.
type WeeklySummaryJob struct {
	standings StandingsReader
	publisher common.EventPublisher
	metrics   *metrics.MetricsRegistry
	now       func() time.Time

	mu       sync.Mutex
	lastSent string
}

func NewWeeklySummaryJob(
	standings StandingsReader,
	publisher common.EventPublisher,
	metricsReg *metrics.MetricsRegistry,
	now func() time.Time,
) *WeeklySummaryJob {
	if now == nil {
		now = time.Now
	}
	return &WeeklySummaryJob{
		standings: standings,
		publisher: publisher,
		metrics:   metricsReg,
		now:       now,
	}
}

// Run publishes the summary if today is Monday and it has not been sent yet.
// It reports whether an event was published.
func (j *WeeklySummaryJob) Run(ctx context.Context) (bool, error) {
	now := j.now().UTC()
	if now.Weekday() != time.Monday {
		j.record("skipped")
		return false, nil
	}

	day := now.Format(constants.DateLayout)
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.lastSent == day {
		j.record("skipped")
		return false, nil
	}

	rows, err := j.standings.ClanWeeks(ctx)
	if err != nil {
		j.record("error")
		return false, fmt.Errorf("failed to read clan standings: %w", err)
	}
	top := finishedWeekTop(rows, now, weeklySummarySize)
	if len(top) == 0 {
		j.record("empty")
		return false, nil
	}

	standings := make([]map[string]any, 0, len(top))
	for i, c := range top {
		standings = append(standings, map[string]any{
			"rank":   i + 1,
			"name":   c.name,
			"points": c.points,
		})
	}

	err = j.publisher.Publish(ctx, common.LedgerEvent{
		Type:       constants.EventWeeklySummary,
		Payload:    map[string]any{"top_clans": standings},
		OccurredAt: now,
	})
	if err != nil {
		j.record("error")
		return false, fmt.Errorf("failed to publish weekly summary: %w", err)
	}

	j.lastSent = day
	j.record("published")
	logging.Info("Weekly summary published", "clans", len(top), "date", day)
	return true, nil
}

type weekResult struct {
	name   string
	points int64
}

// finishedWeekTop ranks clans by the week that ended at the start of now's week,
// whether or not each clan has rolled over yet.
func finishedWeekTop(rows []entities.ClanRow, now time.Time, n int) []weekResult {
	results := make([]weekResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, weekResult{
			name:   r.Name,
			points: engine.FinishedWeekPoints(r.Points, r.LastWeekPoints, r.LastWeekStart, now),
		})
	}
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].points != results[b].points {
			return results[a].points > results[b].points
		}
		return results[a].name < results[b].name
	})
	if len(results) > n {
		results = results[:n]
	}
	return results
}

// RunScheduled runs the summary on a schedule until ctx is cancelled.
func (j *WeeklySummaryJob) RunScheduled(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := j.Run(ctx); err != nil {
		logging.Error("Weekly summary initial run failed", "error", err)
	}

	for {
		select {
		case <-ticker.C:
			if _, err := j.Run(ctx); err != nil {
				logging.Error("Weekly summary scheduled run failed", "error", err)
			}
		case <-ctx.Done():
			logging.Info("Weekly summary job shutting down")
			return
		}
	}
}

func (j *WeeklySummaryJob) record(result string) {
	if j.metrics != nil {
		j.metrics.WeeklySummaryRunsTotal.WithLabelValues(result).Inc()
	}
}
