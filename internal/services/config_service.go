package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/engine"
	"infinite-experiment/clanledger/internal/metrics"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"golang.org/x/sync/singleflight"
)

const runtimeConfigTTL = time.Minute

var runtimeConfigKey = string(constants.CachePrefixRuntimeConfig) + "runtime"

// RuntimeSnapshot is the cached view of every admin-mutated setting.
type RuntimeSnapshot struct {
	BonusRole string            `json:"bonus_role"`
	Whitelist []string          `json:"whitelist"`
	Channels  map[int64]float64 `json:"channels"`
	Events    []SeasonalWindow  `json:"events"`
}

type SeasonalWindow struct {
	Name       string  `json:"name"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Multiplier float64 `json:"multiplier"`
}

// ConfigService reads runtime configuration through a cache and evicts on every write.
// Concurrent misses share one store load. A load that overlaps a write is returned
// to its callers but never cached.
type ConfigService struct {
	repo       *repositories.ConfigRepository
	cache      common.CacheInterface
	metrics    *metrics.MetricsRegistry
	group      singleflight.Group
	generation atomic.Uint64
}

var _ engine.RuntimeConfig = (*ConfigService)(nil)

func NewConfigService(repo *repositories.ConfigRepository, cache common.CacheInterface, m *metrics.MetricsRegistry) *ConfigService {
	return &ConfigService{repo: repo, cache: cache, metrics: m}
}

func (s *ConfigService) Snapshot(ctx context.Context) (*RuntimeSnapshot, error) {
	var snap RuntimeSnapshot
	if s.cache.Get(runtimeConfigKey, &snap) {
		s.recordCache(true)
		return &snap, nil
	}
	s.recordCache(false)

	v, err, _ := s.group.Do(runtimeConfigKey, func() (interface{}, error) {
		gen := s.generation.Load()
		loaded, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() == gen {
			s.cache.Set(runtimeConfigKey, loaded, runtimeConfigTTL)
		}
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*RuntimeSnapshot), nil
}

func (s *ConfigService) load(ctx context.Context) (*RuntimeSnapshot, error) {
	bonus, err := s.repo.GetValue(ctx, constants.ConfigKeyBonusRole)
	if err != nil {
		return nil, err
	}
	roles, err := s.repo.WhitelistRoles(ctx)
	if err != nil {
		return nil, err
	}
	channels, err := s.repo.ChannelMultipliers(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.repo.ActiveSeasonalEvents(ctx)
	if err != nil {
		return nil, err
	}

	snap := &RuntimeSnapshot{
		BonusRole: bonus,
		Whitelist: roles,
		Channels:  make(map[int64]float64, len(channels)),
		Events:    make([]SeasonalWindow, 0, len(events)),
	}
	for _, c := range channels {
		snap.Channels[c.ChannelID] = c.Multiplier
	}
	for _, ev := range events {
		snap.Events = append(snap.Events, SeasonalWindow{
			Name:       ev.EventName,
			StartDate:  ev.StartDate,
			EndDate:    ev.EndDate,
			Multiplier: ev.PointMultiplier,
		})
	}
	return snap, nil
}

func (s *ConfigService) invalidate() {
	s.generation.Add(1)
	s.cache.Delete(runtimeConfigKey)
	// readers arriving after the write start a fresh load
	s.group.Forget(runtimeConfigKey)
}

func (s *ConfigService) recordCache(hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.CacheHitsTotal.WithLabelValues("runtime_config").Inc()
		return
	}
	s.metrics.CacheMissesTotal.WithLabelValues("runtime_config").Inc()
}

/* ---------- engine.RuntimeConfig ---------- */

func (s *ConfigService) BonusRole(ctx context.Context) (string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	return snap.BonusRole, nil
}

func (s *ConfigService) ChannelMultiplier(ctx context.Context, channelID int64) (float64, bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return 0, false, err
	}
	m, ok := snap.Channels[channelID]
	return m, ok, nil
}

// SeasonalMultipliers returns the multiplier of every event whose inclusive window contains now's UTC date.
func (s *ConfigService) SeasonalMultipliers(ctx context.Context, now time.Time) ([]float64, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	day := now.UTC().Format(constants.DateLayout)
	var out []float64
	for _, ev := range snap.Events {
		// ISO dates order correctly as strings
		if ev.StartDate <= day && day <= ev.EndDate {
			out = append(out, ev.Multiplier)
		}
	}
	return out, nil
}

/* ---------- admin mutations ---------- */

func (s *ConfigService) SetBonusRole(ctx context.Context, roleName string) error {
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return engine.Errorf(constants.ErrCodeInvalidInput, "role name is required")
	}
	if err := s.repo.SetValue(ctx, constants.ConfigKeyBonusRole, roleName); err != nil {
		return engine.PersistenceError(err)
	}
	s.invalidate()
	return nil
}

func (s *ConfigService) AddWhitelistRole(ctx context.Context, roleName string) error {
	roleName = strings.TrimSpace(roleName)
	if roleName == "" {
		return engine.Errorf(constants.ErrCodeInvalidInput, "role name is required")
	}
	added, err := s.repo.AddWhitelistRole(ctx, roleName)
	if err != nil {
		return engine.PersistenceError(err)
	}
	if !added {
		return engine.Errorf(constants.ErrCodeDuplicate, "role %s is already whitelisted", roleName)
	}
	s.invalidate()
	return nil
}

func (s *ConfigService) RemoveWhitelistRole(ctx context.Context, roleName string) error {
	removed, err := s.repo.RemoveWhitelistRole(ctx, roleName)
	if err != nil {
		return engine.PersistenceError(err)
	}
	if !removed {
		return engine.Errorf(constants.ErrCodeNotFound, "role %s is not whitelisted", roleName)
	}
	s.invalidate()
	return nil
}

func (s *ConfigService) WhitelistRoles(ctx context.Context) ([]string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Whitelist == nil {
		return []string{}, nil
	}
	return snap.Whitelist, nil
}

// IsWhitelisted reports whether any of roleNames is whitelisted.
func (s *ConfigService) IsWhitelisted(ctx context.Context, roleNames []string) (bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	for _, r := range roleNames {
		if common.ContainsString(snap.Whitelist, r) {
			return true, nil
		}
	}
	return false, nil
}

func (s *ConfigService) SetChannelMultiplier(ctx context.Context, channelID int64, multiplier float64, channelName string) error {
	if multiplier < constants.MinChannelMult || multiplier > constants.MaxChannelMult {
		return engine.Errorf(constants.ErrCodeInvalidAmount,
			"multiplier must be between %.1f and %.1f", constants.MinChannelMult, constants.MaxChannelMult)
	}
	err := s.repo.UpsertChannelMultiplier(ctx, &gormModels.ChannelMultiplier{
		ChannelID:   channelID,
		Multiplier:  multiplier,
		ChannelName: channelName,
	})
	if err != nil {
		return engine.PersistenceError(err)
	}
	s.invalidate()
	return nil
}

func (s *ConfigService) CreateSeasonalEvent(ctx context.Context, name, startDate, endDate string, multiplier float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return engine.Errorf(constants.ErrCodeInvalidInput, "event name is required")
	}
	if multiplier < constants.MinSeasonalMult || multiplier > constants.MaxSeasonalMult {
		return engine.Errorf(constants.ErrCodeInvalidAmount,
			"multiplier must be between %.1f and %.1f", constants.MinSeasonalMult, constants.MaxSeasonalMult)
	}
	start, err := time.Parse(constants.DateLayout, startDate)
	if err != nil {
		return engine.Errorf(constants.ErrCodeInvalidInput, "start date must be YYYY-MM-DD")
	}
	end, err := time.Parse(constants.DateLayout, endDate)
	if err != nil {
		return engine.Errorf(constants.ErrCodeInvalidInput, "end date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return engine.Errorf(constants.ErrCodeInvalidInput, "end date %s is before start date %s", endDate, startDate)
	}

	err = s.repo.UpsertSeasonalEvent(ctx, &gormModels.SeasonalEvent{
		EventName:       name,
		StartDate:       startDate,
		EndDate:         endDate,
		PointMultiplier: multiplier,
		IsActive:        true,
	})
	if err != nil {
		return engine.PersistenceError(fmt.Errorf("seasonal event %s: %w", name, err))
	}
	s.invalidate()
	return nil
}
