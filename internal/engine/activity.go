package engine

import (
	"context"
	"errors"
	"time"

	"infinite-experiment/clanledger/internal/common"
	"infinite-experiment/clanledger/internal/constants"
)

// ActivityEvent is one inbound chat message as reported by the platform layer.
type ActivityEvent struct {
	UserID int64
	// MessageLength counts every character; VisibleLength excludes surrounding whitespace.
	MessageLength int
	VisibleLength int
	Timestamp     time.Time
	ChannelID     *int64
	HasBonusRole  bool
	RoleNames     []string
}

// ProcessActivity decides whether a message earns points and awards them.
// Ineligible messages are refused before any cooldown or budget state is touched.
func (e *Engine) ProcessActivity(ctx context.Context, ev ActivityEvent) (*AwardResult, error) {
	now := ev.Timestamp
	if now.IsZero() {
		now = e.now()
	}

	if !EligibleMessage(ev.VisibleLength) {
		return nil, NewError(constants.ErrCodeMessageIgnored)
	}

	clanName, err := e.directory.ResolveClan(ctx, ev.UserID, ev.RoleNames, now)
	if err != nil {
		return nil, err
	}
	if clanName == "" {
		return nil, NewError(constants.ErrCodeUserNotInClan)
	}
	// a member whose roles no longer include their stored clan earns nothing
	if len(ev.RoleNames) > 0 && !common.ContainsString(ev.RoleNames, clanName) {
		return nil, NewError(constants.ErrCodeUserNotInClan)
	}

	hasBonus, err := e.hasBonusRole(ctx, ev)
	if err != nil {
		return nil, err
	}

	release, ok := e.limiter.Reserve(ev.UserID, now)
	if !ok {
		err := NewLimitError(constants.ErrCodeRateLimited, 0, int64(e.cooldown/time.Second))
		e.observe(constants.SourceMessage, nil, err, time.Now())
		return nil, err
	}

	res, err := e.Award(ctx, AwardRequest{
		UserID:     ev.UserID,
		ClanName:   clanName,
		BaseAmount: MessagePoints(hasBonus, ev.MessageLength, now),
		Source:     constants.SourceMessage,
		ChannelID:  ev.ChannelID,
		At:         now,
	})
	if err != nil {
		// nothing was written, so a retry of the same message must not hit the cooldown
		var le *LedgerError
		if errors.As(err, &le) && le.Retryable() {
			release()
		}
		return nil, err
	}
	return res, nil
}

func (e *Engine) hasBonusRole(ctx context.Context, ev ActivityEvent) (bool, error) {
	if ev.HasBonusRole || e.config == nil {
		return ev.HasBonusRole, nil
	}
	role, err := e.config.BonusRole(ctx)
	if err != nil {
		return false, PersistenceError(err)
	}
	return role != "" && common.ContainsString(ev.RoleNames, role), nil
}
