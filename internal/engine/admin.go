package engine

import (
	"context"
	"time"

	"infinite-experiment/clanledger/internal/constants"
	gormModels "infinite-experiment/clanledger/internal/models/gorm"

	"gorm.io/gorm"
)

type AdjustRequest struct {
	UserID int64
	// ClanName defaults to the member's stored clan when empty.
	ClanName string
	// Amount is signed: positive adds, negative removes.
	Amount    int64
	ChannelID *int64
}

// AdminAdjust applies a manual correction. It skips multipliers, the cooldown and the
// daily budget. Additions still respect the clan cap; removals clamp the clan at zero
// and are refused when the member holds fewer points than requested.
func (e *Engine) AdminAdjust(ctx context.Context, req AdjustRequest) (*AwardResult, error) {
	start := time.Now()
	source := constants.SourceAdmin
	if req.Amount < 0 {
		source = constants.SourceAdminRemoval
	}

	res, err := e.adminAdjust(ctx, req, source)
	e.observe(source, res, err, start)
	if err != nil {
		return nil, err
	}

	e.publishMilestones(ctx, res, req.ChannelID, e.now())
	return res, nil
}

func (e *Engine) adminAdjust(ctx context.Context, req AdjustRequest, source string) (*AwardResult, error) {
	magnitude := req.Amount
	if magnitude < 0 {
		magnitude = -magnitude
	}
	if magnitude < 1 || magnitude > constants.MaxManualAdjustment {
		return nil, NewLimitError(constants.ErrCodeInvalidAmount, req.Amount, constants.MaxManualAdjustment)
	}

	clanName := req.ClanName
	if clanName == "" {
		user, err := e.users.GetByID(ctx, req.UserID)
		if err != nil {
			return nil, PersistenceError(err)
		}
		clanName = user.ClanNameOrEmpty()
		if clanName == "" {
			return nil, NewError(constants.ErrCodeUserNotInClan)
		}
	}

	now := e.now()
	unlock := e.locks.lockClanUser(clanName, req.UserID)
	defer unlock()

	clan, _, err := e.weekly.resolve(ctx, clanName, now)
	if err != nil {
		return nil, err
	}

	if req.Amount > 0 {
		if clan.Points+magnitude > clan.MaxPoints {
			return nil, NewLimitError(constants.ErrCodeClanCapExceeded, clan.Points, clan.MaxPoints)
		}
		return e.applyCredit(ctx, creditOp{
			userID:    req.UserID,
			clanName:  clanName,
			amount:    magnitude,
			source:    source,
			channelID: req.ChannelID,
			now:       now,
		})
	}

	return e.applyRemoval(ctx, req.UserID, clanName, magnitude, req.ChannelID, now)
}

func (e *Engine) applyRemoval(ctx context.Context, userID int64, clanName string, amount int64, channelID *int64, now time.Time) (*AwardResult, error) {
	res := &AwardResult{UserID: userID, ClanName: clanName, Amount: -amount, NewAchievements: []string{}}

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clans := e.clans.WithTx(tx)
		users := e.users.WithTx(tx)

		clan, err := clans.GetForUpdate(ctx, clanName)
		if err != nil {
			return err
		}
		if clan == nil {
			return NewError(constants.ErrCodeClanNotFound)
		}
		current, _, err := e.weekly.rollOverLocked(ctx, clans, clan, now)
		if err != nil {
			return err
		}

		user, err := users.GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		var held int64
		if user != nil {
			held = user.Points
		}
		if held < amount {
			return NewLimitError(constants.ErrCodeInvalidAmount, held, amount)
		}

		if err := users.DeductPoints(ctx, userID, amount); err != nil {
			return err
		}
		if err := clans.RemovePoints(ctx, clanName, amount); err != nil {
			return err
		}
		if err := e.logs.WithTx(tx).Append(ctx, &gormModels.PointLog{
			UserID:    userID,
			Amount:    -amount,
			Source:    constants.SourceAdminRemoval,
			Timestamp: now.UTC(),
			ChannelID: channelID,
		}); err != nil {
			return err
		}

		res.ClanPoints = current - amount
		if res.ClanPoints < 0 {
			res.ClanPoints = 0
		}
		res.UserPoints = held - amount
		return nil
	})
	if err != nil {
		return nil, e.wrapTxError(creditOp{userID: userID, clanName: clanName, amount: -amount, source: constants.SourceAdminRemoval}, err)
	}
	return res, nil
}
