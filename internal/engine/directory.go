package engine

import (
	"context"
	"time"

	"infinite-experiment/clanledger/internal/db/repositories"
	"infinite-experiment/clanledger/internal/logging"

	"gorm.io/gorm"
)

// Directory reconciles a member's stored clan assignment with the roles the chat
// platform reports. Role membership wins on conflict; the stored value is a cache.
type Directory struct {
	users *repositories.UserRepository
	clans *repositories.ClanRepository
}

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{
		users: repositories.NewUserRepository(db),
		clans: repositories.NewClanRepository(db),
	}
}

// ResolveClan returns the member's clan, or "" when they have none.
// When exactly one supplied role names a known clan and it differs from the stored
// assignment, the assignment is updated first.
func (d *Directory) ResolveClan(ctx context.Context, userID int64, roleNames []string, now time.Time) (string, error) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return "", PersistenceError(err)
	}
	stored := user.ClanNameOrEmpty()

	if len(roleNames) == 0 {
		return stored, nil
	}

	matched, err := d.matchClanRoles(ctx, roleNames)
	if err != nil {
		return "", err
	}
	if len(matched) != 1 || matched[0] == stored {
		return stored, nil
	}

	clanName := matched[0]
	if err := d.users.AssignClan(ctx, userID, clanName, now.UTC()); err != nil {
		return "", PersistenceError(err)
	}
	logging.Info("Clan assignment reconciled from roles",
		"user_id", userID,
		"previous", stored,
		"clan", clanName,
	)
	return clanName, nil
}

func (d *Directory) matchClanRoles(ctx context.Context, roleNames []string) ([]string, error) {
	names, err := d.clans.Names(ctx)
	if err != nil {
		return nil, PersistenceError(err)
	}
	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}

	seen := make(map[string]struct{})
	var matched []string
	for _, role := range roleNames {
		if _, ok := known[role]; !ok {
			continue
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		matched = append(matched, role)
	}
	return matched, nil
}
