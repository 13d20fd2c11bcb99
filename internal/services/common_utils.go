package services

import (
	"infinite-experiment/clanledger/internal/constants"
	"infinite-experiment/clanledger/internal/models/dtos"
	"infinite-experiment/clanledger/internal/models/entities"
)

// clampLimit applies the default for non-positive limits and caps large ones.
func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > constants.MaxQueryLimit {
		return constants.MaxQueryLimit
	}
	return limit
}

func userStandings(rows []entities.UserRow) []dtos.UserStanding {
	out := make([]dtos.UserStanding, 0, len(rows))
	for i, r := range rows {
		out = append(out, dtos.UserStanding{
			Rank:     i + 1,
			UserID:   r.UserID,
			ClanName: r.ClanName,
			Points:   r.Points,
		})
	}
	return out
}
