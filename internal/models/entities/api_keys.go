package entities

import "infinite-experiment/clanledger/internal/constants"

type ApiKey struct {
	Key    string              `db:"key"`
	Status bool                `db:"status"`
	Role   constants.ActorRole `db:"role"`
}
