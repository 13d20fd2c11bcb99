package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"infinite-experiment/clanledger/internal/constants"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a postgres-flavoured sqlx handle so Rebind emits $n placeholders.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestLeaderboardRepository_TopClans(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeaderboardRepository(db)

	mock.ExpectQuery(`SELECT name, points, max_points, last_week_points FROM clans ORDER BY points DESC, name ASC LIMIT \$1`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"name", "points", "max_points", "last_week_points"}).
			AddRow("Wolves", 900, 20000, 1200).
			AddRow("Bears", 700, 20000, 300))

	rows, err := repo.TopClans(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Wolves", rows[0].Name)
	assert.Equal(t, int64(1200), rows[0].LastWeekPoints)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRepository_ClanWeeks(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeaderboardRepository(db)

	week := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT name, points, max_points, last_week_points, last_week_start FROM clans ORDER BY name ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"name", "points", "max_points", "last_week_points", "last_week_start"}).
			AddRow("Bears", 700, 20000, 300, week).
			AddRow("Foxes", 50, 20000, 0, nil))

	rows, err := repo.ClanWeeks(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, rows[0].LastWeekStart)
	assert.True(t, week.Equal(*rows[0].LastWeekStart))
	assert.Nil(t, rows[1].LastWeekStart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRepository_RankInClan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeaderboardRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE clan_name = \$1 AND points > \$2`).
		WithArgs("Wolves", int64(50)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	rank, err := repo.RankInClan(context.Background(), "Wolves", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeaderboardRepository_ClanMembersError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewLeaderboardRepository(db)

	mock.ExpectQuery(`FROM users WHERE clan_name = \$1`).
		WithArgs("Wolves").
		WillReturnError(sql.ErrConnDone)

	_, err := repo.ClanMembers(context.Background(), "Wolves")
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeysRepo_GetStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApiKeysRepo(db)

	mock.ExpectQuery(`SELECT key, status, role FROM api_keys WHERE key = \$1`).
		WithArgs("bot-key").
		WillReturnRows(sqlmock.NewRows([]string{"key", "status", "role"}).AddRow("bot-key", true, "admin"))

	key, err := repo.GetStatus(context.Background(), "bot-key")
	require.NoError(t, err)
	assert.True(t, key.Status)
	assert.Equal(t, constants.RoleAdmin, key.Role)

	mock.ExpectQuery(`FROM api_keys`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
