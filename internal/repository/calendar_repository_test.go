package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/trainerdesk/backend/internal/errors"
	"github.com/trainerdesk/backend/internal/models"
)

func TestCalendarRepository_ReplaceBusyBlocks(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCalendarRepository(db)
	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 30)
	blocks := []models.BusyBlock{
		{ExternalEventID: "g-1", StartTime: from.Add(9 * time.Hour), EndTime: from.Add(10 * time.Hour)},
		{ExternalEventID: "g-2", StartTime: from.Add(33 * time.Hour), EndTime: from.Add(34 * time.Hour)},
	}

	t.Run("replaces atomically", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM calendar_busy_blocks").
			WithArgs("trainer-1", from, to).
			WillReturnResult(sqlmock.NewResult(0, 4))
		mock.ExpectExec("INSERT INTO calendar_busy_blocks").
			WithArgs("trainer-1", "g-1", blocks[0].StartTime, blocks[0].EndTime).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO calendar_busy_blocks").
			WithArgs("trainer-1", "g-2", blocks[1].StartTime, blocks[1].EndTime).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.ReplaceBusyBlocks(context.Background(), "trainer-1", from, to, blocks))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure keeps old blocks", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM calendar_busy_blocks").WillReturnResult(sqlmock.NewResult(0, 4))
		mock.ExpectExec("INSERT INTO calendar_busy_blocks").WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := repo.ReplaceBusyBlocks(context.Background(), "trainer-1", from, to, blocks)
		assert.True(t, ierr.Is(err, ierr.ErrDatabase))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCalendarRepository_ListConnections(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewCalendarRepository(db)
	synced := time.Now().Add(-time.Hour)

	mock.ExpectQuery("FROM calendar_connections ORDER BY trainer_id").
		WillReturnRows(sqlmock.NewRows([]string{"trainer_id", "workspace_id", "provider", "calendar_id", "refresh_token", "last_synced_at"}).
			AddRow("trainer-1", "ws-1", "google", "primary", "rt-1", synced).
			AddRow("trainer-2", "ws-1", "google", "primary", "rt-2", nil))

	conns, err := repo.ListConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 2)
	require.NotNil(t, conns[0].LastSyncedAt)
	assert.Nil(t, conns[1].LastSyncedAt)
	assert.Equal(t, "rt-2", conns[1].RefreshToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
