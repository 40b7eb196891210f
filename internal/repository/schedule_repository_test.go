package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

func newScheduleRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestScheduleRepositoryCreateSnapshotsPayload(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectExec("INSERT INTO saved_schedules").
		WithArgs(sqlmock.AnyArg(), "u1", "fall plan", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	saved := &models.SavedSchedule{
		OwnerID: "u1",
		Label:   "fall plan",
		Schedule: &models.Schedule{Sections: []models.Section{
			{ID: "s1", Name: "Calculus", SectionLabel: "Section 1", Credits: 3},
		}},
	}
	require.NoError(t, repo.Create(context.Background(), saved))
	assert.NotEmpty(t, saved.ID)
	assert.NotEmpty(t, saved.Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryFindByIDDecodesPayload(t *testing.T) {
	db, mock, cleanup := newScheduleRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	payload := []byte(`{"sections":[{"id":"s1","name":"Calculus","section_label":"Section 1","credits":3}]}`)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "label", "payload", "created_at"}).
		AddRow("sched-1", "u1", "fall plan", payload, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, label, payload, created_at FROM saved_schedules WHERE id = $1")).
		WithArgs("sched-1").
		WillReturnRows(rows)

	saved, err := repo.FindByID(context.Background(), "sched-1")
	require.NoError(t, err)
	require.NotNil(t, saved.Schedule)
	require.Len(t, saved.Schedule.Sections, 1)
	assert.Equal(t, "Calculus", saved.Schedule.Sections[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
