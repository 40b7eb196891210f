package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tintin4303/uniplanner-sub000/internal/models"
)

func newSectionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sectionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "owner_id", "name", "section_label", "credits", "no_time", "active", "sessions", "created_at", "updated_at"})
}

func TestSectionRepositoryList(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	rows := sectionRows().
		AddRow("s1", "u1", "Calculus", "Section 1", 3, false, true,
			[]byte(`[{"day":"MONDAY","start":540,"end":630}]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, section_label, credits, no_time, active, sessions, created_at, updated_at FROM sections WHERE owner_id = $1 ORDER BY name ASC, section_label ASC, created_at ASC LIMIT 50 OFFSET 0")).
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sections WHERE owner_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.SectionFilter{OwnerID: "u1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	require.Len(t, list[0].Sessions, 1)
	assert.Equal(t, models.Monday, list[0].Sessions[0].Day)
	assert.Equal(t, 540, list[0].Sessions[0].Start)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryListActiveKeepsStableOrder(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	rows := sectionRows().
		AddRow("s1", "u1", "Art", "Section 1", 2, true, true, []byte(`[]`), time.Now(), time.Now()).
		AddRow("s2", "u1", "Math", "Section 1", 3, false, true,
			[]byte(`[{"day":"TUESDAY","start":600,"end":690}]`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, owner_id, name, section_label, credits, no_time, active, sessions, created_at, updated_at FROM sections WHERE owner_id = $1 AND active = TRUE ORDER BY name ASC, section_label ASC, created_at ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	list, err := repo.ListActive(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Art", list[0].Name)
	assert.True(t, list[0].NoTime)
	assert.Empty(t, list[0].Sessions)
	assert.Equal(t, "Math", list[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryCreateEncodesSessions(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec("INSERT INTO sections").
		WithArgs(sqlmock.AnyArg(), "u1", "Calculus", "Section 1", 3, false, true,
			[]byte(`[{"day":"MONDAY","start":540,"end":630}]`), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	section := &models.Section{
		OwnerID:      "u1",
		Name:         "Calculus",
		SectionLabel: "Section 1",
		Credits:      3,
		Active:       true,
		Sessions:     []models.ClassSession{{Day: models.Monday, Start: 540, End: 630}},
	}
	require.NoError(t, repo.Create(context.Background(), section))
	assert.NotEmpty(t, section.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec("UPDATE sections").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Section{ID: "missing", OwnerID: "u1", Name: "Calculus"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositoryDeleteBySubject(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sections WHERE owner_id = $1 AND LOWER(name) = LOWER($2)")).
		WithArgs("u1", "Calculus").
		WillReturnResult(sqlmock.NewResult(0, 3))

	removed, err := repo.DeleteBySubject(context.Background(), "u1", "Calculus")
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectionRepositorySetActive(t *testing.T) {
	db, mock, cleanup := newSectionRepoMock(t)
	defer cleanup()
	repo := NewSectionRepository(db)

	mock.ExpectExec("UPDATE sections SET active").
		WithArgs(false, sqlmock.AnyArg(), "s1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetActive(context.Background(), "s1", "u1", false))
	assert.NoError(t, mock.ExpectationsWereMet())
}
