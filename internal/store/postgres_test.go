package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWithDB(db), mock
}

func TestCreateJob(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO jobs").
		WithArgs(sqlmock.AnyArg(), string(StatusPending), "invoice", "t@e.com", "",
			[]byte("data"), "scan.png", "image/png").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	job, err := st.CreateJob(context.Background(), NewJob{
		DocumentType: "invoice",
		Email:        "t@e.com",
		FileData:     []byte("data"),
		FileName:     "scan.png",
		MimeType:     "image/png",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, job.ID)
	assert.Equal(t, StatusPending, job.Status)
	assert.Equal(t, int64(4), job.FileSizeBytes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimOldestPendingReturnsJob(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "status", "document_type", "email", "callback_webhook",
		"file_data", "file_name", "mime_type", "created_at", "updated_at",
	}).AddRow(
		"9b2e69c2-3d2e-4a39-9d3e-000000000001", string(StatusProcessing), "invoice", "t@e.com", "",
		[]byte("bytes"), "scan.png", "image/png", now, now,
	)

	mock.ExpectQuery("UPDATE jobs SET status").
		WithArgs(string(StatusProcessing), string(StatusPending)).
		WillReturnRows(rows)

	job, err := st.ClaimOldestPending(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)

	assert.Equal(t, StatusProcessing, job.Status)
	assert.Equal(t, []byte("bytes"), job.FileData)
	assert.Equal(t, int64(5), job.FileSizeBytes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimOldestPendingEmptyQueue(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("UPDATE jobs SET status").
		WithArgs(string(StatusProcessing), string(StatusPending)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	job, err := st.ClaimOldestPending(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeToleratesMissingRow(t *testing.T) {
	st, mock := newMockStore(t)
	result := `{"text":""}`

	mock.ExpectExec("UPDATE jobs").
		WithArgs("gone", string(StatusCompleted), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	// The row may have been deleted under the worker; this must not error.
	err := st.Finalize(context.Background(), "gone", StatusCompleted, &result, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeRejectsNonTerminalStatus(t *testing.T) {
	st, _ := newMockStore(t)
	err := st.Finalize(context.Background(), "id", StatusPending, nil, nil)
	assert.Error(t, err)
}

func TestDeleteJobProcessingWithoutForce(t *testing.T) {
	st, mock := newMockStore(t)
	id := "9b2e69c2-3d2e-4a39-9d3e-000000000001"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM jobs").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(StatusProcessing)))
	mock.ExpectRollback()

	err := st.DeleteJob(context.Background(), id, false)
	assert.ErrorIs(t, err, ErrJobProcessing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteJobProcessingWithForce(t *testing.T) {
	st, mock := newMockStore(t)
	id := "9b2e69c2-3d2e-4a39-9d3e-000000000001"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM jobs").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow(string(StatusProcessing)))
	mock.ExpectExec("DELETE FROM jobs").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := st.DeleteJob(context.Background(), id, true)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteJobNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT status FROM jobs").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))
	mock.ExpectRollback()

	err := st.DeleteJob(context.Background(), "missing", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetJobNotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery("FROM jobs WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := st.GetJob(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(StatusPending))
	assert.True(t, ValidStatus(StatusFailed))
	assert.False(t, ValidStatus("RUNNING"))
	assert.False(t, ValidStatus(""))
}
