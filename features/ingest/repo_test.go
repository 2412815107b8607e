package ingest_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turath/features/ingest"
)

func TestPostgresRepo_Upsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	doc := &ingest.Document{
		Filename: "carthage_en.txt",
		Title:    "Carthage",
		Source:   "Wikipedia",
		Site:     "Carthage",
		Topic:    "Carthage",
		Status:   ingest.StatusIngesting,
	}

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.Filename, doc.Title, doc.Source, doc.Site, doc.Topic, doc.Status).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("1"))

	err = repo.Upsert(context.Background(), doc)
	assert.NoError(t, err)
	assert.Equal(t, "1", doc.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET status = $1, error = $2, updated_at = NOW() WHERE filename = $3")).
		WithArgs(ingest.StatusFailed, "read file: permission denied", "broken.txt").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateStatus(context.Background(), "broken.txt", ingest.StatusFailed, "read file: permission denied")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_SetChunkCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE documents SET chunk_count = $1, updated_at = NOW() WHERE filename = $2")).
		WithArgs(12, "carthage_en.txt").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.SetChunkCount(context.Background(), "carthage_en.txt", 12)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "filename", "title", "source", "site", "topic", "status", "chunk_count", "error", "created_at", "updated_at"}).
		AddRow("1", "carthage_en.txt", "Carthage", "Wikipedia", "Carthage", "Carthage", ingest.StatusCompleted, 12, "", now, now).
		AddRow("2", "dougga_en.txt", "Dougga", "Wikipedia", "Dougga", "Dougga", ingest.StatusIngesting, 0, "", now, now)

	mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY filename").WillReturnRows(rows)

	docs, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "carthage_en.txt", docs[0].Filename)
	assert.Equal(t, 12, docs[0].ChunkCount)
	assert.Equal(t, ingest.StatusIngesting, docs[1].Status)
}

func TestPostgresRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := ingest.NewPostgresRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM documents WHERE filename = $1")).
		WithArgs("carthage_en.txt").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Delete(context.Background(), "carthage_en.txt")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
