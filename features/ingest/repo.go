package ingest

import (
	"context"
	"database/sql"
)

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Upsert(ctx context.Context, doc *Document) error {
	query := `INSERT INTO documents (filename, title, source, site, topic, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (filename) DO UPDATE SET
			title = EXCLUDED.title,
			source = EXCLUDED.source,
			site = EXCLUDED.site,
			topic = EXCLUDED.topic,
			status = EXCLUDED.status,
			error = '',
			updated_at = NOW()
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		doc.Filename, doc.Title, doc.Source, doc.Site, doc.Topic, doc.Status,
	).Scan(&doc.ID)
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, filename, status, errMsg string) error {
	query := `UPDATE documents SET status = $1, error = $2, updated_at = NOW() WHERE filename = $3`
	_, err := r.db.ExecContext(ctx, query, status, errMsg, filename)
	return err
}

func (r *PostgresRepo) SetChunkCount(ctx context.Context, filename string, count int) error {
	query := `UPDATE documents SET chunk_count = $1, updated_at = NOW() WHERE filename = $2`
	_, err := r.db.ExecContext(ctx, query, count, filename)
	return err
}

func (r *PostgresRepo) List(ctx context.Context) ([]Document, error) {
	query := `SELECT id, filename, title, source, site, topic, status, chunk_count, error, created_at, updated_at
		FROM documents ORDER BY filename`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Filename, &d.Title, &d.Source, &d.Site, &d.Topic,
			&d.Status, &d.ChunkCount, &d.Error, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *PostgresRepo) Delete(ctx context.Context, filename string) error {
	query := `DELETE FROM documents WHERE filename = $1`
	_, err := r.db.ExecContext(ctx, query, filename)
	return err
}
