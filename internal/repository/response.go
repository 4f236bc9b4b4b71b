package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wuwenhuang/bethel-rsvp/internal/model"
)

type ResponseRepository struct {
	db *pgxpool.Pool
}

func NewResponseRepository(db *pgxpool.Pool) *ResponseRepository {
	return &ResponseRepository{
		db: db,
	}
}

func (r *ResponseRepository) Pool() *pgxpool.Pool {
	return r.db
}

// Upsert writes the answer for (category, identity, event_date), keeping
// at most one row per key. The conditional write is atomic in the store,
// so concurrent replies for the same key cannot race into duplicates.
func (r *ResponseRepository) Upsert(ctx context.Context, ext RepoExtension, record *model.ResponseRecord) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		INSERT INTO rsvp.responses (id, category, identity, event_date, answer, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (category, identity, event_date)
		DO UPDATE SET answer = EXCLUDED.answer, answered_at = EXCLUDED.answered_at;
	`

	_, err := ext.Exec(ctx, query,
		record.ID,
		record.Category,
		record.Identity,
		record.EventDate,
		record.Answer,
		record.AnsweredAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordAndQueueExport applies the upsert and queues the spreadsheet
// export task in a single transaction, so the replica never learns about
// an answer the ledger did not commit.
func (r *ResponseRepository) RecordAndQueueExport(ctx context.Context, record *model.ResponseRecord, task *model.ExportTask) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := r.Upsert(ctx, tx, record); err != nil {
		return fmt.Errorf("failed to upsert response: %w", err)
	}

	if err := insertExportTask(ctx, tx, task); err != nil {
		return fmt.Errorf("failed to queue export task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *ResponseRepository) SelectByCategory(ctx context.Context, ext RepoExtension, category model.Category) ([]model.ResponseRecord, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, category, identity, event_date, answer, answered_at
		FROM rsvp.responses
		WHERE category = $1
		ORDER BY event_date, identity;
	`

	rows, err := ext.Query(ctx, query, category)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var records []model.ResponseRecord

	for rows.Next() {
		var record model.ResponseRecord
		if err := rows.Scan(
			&record.ID,
			&record.Category,
			&record.Identity,
			&record.EventDate,
			&record.Answer,
			&record.AnsweredAt,
		); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	return records, rows.Err()
}
