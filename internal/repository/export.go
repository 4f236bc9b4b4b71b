package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wuwenhuang/bethel-rsvp/internal/model"
)

type ExportRepository struct {
	db *pgxpool.Pool
}

func NewExportRepository(db *pgxpool.Pool) *ExportRepository {
	return &ExportRepository{
		db: db,
	}
}

func insertExportTask(ctx context.Context, ext RepoExtension, task *model.ExportTask) error {
	const query = `
		INSERT INTO rsvp.export_outbox (id, category, identity, event_date, answer, answered_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING;
	`

	_, err := ext.Exec(ctx, query,
		task.ID,
		task.Category,
		task.Identity,
		task.EventDate,
		task.Answer,
		task.AnsweredAt,
	)
	if err != nil {
		return err
	}

	return nil
}

func (r *ExportRepository) SelectPendingBatch(ctx context.Context, ext RepoExtension, batchSize int) ([]model.ExportTask, error) {
	if ext == nil {
		ext = r.db
	}

	const query = `
		SELECT id, category, identity, event_date, answer, answered_at, created_at, exported, exported_at
		FROM rsvp.export_outbox
		WHERE exported = false
		ORDER BY created_at
		LIMIT $1;
	`

	rows, err := ext.Query(ctx, query, batchSize)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var tasks []model.ExportTask

	for rows.Next() {
		var task model.ExportTask
		if err := rows.Scan(
			&task.ID,
			&task.Category,
			&task.Identity,
			&task.EventDate,
			&task.Answer,
			&task.AnsweredAt,
			&task.CreatedAt,
			&task.Exported,
			&task.ExportedAt,
		); err != nil {
			return nil, err
		}

		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func (r *ExportRepository) UpdateAsExported(ctx context.Context, ext RepoExtension, taskID uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	const query = `
		UPDATE rsvp.export_outbox
		SET exported = true, exported_at = NOW()
		WHERE id = $1;
	`

	_, err := ext.Exec(ctx, query, taskID)
	if err != nil {
		return err
	}

	return nil
}
