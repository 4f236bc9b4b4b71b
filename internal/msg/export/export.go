package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/model"
	"github.com/wuwenhuang/bethel-rsvp/internal/repository"
	"github.com/wuwenhuang/bethel-rsvp/pkg/sheets"
)

const batchSizeMultiply = 5

// headerRow matches the legacy spreadsheet layout; answer and timestamp
// live in columns C and D.
var headerRow = []string{"client_email", "date", "answer", "answered_at"}

type Repository interface {
	SelectPendingBatch(ctx context.Context, ext repository.RepoExtension, batchSize int) ([]model.ExportTask, error)
	UpdateAsExported(ctx context.Context, ext repository.RepoExtension, taskID uuid.UUID) error
}

type Config struct {
	Name         string
	WorkerCount  int
	PollInterval time.Duration
	BatchSize    int
}

// Exporter drains queued export tasks into the spreadsheet replica. A
// failed task stays unexported and is retried on a later poll; the
// ledger remains the system of record either way.
type Exporter struct {
	l     *zap.Logger
	cfg   Config
	sheet sheets.ValuesAPI
	repo  Repository
}

func NewExporter(l *zap.Logger, cfg Config, sheet sheets.ValuesAPI, repo Repository) *Exporter {
	return &Exporter{
		l:     l,
		cfg:   cfg,
		sheet: sheet,
		repo:  repo,
	}
}

func (e *Exporter) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	taskPipe := make(chan model.ExportTask, e.cfg.BatchSize*batchSizeMultiply)

	for i := 0; i < e.cfg.WorkerCount; i++ {
		go e.worker(ctx, i, taskPipe)
	}

	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.l.Info("Sheet exporter stopped")
			close(taskPipe)

			return
		case <-ticker.C:
			tasks, err := e.repo.SelectPendingBatch(ctx, nil, e.cfg.BatchSize)
			if err != nil {
				e.l.Error("Failed to select pending export tasks", zap.Error(err))
				continue
			}

			for _, task := range tasks {
				taskPipe <- task
			}
		}
	}
}

func (e *Exporter) worker(ctx context.Context, id int, taskPipe <-chan model.ExportTask) {
	e.l.Info("Export worker started", zap.Int("id", id))

	for {
		select {
		case <-ctx.Done():
			e.l.Info("Export worker stopping", zap.Int("id", id))

			return
		case task, ok := <-taskPipe:
			if !ok {
				e.l.Info("Task channel closed", zap.Int("id", id))

				return
			}

			if err := e.applyAndMark(ctx, task); err != nil {
				e.l.Error("Failed to export task",
					zap.Error(err),
					zap.String("task_id", task.ID.String()),
				)

				continue
			}

			e.l.Debug("Task exported",
				zap.String("task_id", task.ID.String()),
				zap.String("tab", task.Category.Tab()),
			)
		}
	}
}

func (e *Exporter) applyAndMark(ctx context.Context, task model.ExportTask) error {
	if err := e.apply(ctx, task); err != nil {
		return fmt.Errorf("failed to apply task to sheet: %w", err)
	}

	if err := e.repo.UpdateAsExported(ctx, nil, task.ID); err != nil {
		return fmt.Errorf("failed to update as exported: %w", err)
	}

	return nil
}

// apply replays the legacy upsert against the replica tab: ensure the
// header, overwrite the answer cells of a matching row, else append.
func (e *Exporter) apply(ctx context.Context, task model.ExportTask) error {
	tab := task.Category.Tab()

	rows, err := e.sheet.Rows(ctx, tab)
	if err != nil {
		return err
	}

	if len(rows) == 0 {
		if err := e.sheet.Append(ctx, tab, headerRow); err != nil {
			return err
		}
		rows = [][]string{headerRow}
	}

	answeredAt := task.AnsweredAt.UTC().Format(time.RFC3339)

	for i, row := range rows[1:] {
		if !rowMatches(row, task.Identity, task.EventDate) {
			continue
		}

		// Sheet rows are 1-based and the header occupies row 1.
		rowNumber := i + 2

		return e.sheet.Update(ctx, tab,
			fmt.Sprintf("C%d:D%d", rowNumber, rowNumber),
			[][]string{{string(task.Answer), answeredAt}},
		)
	}

	return e.sheet.Append(ctx, tab, []string{task.Identity, task.EventDate, string(task.Answer), answeredAt})
}

func rowMatches(row []string, identity, eventDate string) bool {
	if len(row) < 2 {
		return false
	}

	return strings.EqualFold(strings.TrimSpace(row[0]), identity) &&
		strings.TrimSpace(row[1]) == eventDate
}
