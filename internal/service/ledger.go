package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
	"github.com/wuwenhuang/bethel-rsvp/internal/model"
)

type ResponseStore interface {
	RecordAndQueueExport(ctx context.Context, record *model.ResponseRecord, task *model.ExportTask) error
}

// LedgerService records reply answers. Exactly one record exists per
// (category, identity, event_date); recording again overwrites the
// answer and refreshes the timestamp, which makes link replays harmless.
type LedgerService struct {
	log       *zap.Logger
	responses ResponseStore
	now       func() time.Time
}

func NewLedgerService(log *zap.Logger, responses ResponseStore) *LedgerService {
	return &LedgerService{
		log:       log,
		responses: responses,
		now:       time.Now,
	}
}

func (s *LedgerService) Record(ctx context.Context, identity, eventDate string, answer model.Answer, category model.Category) error {
	identity = strings.ToLower(strings.TrimSpace(identity))
	eventDate = strings.TrimSpace(eventDate)

	if identity == "" {
		return apperrors.ErrEmptyIdentity
	}
	if eventDate == "" {
		return apperrors.ErrEmptyEventDate
	}
	if _, err := model.ParseAnswer(string(answer)); err != nil {
		return err
	}
	if _, err := model.ParseCategory(string(category)); err != nil {
		return err
	}

	answeredAt := s.now().UTC()

	record := &model.ResponseRecord{
		ID:         uuid.New(),
		Category:   category,
		Identity:   identity,
		EventDate:  eventDate,
		Answer:     answer,
		AnsweredAt: answeredAt,
	}

	task := &model.ExportTask{
		ID:         uuid.New(),
		Category:   category,
		Identity:   identity,
		EventDate:  eventDate,
		Answer:     answer,
		AnsweredAt: answeredAt,
	}

	if err := s.responses.RecordAndQueueExport(ctx, record, task); err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}

	s.log.Info("Response recorded",
		zap.String("category", string(category)),
		zap.String("identity", identity),
		zap.String("event_date", eventDate),
		zap.String("answer", string(answer)),
	)

	return nil
}
