package scheduler

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/model"
)

type Dispatcher interface {
	SendRoster(ctx context.Context, category model.Category, n int) (*model.RosterDispatch, error)
}

type Config struct {
	// Spec is a cron expression; empty disables scheduled sends.
	Spec string
	// Occurrence is the n passed to every scheduled roster send.
	Occurrence int
}

// Scheduler fires roster sends for every category on a cron spec, so
// reply requests go out without anyone hitting the send endpoints.
type Scheduler struct {
	log      *zap.Logger
	cfg      Config
	dispatch Dispatcher
	cron     *cron.Cron
}

func New(log *zap.Logger, cfg Config, dispatch Dispatcher) *Scheduler {
	return &Scheduler{
		log:      log,
		cfg:      cfg,
		dispatch: dispatch,
		cron:     cron.New(),
	}
}

func (s *Scheduler) Run(ctx context.Context) error {
	if s.cfg.Spec == "" {
		s.log.Info("Scheduled sends disabled")

		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.Spec, func() {
		s.sendAll(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("Scheduler started", zap.String("spec", s.cfg.Spec))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")

	return nil
}

func (s *Scheduler) sendAll(ctx context.Context) {
	for _, category := range model.Categories() {
		dispatch, err := s.dispatch.SendRoster(ctx, category, s.cfg.Occurrence)
		if err != nil {
			s.log.Error("Scheduled roster send failed",
				zap.String("category", string(category)),
				zap.Error(err),
			)

			continue
		}

		s.log.Info("Scheduled roster send finished",
			zap.String("category", string(category)),
			zap.String("event_date", dispatch.EventDate),
			zap.Int("sent", len(dispatch.Sent)),
		)
	}
}
