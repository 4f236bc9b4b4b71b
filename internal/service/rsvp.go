package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
	"github.com/wuwenhuang/bethel-rsvp/internal/model"
	"github.com/wuwenhuang/bethel-rsvp/pkg/mailer"
	"github.com/wuwenhuang/bethel-rsvp/pkg/token"
)

const (
	yesLinkTemplate = `<a href="%s" style="display:inline-block; padding:10px 14px; background:#2e7d32; color:#ffffff; text-decoration:none; border-radius:6px; font-weight:700;">Yes, I can make it</a>`
	noLinkTemplate  = `<a href="%s" style="display:inline-block; padding:10px 14px; background:#c62828; color:#ffffff; text-decoration:none; border-radius:6px; font-weight:700;">No, I can&#39;t</a>`
)

type RosterSource interface {
	Load(category model.Category) ([]model.RosterEntry, error)
}

type Config struct {
	BaseURL           string
	HostTemplateID    int64
	GreeterTemplateID int64
	TargetWeekday     time.Weekday
}

// RSVPService composes and dispatches reply-request notifications. Each
// message carries two links binding (recipient, event date) into a
// signed token, one per answer.
type RSVPService struct {
	log    *zap.Logger
	cfg    Config
	codec  *token.Codec
	mlr    mailer.Mailer
	roster RosterSource
	now    func() time.Time
}

func NewRSVPService(log *zap.Logger, cfg Config, codec *token.Codec, mlr mailer.Mailer, roster RosterSource) *RSVPService {
	return &RSVPService{
		log:    log,
		cfg:    cfg,
		codec:  codec,
		mlr:    mlr,
		roster: roster,
		now:    time.Now,
	}
}

// Send dispatches one notification. It never returns an error: every
// outcome is folded into the DeliveryResult so a roster pass can keep
// going and the HTTP layer can pick the right status code.
func (s *RSVPService) Send(ctx context.Context, category model.Category, email, name, eventDate string) model.DeliveryResult {
	tok, err := s.codec.Encode(token.Payload{Email: email, Date: eventDate})
	if err != nil {
		return model.DeliveryResult{
			Kind:    model.DeliveryException,
			Details: err.Error(),
		}
	}

	replyURL := fmt.Sprintf("%s/rsvp/%s/reply?token=%s", s.cfg.BaseURL, category, tok)

	msg := &mailer.Message{
		ToEmail:    email,
		ToName:     name,
		Subject:    fmt.Sprintf("RSVP needed: %s Opportunity for %s", category.Title(), eventDate),
		TemplateID: s.templateID(category),
		Variables: map[string]interface{}{
			"name":     name,
			"date":     eventDate,
			"yes_link": fmt.Sprintf(yesLinkTemplate, replyURL+"&answer=yes"),
			"no_link":  fmt.Sprintf(noLinkTemplate, replyURL+"&answer=no"),
		},
	}

	receipt, err := s.mlr.SendTemplate(ctx, msg)
	if err != nil {
		var providerErr *mailer.ProviderError
		if errors.As(err, &providerErr) {
			s.log.Warn("Provider rejected notification",
				zap.String("category", string(category)),
				zap.String("email", email),
				zap.Int("status", providerErr.StatusCode),
			)

			return model.DeliveryResult{
				Kind:    model.DeliveryProviderError,
				Status:  providerErr.StatusCode,
				Details: providerErr.Details,
			}
		}

		s.log.Error("Failed to dispatch notification",
			zap.String("category", string(category)),
			zap.String("email", email),
			zap.Error(err),
		)

		return model.DeliveryResult{
			Kind:    model.DeliveryException,
			Details: err.Error(),
		}
	}

	return model.DeliveryResult{
		OK:      true,
		Kind:    model.DeliverySuccess,
		Payload: receipt.Payload,
	}
}

// SendRoster computes the n-th upcoming target-weekday date, reads the
// category roster fresh and dispatches to every entry. Individual
// delivery failures do not stop the pass; they are aggregated into the
// returned error alongside the partial result.
func (s *RSVPService) SendRoster(ctx context.Context, category model.Category, n int) (*model.RosterDispatch, error) {
	date, err := NextWeekdayOccurrence(s.now(), s.cfg.TargetWeekday, n)
	if err != nil {
		return nil, err
	}
	eventDate := date.Format("2006-01-02")

	entries, err := s.roster.Load(category)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	for i, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("roster entry %d: %w", i, apperrors.ErrRosterEntryIncomplete)
		}
	}

	dispatch := &model.RosterDispatch{
		Category:  category,
		EventDate: eventDate,
	}

	var errs error

	for _, entry := range entries {
		result := s.Send(ctx, category, entry.Email, entry.Name, eventDate)
		if result.OK {
			dispatch.Sent = append(dispatch.Sent, entry)
			continue
		}

		dispatch.Failed = append(dispatch.Failed, model.FailedDelivery{Entry: entry, Result: result})
		errs = multierr.Append(errs, fmt.Errorf("%s: %s", entry.Email, result.Details))
	}

	s.log.Info("Roster dispatch finished",
		zap.String("category", string(category)),
		zap.String("event_date", eventDate),
		zap.Int("sent", len(dispatch.Sent)),
		zap.Int("failed", len(dispatch.Failed)),
	)

	return dispatch, errs
}

func (s *RSVPService) templateID(category model.Category) int64 {
	if category == model.CategoryGreeter {
		return s.cfg.GreeterTemplateID
	}

	return s.cfg.HostTemplateID
}
