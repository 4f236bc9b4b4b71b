package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/apperrors"
	"github.com/wuwenhuang/bethel-rsvp/internal/model"
	"github.com/wuwenhuang/bethel-rsvp/pkg/token"
)

type LedgerService interface {
	Record(ctx context.Context, identity, eventDate string, answer model.Answer, category model.Category) error
}

type DispatchService interface {
	SendRoster(ctx context.Context, category model.Category, n int) (*model.RosterDispatch, error)
}

type TokenCodec interface {
	Decode(tokenStr string) (token.Payload, error)
}

type RSVPHandler struct {
	log      *zap.Logger
	codec    TokenCodec
	ledger   LedgerService
	dispatch DispatchService
	// defaultOccurrence is used when the send endpoint gets no n param.
	defaultOccurrence int
}

func NewRSVPHandler(log *zap.Logger, codec TokenCodec, ledger LedgerService, dispatch DispatchService, defaultOccurrence int) *RSVPHandler {
	return &RSVPHandler{
		log:               log,
		codec:             codec,
		ledger:            ledger,
		dispatch:          dispatch,
		defaultOccurrence: defaultOccurrence,
	}
}

// Reply handles a signed reply link for one category. The answer param is
// checked before the token, so a bad answer is always a 400 no matter
// what the token contains.
func (h *RSVPHandler) Reply(category model.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		answer, err := model.ParseAnswer(c.Query("answer"))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: apperrors.ErrInvalidAnswer.Error()})

			return
		}

		payload, err := h.codec.Decode(c.Query("token"))
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: apperrors.ErrInvalidToken.Error()})

			return
		}

		if payload.Email == "" || payload.Date == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: apperrors.ErrTokenMissingFields.Error()})

			return
		}

		if err := h.ledger.Record(ctx, payload.Email, payload.Date, answer, category); err != nil {
			h.log.Error("Failed to record reply",
				zap.String("category", string(category)),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to record response"})

			return
		}

		body := fmt.Sprintf("<h2>Recorded: %s for %s</h2>", strings.ToUpper(string(answer)), payload.Date)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	}
}

// Send dispatches reply-request notifications to the whole category
// roster for the n-th upcoming target weekday.
func (h *RSVPHandler) Send(category model.Category) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		n := h.defaultOccurrence
		if raw := c.Query("n"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: "n must be an integer"})

				return
			}
			n = parsed
		}

		dispatch, err := h.dispatch.SendRoster(ctx, category, n)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInvalidOccurrence),
				errors.Is(err, apperrors.ErrRosterEntryIncomplete):
				c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			case dispatch != nil && dispatch.HasProviderError():
				c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
			default:
				h.log.Error("Roster dispatch failed",
					zap.String("category", string(category)),
					zap.Error(err),
				)
				c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
			}

			return
		}

		emails := make([]string, 0, len(dispatch.Sent))
		for _, entry := range dispatch.Sent {
			emails = append(emails, entry.Email)
		}

		body := fmt.Sprintf("<h2>RSVP (%s) Send to : %s on %s</h2>",
			category, strings.Join(emails, ", "), dispatch.EventDate)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	}
}
