package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wuwenhuang/bethel-rsvp/internal/model"
	"github.com/wuwenhuang/bethel-rsvp/pkg/token"
)

type fakeLedger struct {
	recorded []string
	err      error
}

func (l *fakeLedger) Record(_ context.Context, identity, eventDate string, answer model.Answer, category model.Category) error {
	if l.err != nil {
		return l.err
	}

	l.recorded = append(l.recorded, identity+"|"+eventDate+"|"+string(answer)+"|"+string(category))

	return nil
}

type fakeDispatch struct {
	gotN     int
	dispatch *model.RosterDispatch
	err      error
}

func (d *fakeDispatch) SendRoster(_ context.Context, category model.Category, n int) (*model.RosterDispatch, error) {
	d.gotN = n

	if d.dispatch != nil {
		d.dispatch.Category = category
	}

	return d.dispatch, d.err
}

func newTestRouter(codec TokenCodec, ledger LedgerService, dispatch DispatchService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewRSVPHandler(zap.NewNop(), codec, ledger, dispatch, 3)

	router := gin.New()
	router.GET("/rsvp/host/reply", h.Reply(model.CategoryHost))
	router.GET("/rsvp/host/send", h.Send(model.CategoryHost))

	return router
}

func doRequest(t *testing.T, router *gin.Engine, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(rec, req)

	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body %q is not an error envelope: %v", rec.Body.String(), err)
	}

	return resp.Error
}

func TestReplyRejectsBadAnswerBeforeToken(t *testing.T) {
	codec := token.New("secret")
	router := newTestRouter(codec, &fakeLedger{}, &fakeDispatch{})

	tok, err := codec.Encode(token.Payload{Email: "ann@x.com", Date: "2026-01-11"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	// A valid token must not rescue an invalid answer.
	for _, target := range []string{
		"/rsvp/host/reply?token=" + tok + "&answer=maybe",
		"/rsvp/host/reply?token=garbage&answer=maybe",
		"/rsvp/host/reply?answer=",
	} {
		rec := doRequest(t, router, target)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "answer must be yes or no" {
			t.Fatalf("%s: unexpected error %q", target, msg)
		}
	}
}

func TestReplyRejectsInvalidToken(t *testing.T) {
	router := newTestRouter(token.New("secret"), &fakeLedger{}, &fakeDispatch{})

	rec := doRequest(t, router, "/rsvp/host/reply?token=garbage&answer=yes")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "invalid token" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestReplyRejectsTokenMissingFields(t *testing.T) {
	codec := token.New("secret")
	router := newTestRouter(codec, &fakeLedger{}, &fakeDispatch{})

	tok, err := codec.Encode(token.Payload{Email: "ann@x.com"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	rec := doRequest(t, router, "/rsvp/host/reply?token="+tok+"&answer=yes")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "token missing fields" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestReplyMapsLedgerFailureTo500(t *testing.T) {
	codec := token.New("secret")
	ledger := &fakeLedger{err: errors.New("pg: connection refused")}
	router := newTestRouter(codec, ledger, &fakeDispatch{})

	tok, _ := codec.Encode(token.Payload{Email: "ann@x.com", Date: "2026-01-11"})

	rec := doRequest(t, router, "/rsvp/host/reply?token="+tok+"&answer=yes")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	// The response must not leak the underlying failure.
	if msg := decodeError(t, rec); strings.Contains(msg, "pg:") {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestReplyRecordsAndRendersConfirmation(t *testing.T) {
	codec := token.New("secret")
	ledger := &fakeLedger{}
	router := newTestRouter(codec, ledger, &fakeDispatch{})

	tok, _ := codec.Encode(token.Payload{Email: "Ann@x.com", Date: "2026-01-11"})

	rec := doRequest(t, router, "/rsvp/host/reply?token="+tok+"&answer=YES")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); body != "<h2>Recorded: YES for 2026-01-11</h2>" {
		t.Fatalf("unexpected body: %q", body)
	}
	if len(ledger.recorded) != 1 || ledger.recorded[0] != "Ann@x.com|2026-01-11|yes|host" {
		t.Fatalf("unexpected ledger call: %v", ledger.recorded)
	}
}

func TestSendUsesDefaultOccurrence(t *testing.T) {
	dispatch := &fakeDispatch{dispatch: &model.RosterDispatch{
		EventDate: "2026-01-25",
		Sent:      []model.RosterEntry{{Name: "Ann", Email: "ann@x.com"}},
	}}
	router := newTestRouter(token.New("secret"), &fakeLedger{}, dispatch)

	rec := doRequest(t, router, "/rsvp/host/send")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if dispatch.gotN != 3 {
		t.Fatalf("expected default n=3, got %d", dispatch.gotN)
	}
	if body := rec.Body.String(); !strings.Contains(body, "ann@x.com") || !strings.Contains(body, "2026-01-25") {
		t.Fatalf("unexpected body: %q", body)
	}
}

func TestSendRejectsNonIntegerN(t *testing.T) {
	router := newTestRouter(token.New("secret"), &fakeLedger{}, &fakeDispatch{})

	rec := doRequest(t, router, "/rsvp/host/send?n=soon")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendMapsProviderErrorTo502(t *testing.T) {
	dispatch := &fakeDispatch{
		dispatch: &model.RosterDispatch{
			EventDate: "2026-01-25",
			Failed: []model.FailedDelivery{{
				Entry:  model.RosterEntry{Name: "Ann", Email: "ann@x.com"},
				Result: model.DeliveryResult{Kind: model.DeliveryProviderError, Status: 400},
			}},
		},
		err: errors.New("ann@x.com: invalid template"),
	}
	router := newTestRouter(token.New("secret"), &fakeLedger{}, dispatch)

	rec := doRequest(t, router, "/rsvp/host/send?n=1")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); !strings.Contains(msg, "ann@x.com") {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestSendMapsTransportExceptionTo500(t *testing.T) {
	dispatch := &fakeDispatch{
		dispatch: &model.RosterDispatch{
			EventDate: "2026-01-25",
			Failed: []model.FailedDelivery{{
				Entry:  model.RosterEntry{Name: "Ann", Email: "ann@x.com"},
				Result: model.DeliveryResult{Kind: model.DeliveryException},
			}},
		},
		err: errors.New("ann@x.com: dial tcp: connection refused"),
	}
	router := newTestRouter(token.New("secret"), &fakeLedger{}, dispatch)

	rec := doRequest(t, router, "/rsvp/host/send?n=1")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler()
	router := gin.New()
	router.GET("/", h.Home)
	router.GET("/health", h.Health)

	rec := doRequest(t, router, "/")
	if rec.Code != http.StatusOK || rec.Body.String() != "Welcome" {
		t.Fatalf("unexpected home response: %d %q", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var health map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("health body is not JSON: %v", err)
	}
	if !health["ok"] {
		t.Fatalf("unexpected health body: %q", rec.Body.String())
	}
}
