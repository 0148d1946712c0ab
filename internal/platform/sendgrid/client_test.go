package sendgrid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, baseURL string, retries int) *client {
	t.Helper()
	log, _ := logger.New("test")
	c, err := New(log, Config{APIKey: "SG.test", BaseURL: baseURL, DefaultFromEmail: "noreply@skillswap.test", MaxRetries: retries})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cc := c.(*client)
	cc.backoff = time.Millisecond
	return cc
}

func TestSendBuildsMailRequest(t *testing.T) {
	var got mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" || r.Header.Get("Authorization") != "Bearer SG.test" {
			t.Errorf("unexpected request %s auth=%q", r.URL.Path, r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	res, err := newTestClient(t, srv.URL, 0).Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "learner@example.com"}},
		Subject: "Session booked",
		Text:    "See you soon",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "msg-1" || res.StatusCode != http.StatusAccepted {
		t.Fatalf("result: %+v", res)
	}
	if got.From.Email != "noreply@skillswap.test" || len(got.Content) != 1 || got.Personalizations[0].To[0].Email != "learner@example.com" {
		t.Fatalf("wire request: %+v", got)
	}
}

func TestSendRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3).Send(context.Background(), SendEmailRequest{
		To: []EmailAddress{{Email: "a@b.c"}}, Subject: "s", Text: "t",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls: want=3 got=%d", calls.Load())
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad from"}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL, 3).Send(context.Background(), SendEmailRequest{
		To: []EmailAddress{{Email: "a@b.c"}}, Subject: "s", Text: "t",
	})
	if err == nil || err.Error() != "sendgrid http 400: bad from" {
		t.Fatalf("error: got=%v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls: want=1 got=%d", calls.Load())
	}
}

func TestSendValidates(t *testing.T) {
	c := newTestClient(t, "http://unused", 0)
	if _, err := c.Send(context.Background(), SendEmailRequest{Subject: "s", Text: "t"}); err == nil {
		t.Fatalf("expected error without recipients")
	}
	if _, err := c.Send(context.Background(), SendEmailRequest{To: []EmailAddress{{Email: "a@b.c"}}, Subject: "s"}); err == nil {
		t.Fatalf("expected error without content")
	}
}
