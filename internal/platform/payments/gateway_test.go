package payments

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

const testSecret = "whsec_test_secret"

func testGateway(t *testing.T, cfg StripeConfig) Gateway {
	t.Helper()
	log, _ := logger.New("test")
	return NewStripeGateway(log, cfg)
}

func signedPayload(t *testing.T, body string, secret string) (string, []byte) {
	t.Helper()
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(body),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Header, signed.Payload
}

func TestParseWebhookPaymentSucceeded(t *testing.T) {
	g := testGateway(t, StripeConfig{WebhookSecret: testSecret})
	body := fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"type": %q,
		"data": {"object": {"id": "pi_123", "object": "payment_intent", "amount": 500, "currency": "usd",
			"metadata": {"userId": "u1", "tokenAmount": "50"}}}
	}`, EventPaymentIntentSucceeded)
	header, payload := signedPayload(t, body, testSecret)

	ev, err := g.ParseWebhook(payload, header)
	if err != nil {
		t.Fatalf("ParseWebhook: %v", err)
	}
	if ev.Type != EventPaymentIntentSucceeded || ev.PaymentIntent == nil {
		t.Fatalf("event: %+v", ev)
	}
	pi := ev.PaymentIntent
	if pi.ID != "pi_123" || pi.AmountCents != 500 || pi.Metadata["tokenAmount"] != "50" {
		t.Fatalf("payment intent: %+v", pi)
	}
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	g := testGateway(t, StripeConfig{WebhookSecret: testSecret})
	header, payload := signedPayload(t, `{"id":"evt_1","object":"event","type":"payment_intent.succeeded"}`, "whsec_other")
	if _, err := g.ParseWebhook(payload, header); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature got=%v", err)
	}
}

func TestUnconfiguredGateway(t *testing.T) {
	g := testGateway(t, StripeConfig{})
	if _, err := g.CreatePaymentIntent(context.Background(), PaymentIntentRequest{AmountCents: 100, Currency: "usd"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("create: want ErrNotConfigured got=%v", err)
	}
	if _, err := g.ParseWebhook([]byte("{}"), "t=1,v1=x"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("webhook: want ErrNotConfigured got=%v", err)
	}
}
