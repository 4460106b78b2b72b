package notifications

import (
	"context"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox/payloads"
	"github.com/attarhouse/attarhouse-backend/pkg/sendgrid"
)

type fakeResolver struct {
	resolved *outbox.ResolvedEvent
	err      error
}

func (f *fakeResolver) Resolve(models.OutboxEvent) (*outbox.ResolvedEvent, error) {
	return f.resolved, f.err
}

type fakeIdempotency struct {
	processed bool
	deleted   []uuid.UUID
}

func (f *fakeIdempotency) CheckAndMarkProcessed(_ context.Context, _ string, _ uuid.UUID) (bool, error) {
	return f.processed, nil
}

func (f *fakeIdempotency) Delete(_ context.Context, _ string, eventID uuid.UUID) error {
	f.deleted = append(f.deleted, eventID)
	return nil
}

type fakeMailer struct {
	sent []sendgrid.Mail
	err  error
}

func (f *fakeMailer) Send(_ context.Context, mail sendgrid.Mail) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, mail)
	return nil
}

func newTestConsumer(t *testing.T, resolver *fakeResolver, idem *fakeIdempotency, mailer *fakeMailer) *Consumer {
	t.Helper()
	return &Consumer{
		registry:    resolver,
		idempotency: idem,
		mailer:      mailer,
		logg:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	}
}

func orderPlacedResolved(t *testing.T) *outbox.ResolvedEvent {
	t.Helper()
	return &outbox.ResolvedEvent{
		Envelope: outbox.PayloadEnvelope{
			Version:    1,
			EventID:    uuid.NewString(),
			OccurredAt: time.Now(),
		},
		Payload: &payloads.OrderPlacedEvent{
			OrderID:       uuid.New(),
			OrderNumber:   "ORD-123456",
			OrderDate:     time.Now(),
			CustomerName:  "Sara Khan",
			CustomerEmail: "sara@example.com",
			PaymentMethod: enums.PaymentMethodCashOnDelivery,
			Subtotal:      "2300.00",
			Shipping:      "250.00",
			Total:         "2550.00",
			Items: []payloads.OrderPlacedLine{
				{ProductID: uuid.New(), Title: "Oud Royale", Quantity: 2, UnitPrice: "900.00", LineTotal: "1800.00"},
			},
		},
	}
}

func orderPlacedMessage(orderID uuid.UUID) *pubsub.Message {
	return &pubsub.Message{
		ID:   "m1",
		Data: []byte(`{}`),
		Attributes: map[string]string{
			"event_type":     string(enums.EventOrderPlaced),
			"aggregate_type": string(enums.AggregateOrder),
			"aggregate_id":   orderID.String(),
		},
	}
}

func TestConsumerSendsConfirmation(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	consumer := newTestConsumer(t, &fakeResolver{resolved: orderPlacedResolved(t)}, &fakeIdempotency{}, mailer)

	result := consumer.process(context.Background(), orderPlacedMessage(uuid.New()))
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("expected one mail, got %d", len(mailer.sent))
	}
	if mailer.sent[0].ToEmail != "sara@example.com" {
		t.Fatalf("unexpected recipient: %s", mailer.sent[0].ToEmail)
	}
}

func TestConsumerNacksTransientSendFailure(t *testing.T) {
	t.Parallel()

	idem := &fakeIdempotency{}
	mailer := &fakeMailer{err: pkgerrors.New(pkgerrors.CodeDependency, "mail request failed")}
	consumer := newTestConsumer(t, &fakeResolver{resolved: orderPlacedResolved(t)}, idem, mailer)

	result := consumer.process(context.Background(), orderPlacedMessage(uuid.New()))
	if !result.nack {
		t.Fatal("expected transient failure to nack")
	}
	if len(idem.deleted) != 1 {
		t.Fatalf("expected idempotency marker cleared once, got %d", len(idem.deleted))
	}
}

func TestConsumerDropsPermanentlyRejectedMail(t *testing.T) {
	t.Parallel()

	idem := &fakeIdempotency{}
	mailer := &fakeMailer{err: pkgerrors.New(pkgerrors.CodeValidation, "mail request rejected")}
	consumer := newTestConsumer(t, &fakeResolver{resolved: orderPlacedResolved(t)}, idem, mailer)

	result := consumer.process(context.Background(), orderPlacedMessage(uuid.New()))
	if !result.ack || result.nack {
		t.Fatalf("expected permanent rejection to ack, got %+v", result)
	}
	if len(idem.deleted) != 1 {
		t.Fatalf("expected idempotency marker cleared once, got %d", len(idem.deleted))
	}
}

func TestConsumerSkipsAlreadySentConfirmation(t *testing.T) {
	t.Parallel()

	mailer := &fakeMailer{}
	consumer := newTestConsumer(t, &fakeResolver{resolved: orderPlacedResolved(t)}, &fakeIdempotency{processed: true}, mailer)

	result := consumer.process(context.Background(), orderPlacedMessage(uuid.New()))
	if !result.ack {
		t.Fatal("expected duplicate delivery to ack")
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("expected no mail for duplicate delivery, got %d", len(mailer.sent))
	}
}
