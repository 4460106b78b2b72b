package notifications

import (
	"context"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	pkgerrors "github.com/attarhouse/attarhouse-backend/pkg/errors"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/metrics"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox/payloads"
	"github.com/attarhouse/attarhouse-backend/pkg/sendgrid"
)

const (
	consumerName = "order-confirmation"
	jobName      = "order_confirmation_mail"
)

type eventResolver interface {
	Resolve(models.OutboxEvent) (*outbox.ResolvedEvent, error)
}

type idempotencyManager interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type mailSender interface {
	Send(ctx context.Context, mail sendgrid.Mail) error
}

type processResult struct {
	ack  bool
	nack bool
}

// Consumer reads order events off Pub/Sub and sends confirmation mail.
type Consumer struct {
	registry      eventResolver
	idempotency   idempotencyManager
	mailer        mailSender
	subscription  *pubsub.Subscriber
	workerMetrics *metrics.WorkerMetrics
	logg          *logger.Logger
}

// NewConsumer wires the dependencies for the confirmation mail worker.
func NewConsumer(registry eventResolver, idem idempotencyManager, mailer mailSender, subscription *pubsub.Subscriber, workerMetrics *metrics.WorkerMetrics, logg *logger.Logger) (*Consumer, error) {
	if registry == nil {
		return nil, errors.New("event registry is required")
	}
	if idem == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if mailer == nil {
		return nil, errors.New("mail sender is required")
	}
	if subscription == nil {
		return nil, errors.New("orders subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		registry:      registry,
		idempotency:   idem,
		mailer:        mailer,
		subscription:  subscription,
		workerMetrics: workerMetrics,
		logg:          logg,
	}, nil
}

// Run processes order events until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	started := time.Now()
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": msg.Attributes["event_type"],
	})

	event, err := eventFromMessage(msg)
	if err != nil {
		c.logg.Error(logCtx, "malformed event message", err)
		return processResult{ack: true}
	}

	resolved, err := c.registry.Resolve(event)
	if err != nil {
		c.logg.Error(logCtx, "unresolvable event", err)
		return processResult{ack: true}
	}

	payload, ok := resolved.Payload.(*payloads.OrderPlacedEvent)
	if !ok {
		c.logg.Warn(logCtx, "skipping event with unexpected payload type")
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(resolved.Envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id in envelope", err)
		return processResult{ack: true}
	}

	logCtx = c.logg.WithOrderNumber(logCtx, payload.OrderNumber)

	alreadyProcessed, err := c.idempotency.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if alreadyProcessed {
		c.logg.Info(logCtx, "confirmation already sent, skipping")
		return processResult{ack: true}
	}

	mail, err := ComposeOrderConfirmation(payload)
	if err != nil {
		c.logg.Error(logCtx, "composing confirmation failed", err)
		c.workerMetrics.IncFailure(jobName)
		return processResult{ack: true}
	}

	if err := c.mailer.Send(ctx, mail); err != nil {
		c.workerMetrics.IncFailure(jobName)
		// let the message redeliver once the marker is gone
		if delErr := c.idempotency.Delete(ctx, consumerName, eventID); delErr != nil {
			c.logg.Error(logCtx, "clearing idempotency marker failed", delErr)
		}
		if typed := pkgerrors.As(err); typed != nil && !pkgerrors.MetadataFor(typed.Code()).Retryable {
			c.logg.Error(logCtx, "confirmation rejected, dropping", err)
			return processResult{ack: true}
		}
		c.logg.Error(logCtx, "sending confirmation failed", err)
		return processResult{nack: true}
	}

	c.workerMetrics.IncSuccess(jobName)
	c.workerMetrics.ObserveDuration(jobName, time.Since(started))
	c.logg.Info(logCtx, "order confirmation sent")
	return processResult{ack: true}
}

func eventFromMessage(msg *pubsub.Message) (models.OutboxEvent, error) {
	eventType := msg.Attributes["event_type"]
	aggregateType := msg.Attributes["aggregate_type"]
	aggregateID, err := uuid.Parse(msg.Attributes["aggregate_id"])
	if err != nil {
		return models.OutboxEvent{}, errors.New("missing or invalid aggregate_id attribute")
	}
	return models.OutboxEvent{
		EventType:     enums.OutboxEventType(eventType),
		AggregateType: enums.OutboxAggregateType(aggregateType),
		AggregateID:   aggregateID,
		Payload:       msg.Data,
	}, nil
}
