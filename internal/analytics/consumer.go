package analytics

import (
	"context"
	"errors"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/attarhouse/attarhouse-backend/pkg/db/models"
	"github.com/attarhouse/attarhouse-backend/pkg/enums"
	"github.com/attarhouse/attarhouse-backend/pkg/logger"
	"github.com/attarhouse/attarhouse-backend/pkg/metrics"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox"
	"github.com/attarhouse/attarhouse-backend/pkg/outbox/payloads"
)

const (
	consumerName = "order-analytics"
	jobName      = "order_analytics_export"
)

type eventResolver interface {
	Resolve(models.OutboxEvent) (*outbox.ResolvedEvent, error)
}

type idempotencyManager interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

type rowExporter interface {
	InsertOrderPlaced(ctx context.Context, row OrderPlacedRow) error
}

type processResult struct {
	ack  bool
	nack bool
}

// Consumer reads order events off Pub/Sub and exports them to BigQuery.
type Consumer struct {
	registry      eventResolver
	idempotency   idempotencyManager
	exporter      rowExporter
	subscription  *pubsub.Subscriber
	workerMetrics *metrics.WorkerMetrics
	logg          *logger.Logger
}

// NewConsumer wires the dependencies for the analytics export worker.
func NewConsumer(registry eventResolver, idem idempotencyManager, exporter rowExporter, subscription *pubsub.Subscriber, workerMetrics *metrics.WorkerMetrics, logg *logger.Logger) (*Consumer, error) {
	if registry == nil {
		return nil, errors.New("event registry is required")
	}
	if idem == nil {
		return nil, errors.New("idempotency manager is required")
	}
	if exporter == nil {
		return nil, errors.New("row exporter is required")
	}
	if subscription == nil {
		return nil, errors.New("analytics subscription is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Consumer{
		registry:      registry,
		idempotency:   idem,
		exporter:      exporter,
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

	row, err := buildOrderPlacedRow(resolved.Envelope, payload)
	if err != nil {
		// row-shaping failures do not heal on redelivery
		c.logg.Error(logCtx, "building analytics row failed", err)
		c.workerMetrics.IncFailure(jobName)
		return processResult{ack: true}
	}

	alreadyProcessed, err := c.idempotency.CheckAndMarkProcessed(ctx, consumerName, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if alreadyProcessed {
		c.logg.Info(logCtx, "order already exported, skipping")
		return processResult{ack: true}
	}

	if err := c.exporter.InsertOrderPlaced(ctx, row); err != nil {
		c.workerMetrics.IncFailure(jobName)
		// let the message redeliver once the marker is gone
		if delErr := c.idempotency.Delete(ctx, consumerName, eventID); delErr != nil {
			c.logg.Error(logCtx, "clearing idempotency marker failed", delErr)
		}
		c.logg.Error(logCtx, "exporting order row failed", err)
		return processResult{nack: true}
	}

	c.workerMetrics.IncSuccess(jobName)
	c.workerMetrics.ObserveDuration(jobName, time.Since(started))
	c.logg.Info(logCtx, "order exported to analytics")
	return processResult{ack: true}
}

func eventFromMessage(msg *pubsub.Message) (models.OutboxEvent, error) {
	aggregateID, err := uuid.Parse(msg.Attributes["aggregate_id"])
	if err != nil {
		return models.OutboxEvent{}, errors.New("missing or invalid aggregate_id attribute")
	}
	return models.OutboxEvent{
		EventType:     enums.OutboxEventType(msg.Attributes["event_type"]),
		AggregateType: enums.OutboxAggregateType(msg.Attributes["aggregate_type"]),
		AggregateID:   aggregateID,
		Payload:       msg.Data,
	}, nil
}
