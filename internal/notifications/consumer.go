package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	dbtypes "github.com/collabhub/projects-backend/pkg/db/types"
	"github.com/collabhub/projects-backend/pkg/enums"
	"github.com/collabhub/projects-backend/pkg/events"
	"github.com/collabhub/projects-backend/pkg/logger"
)

const domainEventConsumer = "notification-engine"

// idempotencyManager guards against duplicate deliveries of the same event.
type idempotencyManager interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Consumer turns domain events from the shared topic into notification
// fan-outs. Malformed messages are acked away; transient failures are nacked
// after rolling back the idempotency mark so redelivery retries them.
type Consumer struct {
	service      *Service
	subscription *pubsub.Subscriber
	idempotency  idempotencyManager
	logg         *logger.Logger
}

func NewConsumer(service *Service, subscription *pubsub.Subscriber, manager idempotencyManager, logg *logger.Logger) (*Consumer, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		service:      service,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
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

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawAction := msg.Attributes[events.AttributeAction]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id":   msg.ID,
		"event_action": rawAction,
	})

	action, err := enums.ParseEventAction(rawAction)
	if err != nil {
		c.logg.Info(logCtx, "skipping unrecognized event action")
		return processResult{ack: true}
	}

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainEventConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload domainEventPayload
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, domainEventConsumer, eventID)
		return processResult{nack: true}
	}
	if payload.ProjectID == uuid.Nil {
		c.logg.Error(logCtx, "payload missing project id", nil)
		return processResult{ack: true}
	}

	event := Event{
		ID:        eventID,
		Action:    action,
		ProjectID: payload.ProjectID,
		SenderID:  payload.SenderID,
		Context:   payload.Context,
	}

	if err := c.service.Notify(ctx, event); err != nil {
		c.logg.Error(logCtx, "notification fan-out failed", err)
		_ = c.idempotency.Delete(ctx, domainEventConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

type domainEventPayload struct {
	ProjectID uuid.UUID                   `json:"projectId"`
	SenderID  *uuid.UUID                  `json:"senderId,omitempty"`
	Context   dbtypes.NotificationContext `json:"context"`
}
