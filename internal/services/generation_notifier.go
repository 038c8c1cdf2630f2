package services

import (
	"context"

	"github.com/google/uuid"

	redisbus "github.com/voyplan/voyplan-backend/internal/clients/redis"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/sse"
)

// generationNotifier publishes run events onto the redis bus, where every API
// instance's forwarder picks them up and fans them out to its SSE clients.
// Publishing is best-effort: a dropped event never affects the run.
type generationNotifier struct {
	bus redisbus.EventBus
	log *logger.Logger
}

func NewGenerationNotifier(bus redisbus.EventBus, baseLog *logger.Logger) *generationNotifier {
	return &generationNotifier{
		bus: bus,
		log: baseLog.With("service", "GenerationNotifier"),
	}
}

func (n *generationNotifier) Publish(ctx context.Context, tripID uuid.UUID, event sse.Event, data map[string]any) {
	if n.bus == nil {
		return
	}
	msg := sse.Message{
		Channel: sse.TripChannel(tripID),
		Event:   event,
		Data:    data,
	}
	if err := n.bus.Publish(ctx, msg); err != nil {
		n.log.Warn("Event publish failed", "trip_id", tripID, "event", event, "error", err)
	}
}
