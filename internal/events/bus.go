package events

import (
	"context"

	platformevents "educare/platform/events"
	"educare/platform/logger"
)

type InMemoryBus = platformevents.InMemoryBus

func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return platformevents.NewInMemoryBus(log)
}

// Listen subscribes a typed handler. See platform/events.Listen.
func Listen[T Event](bus Bus, fn func(ctx context.Context, event T) error) {
	platformevents.Listen(bus, fn)
}
