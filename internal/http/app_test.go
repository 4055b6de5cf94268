package http

import (
	"testing"

	"educare/internal/events"
	"educare/platform/logger"
)

type plainModule struct{}

func (plainModule) Name() string                       { return "plain" }
func (plainModule) RegisterRoutes(ctx *RouterContext) {}

type subscribingModule struct {
	plainModule
	subscribed int
}

func (m *subscribingModule) RegisterHandlers(bus events.Bus) { m.subscribed++ }

func TestSubscribeAllSkipsModulesWithoutHandlers(t *testing.T) {
	sub := &subscribingModule{}
	app := &App{
		Logger:   logger.Discard(),
		EventBus: events.NewInMemoryBus(logger.Discard()),
		Modules:  []Module{plainModule{}, sub},
	}

	app.SubscribeAll()

	if sub.subscribed != 1 {
		t.Fatalf("expected one registration, got %d", sub.subscribed)
	}
}
