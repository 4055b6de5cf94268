package sse

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"educare/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func TestPublishToUsersDeduplicates(t *testing.T) {
	s := New(logger.Discard())
	userID := uuid.New()

	ch, unsubscribe := s.Subscribe(userID)
	s.PublishToUsers([]uuid.UUID{userID, userID, uuid.New()}, Event{Type: EventChatMessage})

	if len(ch) != 1 {
		t.Fatalf("expected exactly one buffered event, got %d", len(ch))
	}

	unsubscribe()
	if s.Connected(userID) != 0 {
		t.Fatal("expected connection to be removed")
	}
	if _, open := <-ch; open {
		t.Fatal("expected channel to be closed after unsubscribe")
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	s := New(logger.Discard())
	userID := uuid.New()
	ch, unsubscribe := s.Subscribe(userID)
	defer unsubscribe()

	for i := 0; i < clientBuffer+5; i++ {
		s.Publish(userID, Event{Type: EventTeamInvite})
	}
	if len(ch) != clientBuffer {
		t.Fatalf("expected buffer to cap at %d, got %d", clientBuffer, len(ch))
	}
}

func TestCloseThenUnsubscribeIsSafe(t *testing.T) {
	s := New(logger.Discard())
	_, unsubscribe := s.Subscribe(uuid.New())
	s.Close()
	unsubscribe()
}

func TestCloseEndsOpenStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	s := New(logger.Discard())
	userID := uuid.New()

	r := gin.New()
	r.GET("/stream", s.Handler(func(*gin.Context) (uuid.UUID, bool) { return userID, true }))

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))
	}()

	deadline := time.Now().Add(2 * time.Second)
	for s.Connected(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never connected")
		}
		time.Sleep(time.Millisecond)
	}

	s.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the stream handler to return after Close")
	}
	if !strings.Contains(rec.Body.String(), "event:connected") {
		t.Fatalf("expected connected event, got %q", rec.Body.String())
	}

	ch, unsubscribe := s.Subscribe(userID)
	defer unsubscribe()
	if _, open := <-ch; open || s.Connected(userID) != 0 {
		t.Fatal("expected subscriptions after Close to be refused")
	}
}
