package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"educare/internal/email"
	"educare/internal/events"
	"educare/platform/logger"

	"github.com/google/uuid"
)

type testNotificationConfig struct{}

func (testNotificationConfig) GetAppBaseURL() string { return "https://app.example.com/" }

type testSender struct {
	invites []email.TeamInvite
	err     error
}

func (s *testSender) SendTeamInviteEmail(_ context.Context, invite email.TeamInvite) error {
	s.invites = append(s.invites, invite)
	return s.err
}

type testMembers struct {
	ids []uuid.UUID
	err error
}

func (m testMembers) ActiveMemberIDs(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return m.ids, m.err
}

func TestTeamMemberInvitedSendsEmail(t *testing.T) {
	sender := &testSender{}
	m := New(sender, testMembers{}, testNotificationConfig{}, logger.Discard())
	teamID := uuid.New()

	err := m.handleTeamMemberInvited(context.Background(), events.TeamMemberInvited{
		BaseEvent: events.NewBaseEvent(),
		TeamID:    teamID,
		TeamName:  "Sunflower Room",
		UserID:    uuid.New(),
		Email:     "educator@example.com",
		Role:      "educator",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(sender.invites) != 1 {
		t.Fatalf("expected one invite, got %d", len(sender.invites))
	}
	if got := sender.invites[0].TeamURL; got != "https://app.example.com/teams/"+teamID.String() {
		t.Fatalf("unexpected team url %q", got)
	}
}

func TestTeamMemberInvitedPropagatesSendFailure(t *testing.T) {
	sender := &testSender{err: errors.New("smtp down")}
	m := New(sender, testMembers{}, testNotificationConfig{}, logger.Discard())

	err := m.handleTeamMemberInvited(context.Background(), events.TeamMemberInvited{
		TeamID: uuid.New(), UserID: uuid.New(), Email: "a@example.com",
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestChatMessageFansOutOverSSE(t *testing.T) {
	memberID := uuid.New()
	m := New(&testSender{}, testMembers{ids: []uuid.UUID{memberID}}, testNotificationConfig{}, logger.Discard())

	ch, unsubscribe := m.SSE().Subscribe(memberID)
	defer unsubscribe()

	err := m.handleChatMessagePosted(context.Background(), events.ChatMessagePosted{
		MessageID: uuid.New(),
		GroupID:   uuid.New(),
		TeamID:    uuid.New(),
		SenderID:  uuid.New(),
		Content:   "hello",
	})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}

	select {
	case ev := <-ch:
		if ev.Type != "chat_message" {
			t.Fatalf("unexpected event type %q", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("expected event to be delivered")
	}
}
