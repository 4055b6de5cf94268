// Package notification provides event handlers for sending notifications
// (emails and live SSE pushes) in response to domain events.
// Domain modules publish events; they never talk to mail or SSE directly.
package notification

import (
	"context"
	"strings"

	"educare/internal/email"
	"educare/internal/events"
	apphttp "educare/internal/http"
	"educare/internal/notification/sse"
	"educare/platform/config"
	"educare/platform/httpkit"
	"educare/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TeamMemberReader lists the users that should receive team-wide pushes.
type TeamMemberReader interface {
	ActiveMemberIDs(ctx context.Context, teamID uuid.UUID) ([]uuid.UUID, error)
}

// Module wires event subscriptions and the SSE endpoint.
type Module struct {
	sender  email.Sender
	sse     *sse.Service
	members TeamMemberReader
	cfg     config.NotificationConfig
	log     *logger.Logger
}

var _ apphttp.Module = (*Module)(nil)

// New creates the notification module.
func New(sender email.Sender, members TeamMemberReader, cfg config.NotificationConfig, log *logger.Logger) *Module {
	return &Module{
		sender:  sender,
		sse:     sse.New(log),
		members: members,
		cfg:     cfg,
		log:     log,
	}
}

// Name returns the module name.
func (m *Module) Name() string { return "notification" }

// SSE exposes the live event service.
func (m *Module) SSE() *sse.Service { return m.sse }

// RegisterRoutes mounts the live event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/notifications/stream", m.sse.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		id := httpkit.GetIdentity(c)
		return id.UserID(), id.IsAuthenticated()
	}))
}

// RegisterHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterHandlers(bus events.Bus) {
	events.Listen(bus, m.handleTeamMemberInvited)
	events.Listen(bus, m.handleChatMessagePosted)
	events.Listen(bus, m.handleChildProgressChanged)
}

func (m *Module) handleTeamMemberInvited(ctx context.Context, e events.TeamMemberInvited) error {
	m.sse.Publish(e.UserID, sse.Event{
		Type:    sse.EventTeamInvite,
		TeamID:  e.TeamID,
		Message: "You were invited to " + e.TeamName,
	})

	if strings.TrimSpace(e.Email) == "" {
		return nil
	}
	err := m.sender.SendTeamInviteEmail(ctx, email.TeamInvite{
		ToEmail:     e.Email,
		ToName:      e.FullName,
		TeamName:    e.TeamName,
		InviterName: e.InviterName,
		Role:        e.Role,
		TeamURL:     m.teamURL(e.TeamID),
	})
	if err != nil {
		m.log.WithContext(ctx).Error("team invite email failed", "team_id", e.TeamID, "user_id", e.UserID, "error", err)
		return err
	}
	return nil
}

func (m *Module) handleChatMessagePosted(ctx context.Context, e events.ChatMessagePosted) error {
	recipients, err := m.members.ActiveMemberIDs(ctx, e.TeamID)
	if err != nil {
		m.log.WithContext(ctx).Error("chat fan-out failed", "team_id", e.TeamID, "error", err)
		return err
	}

	m.sse.PublishToUsers(append(recipients, e.SenderID), sse.Event{
		Type:   sse.EventChatMessage,
		TeamID: e.TeamID,
		Data: map[string]interface{}{
			"id":       e.MessageID,
			"groupId":  e.GroupID,
			"senderId": e.SenderID,
			"content":  e.Content,
		},
	})
	return nil
}

func (m *Module) handleChildProgressChanged(ctx context.Context, e events.ChildProgressChanged) error {
	if e.ParentID == uuid.Nil {
		return nil
	}

	m.sse.Publish(e.ParentID, sse.Event{
		Type: sse.EventChildUpdated,
		Data: map[string]interface{}{"childId": e.ChildID, "progress": e.Progress},
	})
	return nil
}

func (m *Module) teamURL(teamID uuid.UUID) string {
	base := strings.TrimRight(m.cfg.GetAppBaseURL(), "/")
	return base + "/teams/" + teamID.String()
}
