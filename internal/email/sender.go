// Package email renders and delivers the platform's transactional mail.
package email

import (
	"context"

	"educare/platform/logger"
)

// Sender delivers transactional emails.
type Sender interface {
	SendTeamInviteEmail(ctx context.Context, invite TeamInvite) error
}

// TeamInvite carries the data for a team invitation mail.
type TeamInvite struct {
	ToEmail     string
	ToName      string
	TeamName    string
	InviterName string
	Role        string
	TeamURL     string
}

// LogSender logs mail instead of sending it. Used when SMTP is not configured.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a sender that only logs.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) SendTeamInviteEmail(ctx context.Context, invite TeamInvite) error {
	s.log.WithContext(ctx).Info("email not sent (smtp disabled)",
		"template", "team_invite",
		"to", invite.ToEmail,
		"team", invite.TeamName,
	)
	return nil
}
