package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type teamInviteEmailData struct {
	baseEmailData
	RecipientName string
	TeamName      string
	InviterName   string
	Role          string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderTeamInvite(invite TeamInvite) (string, error) {
	return renderEmailTemplate("team_invite.html", teamInviteEmailData{
		baseEmailData: baseEmailData{
			Title:    "Team invitation",
			Heading:  "You're invited to join " + invite.TeamName,
			CTALabel: "Open team",
			CTAURL:   invite.TeamURL,
		},
		RecipientName: invite.ToName,
		TeamName:      invite.TeamName,
		InviterName:   invite.InviterName,
		Role:          invite.Role,
	})
}
