package email

import (
	"strings"
	"testing"
)

func TestRenderTeamInvite(t *testing.T) {
	html, err := renderTeamInvite(TeamInvite{
		ToName:      "Sam",
		TeamName:    "Sunflower Room",
		InviterName: "Dr. Lee",
		Role:        "educator",
		TeamURL:     "https://app.example.com/teams/1",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Hi Sam", "Sunflower Room", "Dr. Lee has", "as educator", `href="https://app.example.com/teams/1"`} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected rendered mail to contain %q", want)
		}
	}
}

func TestRenderTeamInviteEscapesInput(t *testing.T) {
	html, err := renderTeamInvite(TeamInvite{TeamName: "<script>alert(1)</script>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<script>") {
		t.Fatal("expected team name to be escaped")
	}
}

func TestBuildMessage(t *testing.T) {
	s := NewSMTPSender("localhost", 1025, "", "", "noreply@example.com", "Educare+")
	msg, err := s.buildMessage("parent@example.com", "Hello", "<p>hi</p>")
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	if got := msg.GetToString(); len(got) != 1 || !strings.Contains(got[0], "parent@example.com") {
		t.Fatalf("unexpected recipients %v", got)
	}

	if _, err := s.buildMessage("not-an-address", "Hello", "x"); err == nil {
		t.Fatal("expected invalid recipient to fail")
	}
}
