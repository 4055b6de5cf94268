// Package client provides a Go client for the teams API together with a
// Manager that keeps the caller's view of their teams in sync.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"educare/internal/teams/transport"
	userstransport "educare/internal/users/transport"

	"github.com/google/uuid"
)

// Client is an HTTP client for the teams API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Config configures the teams API client.
type Config struct {
	// BaseURL points at the API root, e.g. https://host/api/v1.
	BaseURL string
	Token   string
	Timeout time.Duration
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("teams API returned %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// NewClient creates a new teams API client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListTeams returns the first page of the caller's teams.
func (c *Client) ListTeams(ctx context.Context) ([]transport.TeamResponse, error) {
	var teams []transport.TeamResponse
	err := c.do(ctx, http.MethodGet, "/teams?limit=100", nil, &teams)
	return teams, err
}

// CreateTeam creates a team.
func (c *Client) CreateTeam(ctx context.Context, req transport.CreateTeamRequest) (transport.TeamResponse, error) {
	var team transport.TeamResponse
	err := c.do(ctx, http.MethodPost, "/teams", req, &team)
	return team, err
}

// UpdateTeam changes a team.
func (c *Client) UpdateTeam(ctx context.Context, id uuid.UUID, req transport.UpdateTeamRequest) (transport.TeamResponse, error) {
	var team transport.TeamResponse
	err := c.do(ctx, http.MethodPut, "/teams/"+id.String(), req, &team)
	return team, err
}

// DeleteTeam removes a team.
func (c *Client) DeleteTeam(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/teams/"+id.String(), nil, nil)
}

// ListMembers returns a team's memberships.
func (c *Client) ListMembers(ctx context.Context, teamID uuid.UUID) ([]transport.MemberResponse, error) {
	var members []transport.MemberResponse
	err := c.do(ctx, http.MethodGet, "/teams/"+teamID.String()+"/members", nil, &members)
	return members, err
}

// InviteMember invites a user.
func (c *Client) InviteMember(ctx context.Context, teamID uuid.UUID, req transport.InviteMemberRequest) (transport.MemberResponse, error) {
	var member transport.MemberResponse
	err := c.do(ctx, http.MethodPost, "/teams/"+teamID.String()+"/members", req, &member)
	return member, err
}

// UpdateMember changes a membership.
func (c *Client) UpdateMember(ctx context.Context, teamID, userID uuid.UUID, req transport.UpdateMemberRequest) (transport.MemberResponse, error) {
	var member transport.MemberResponse
	err := c.do(ctx, http.MethodPut, "/teams/"+teamID.String()+"/members/"+userID.String(), req, &member)
	return member, err
}

// RemoveMember deletes a membership.
func (c *Client) RemoveMember(ctx context.Context, teamID, userID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/teams/"+teamID.String()+"/members/"+userID.String(), nil, nil)
}

// SearchInvitable finds users that may be invited to the team.
func (c *Client) SearchInvitable(ctx context.Context, teamID uuid.UUID, term string, limit int) ([]userstransport.UserResponse, error) {
	q := url.Values{}
	if term != "" {
		q.Set("search", term)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/teams/" + teamID.String() + "/invitable-users"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var users []userstransport.UserResponse
	err := c.do(ctx, http.MethodGet, path, nil, &users)
	return users, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && err != io.EOF {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}
