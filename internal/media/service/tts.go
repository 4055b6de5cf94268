package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"educare/internal/media/transport"
	"educare/platform/apperr"
	"educare/platform/httpkit"
)

const maxTTSResponseBytes = 10 << 20

// TTSClient forwards synthesis requests to a text-to-speech HTTP endpoint.
type TTSClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewTTSClient creates a client for the default endpoint, which may be
// empty. Every call is bounded by timeout.
func NewTTSClient(endpoint string, timeout time.Duration) *TTSClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TTSClient{
		endpoint:   strings.TrimSpace(endpoint),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ttsPayload struct {
	Text     string `json:"text"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

// Synthesize posts payload to endpoint and returns the JSON response body.
func (c *TTSClient) Synthesize(ctx context.Context, endpoint string, payload ttsPayload) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperr.Validation("invalid text-to-speech endpoint")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperr.Wrap(apperr.KindBadGateway, "text-to-speech service timed out", err)
		}
		return nil, apperr.Wrap(apperr.KindBadGateway, "text-to-speech service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTTSResponseBytes))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindBadGateway, "failed to read text-to-speech response", err)
	}

	switch {
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, apperr.BadGateway(fmt.Sprintf("text-to-speech service returned %d", resp.StatusCode))
	case resp.StatusCode >= http.StatusBadRequest:
		rejected := apperr.BadRequest("text-to-speech request rejected")
		if json.Valid(raw) {
			rejected = rejected.WithDetails(json.RawMessage(raw))
		}
		return nil, rejected
	}

	if !json.Valid(raw) {
		return nil, apperr.BadGateway("text-to-speech service returned invalid JSON")
	}
	return json.RawMessage(raw), nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	return errors.As(err, &timeout) && timeout.Timeout()
}

// Speak proxies a synthesis request. A referenced resource must have TTS
// enabled and supplies its own endpoint and default voice.
func (s *Service) Speak(ctx context.Context, id httpkit.Identity, req transport.TTSRequest) (transport.TTSResponse, error) {
	var endpoint string
	if s.tts != nil {
		endpoint = s.tts.endpoint
	}
	payload := ttsPayload{Text: req.Text, Voice: req.Voice, Language: req.Language}

	if req.ResourceID != nil {
		item, err := s.repo.GetByID(ctx, *req.ResourceID, visibility(id))
		if err != nil {
			return nil, err
		}
		if !item.TTSEnabled || item.TTSEndpoint == nil {
			return nil, apperr.Validation("text-to-speech is not enabled for this resource")
		}
		endpoint = *item.TTSEndpoint
		if payload.Voice == "" {
			payload.Voice = deref(item.TTSVoice)
		}
	}

	if endpoint == "" || s.tts == nil {
		return nil, apperr.Unavailable("text-to-speech is not configured")
	}

	out, err := s.tts.Synthesize(ctx, endpoint, payload)
	if err != nil {
		s.log.WithContext(ctx).Warn("tts proxy failed", "endpoint", endpoint, "error", err)
		return nil, err
	}
	return out, nil
}

