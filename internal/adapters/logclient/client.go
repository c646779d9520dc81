package logclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PabloGalante/studybuddy/internal/domain"
)

// DefaultURL is where the logging server listens by default.
const DefaultURL = "http://localhost:5050/log"

// Client posts finished exchanges to the logging server.
type Client struct {
	url  string
	http *http.Client
}

func New(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

type payload struct {
	Consent       bool           `json:"consent"`
	UserText      string         `json:"userText"`
	AssistantText string         `json:"assistantText"`
	Sources       []string       `json:"sources"`
	Meta          map[string]any `json:"meta"`
}

// Send implements domain.LogSink. Only source URIs go on the wire.
func (c *Client) Send(ctx context.Context, e domain.LogEntry) error {
	uris := make([]string, 0, len(e.Citations))
	for _, cit := range e.Citations {
		uris = append(uris, cit.URI)
	}

	body, err := json.Marshal(payload{
		Consent:       true,
		UserText:      e.UserText,
		AssistantText: e.AssistantText,
		Sources:       uris,
		Meta:          map[string]any{"sessionId": string(e.SessionID)},
	})
	if err != nil {
		return fmt.Errorf("encoding log entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building log request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("posting log: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("log server returned %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
