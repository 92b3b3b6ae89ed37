package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/danmuck/himdisplay/internal/protocol/event"
)

// HTTPSender POSTs each envelope as JSON.
type HTTPSender struct {
	target string
	client *http.Client
}

func NewHTTPSender(target string, cfg Config) (*HTTPSender, error) {
	if target == "" {
		return nil, ErrTargetRequired
	}
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("transport: parse target: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("transport: unsupported scheme %q", u.Scheme)
	}
	cfg = cfg.WithDefaults()
	return &HTTPSender{
		target: u.String(),
		client: &http.Client{Timeout: cfg.ConnectTimeout + cfg.WriteTimeout},
	}, nil
}

func (s *HTTPSender) Name() string { return KindHTTP }

func (s *HTTPSender) Target() string { return s.target }

func (s *HTTPSender) Send(ctx context.Context, env event.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.target, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s status %d", ErrRejected, s.target, resp.StatusCode)
	}
	return nil
}

func (s *HTTPSender) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
