package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sigcheck/internal/engine/signature"
)

const (
	DefaultHeader  = "x-signature"
	DefaultTimeout = 10 * time.Second
	maxResponse    = 1 << 20
)

// Sender signs payloads and delivers them to a webhook endpoint.
type Sender struct {
	secret  []byte
	header  string
	timeout time.Duration
	client  *http.Client
}

type SenderOption func(*Sender)

func WithHTTPClient(c *http.Client) SenderOption {
	return func(s *Sender) { s.client = c }
}

func WithHeader(name string) SenderOption {
	return func(s *Sender) {
		if name != "" {
			s.header = name
		}
	}
}

// WithTimeout sets the request timeout. It applies to a copy of the client,
// never to one passed through WithHTTPClient.
func WithTimeout(d time.Duration) SenderOption {
	return func(s *Sender) { s.timeout = d }
}

func NewSender(secret string, opts ...SenderOption) *Sender {
	s := &Sender{
		secret: []byte(secret),
		header: DefaultHeader,
	}
	for _, opt := range opts {
		opt(s)
	}

	var client http.Client
	if s.client != nil {
		client = *s.client
	} else {
		client.Timeout = DefaultTimeout
	}
	if s.timeout > 0 {
		client.Timeout = s.timeout
	}
	s.client = &client
	return s
}

// Delivery describes one signed POST and what came back.
type Delivery struct {
	ID         string
	Signature  string
	StatusCode int
	// Body is the decoded JSON response, nil when the response was not JSON.
	Body    map[string]interface{}
	RawBody []byte
}

// Send signs payload and POSTs it to url. A non-2xx response is not an error.
func (s *Sender) Send(ctx context.Context, url string, payload []byte) (*Delivery, error) {
	sig, err := signature.GenerateSignature(s.secret, payload)
	if err != nil {
		return nil, fmt.Errorf("sign payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	delivery := &Delivery{ID: uuid.NewString(), Signature: sig}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(s.header, sig)
	req.Header.Set("X-Request-ID", delivery.ID)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	delivery.StatusCode = resp.StatusCode
	delivery.RawBody, err = io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var body map[string]interface{}
	if json.Unmarshal(delivery.RawBody, &body) == nil {
		delivery.Body = body
	}

	log.Debug().
		Str("delivery_id", delivery.ID).
		Str("url", url).
		Int("status", resp.StatusCode).
		Msg("webhook delivered")

	return delivery, nil
}
