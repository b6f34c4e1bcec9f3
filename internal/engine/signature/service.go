package signature

import "time"

// Service binds a configured secret to the signature operations.
// It is immutable and safe for concurrent use.
type Service struct {
	secret []byte
	now    func() time.Time
}

type Option func(*Service)

// WithClock overrides the clock used for validation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(secret string, opts ...Option) *Service {
	s := &Service{
		secret: []byte(secret),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HasSecret reports whether a non-empty secret is configured.
func (s *Service) HasSecret() bool {
	return len(s.secret) > 0
}

func (s *Service) Generate(payload []byte) (string, error) {
	return GenerateSignature(s.secret, payload)
}

func (s *Service) Verify(payload []byte, providedHex string) bool {
	return VerifySignature(s.secret, payload, providedHex)
}

func (s *Service) ValidateWebhook(rawBody []byte, providedHex string) ValidationResult {
	return validateWebhook(s.secret, rawBody, providedHex, s.now)
}
