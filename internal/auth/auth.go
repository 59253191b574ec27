package auth

import (
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
)

// Scheme is the credential scheme advertised on 401 responses.
const Scheme = "Bearer"

var (
	// ErrMissingCredential means no Authorization header was presented.
	ErrMissingCredential = errors.New("Missing Authorization header")
	// ErrInvalidCredential means the presented token does not match.
	ErrInvalidCredential = errors.New("Invalid authentication token")
)

// Authenticator validates inbound bearer tokens against a single shared
// secret. An empty secret disables authentication entirely.
type Authenticator struct {
	token  string
	logger *slog.Logger
}

func New(token string, logger *slog.Logger) *Authenticator {
	return &Authenticator{token: token, logger: logger}
}

// Enabled reports whether a secret is configured.
func (a *Authenticator) Enabled() bool {
	return a.token != ""
}

// Authorize checks the raw Authorization header value. The "Bearer " prefix
// is optional. Returns nil when the request is allowed.
func (a *Authenticator) Authorize(header string) error {
	if !a.Enabled() {
		a.logger.Debug("no API token configured, allowing request")
		return nil
	}

	if header == "" {
		a.logger.Warn("missing Authorization header")
		return ErrMissingCredential
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, Scheme+" "))
	a.logger.Debug("validating token", slog.String("token", Redact(token)))

	if subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
		a.logger.Warn("invalid authentication token provided")
		return ErrInvalidCredential
	}

	return nil
}

// Redact shortens a token for diagnostics so the full credential never
// reaches the logs.
func Redact(token string) string {
	if len(token) > 8 {
		return token[:4] + "..." + token[len(token)-4:]
	}
	return "***"
}
