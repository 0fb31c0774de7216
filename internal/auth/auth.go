package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/service/models/apperr"
	"github.com/corray333/backend-labs/checkout/internal/service/models/session"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

var (
	ErrMissingCredential   = errors.New("missing authorization header")
	ErrMalformedCredential = errors.New("authorization header is not a bearer token")
	ErrRejectedCredential  = errors.New("credential rejected by identity provider")
)

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperr.Unauthorized(ErrMissingCredential)
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", apperr.Unauthorized(ErrMalformedCredential)
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", apperr.Unauthorized(ErrMalformedCredential)
	}

	return token, nil
}

// Client resolves bearer tokens through the identity provider's user endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the provider at baseURL.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// MustNewClient creates a Client from the auth.* settings.
func MustNewClient() *Client {
	baseURL := viper.GetString("auth.url")
	if baseURL == "" {
		panic("auth.url is not set in config")
	}

	return NewClient(
		baseURL,
		viper.GetString("auth.api_key"),
		time.Duration(viper.GetInt("auth.timeout_seconds"))*time.Second,
	)
}

type userResponse struct {
	ID string `json:"id"`
}

// Authenticate returns the session of the user owning token.
// Every failure, including an unreachable provider, is reported as Unauthorized.
func (c *Client) Authenticate(ctx context.Context, token string) (session.Session, error) {
	ctx, span := otel.Tracer("auth").Start(ctx, "Auth.Authenticate")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return session.Session{}, apperr.Unauthorized(fmt.Errorf("failed to build identity request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return session.Session{}, apperr.Unauthorized(fmt.Errorf("failed to reach identity provider: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)

		return session.Session{}, apperr.Unauthorized(
			fmt.Errorf("%w: status %d", ErrRejectedCredential, resp.StatusCode),
		)
	}

	var user userResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&user); err != nil {
		return session.Session{}, apperr.Unauthorized(fmt.Errorf("failed to decode identity response: %w", err))
	}
	if user.ID == "" {
		return session.Session{}, apperr.Unauthorized(fmt.Errorf("%w: empty user id", ErrRejectedCredential))
	}

	return session.Session{
		UserID: user.ID,
		Token:  token,
	}, nil
}
