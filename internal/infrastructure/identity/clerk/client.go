// Package clerk implements the external identity provider interface against
// a Clerk-style API: session tokens are JWTs signed with the instance
// secret, profiles are fetched over the management HTTP API.
package clerk

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/campuscare/campuscare/internal/core/ports"
)

// Config captures the provider credentials and endpoint.
type Config struct {
	// SigningKey verifies session token signatures (HS256).
	SigningKey string
	// SecretKey authenticates management API calls.
	SecretKey string
	// APIBase is the management API root, e.g. https://api.clerk.com.
	APIBase string
	// Timeout bounds every HTTP call to the provider.
	Timeout time.Duration
}

type Client struct {
	signingKey []byte
	http       *resty.Client
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.APIBase).
		SetTimeout(timeout).
		SetAuthToken(cfg.SecretKey).
		SetHeader("Accept", "application/json")

	return &Client{
		signingKey: []byte(cfg.SigningKey),
		http:       httpClient,
	}
}

// Verify validates the session token's signature and expiry locally and
// returns the subject id. Any failure means the caller is unauthenticated.
func (c *Client) Verify(_ context.Context, token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.signingKey, nil
	})
	if err != nil || !tkn.Valid {
		return "", fmt.Errorf("verify session token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("verify session token: missing subject")
	}
	return claims.Subject, nil
}

// providerUser mirrors the provider's user resource shape.
type providerUser struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	EmailAddresses []struct {
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
}

// GetProfile fetches the subject's profile from the provider's HTTP API.
func (c *Client) GetProfile(ctx context.Context, subjectID string) (ports.Profile, error) {
	var user providerUser
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&user).
		SetPathParam("id", subjectID).
		Get("/v1/users/{id}")
	if err != nil {
		return ports.Profile{}, fmt.Errorf("identity provider: %w", err)
	}
	if resp.IsError() {
		return ports.Profile{}, fmt.Errorf("identity provider: status %d", resp.StatusCode())
	}

	profile := ports.Profile{
		Name: strings.TrimSpace(user.FirstName + " " + user.LastName),
	}
	if len(user.EmailAddresses) > 0 {
		profile.Email = user.EmailAddresses[0].EmailAddress
	}
	return profile, nil
}
