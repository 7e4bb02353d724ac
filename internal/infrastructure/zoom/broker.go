// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

// Package zoom contains the Zoom provider integration: the per-tenant OAuth
// token broker, the REST API client, and the domain provider adapter.
package zoom

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/storely/meetgate/internal/domain"
	"github.com/storely/meetgate/internal/domain/models"
	"github.com/storely/meetgate/internal/logging"
	"github.com/storely/meetgate/internal/metrics"
)

const (
	// AuthURL is the OAuth token endpoint for server-to-server apps.
	AuthURL = "https://zoom.us/oauth/token"
	// tokenExpiryMargin is subtracted from the provider-reported expiry so a
	// token is never handed out moments before it dies mid-request.
	tokenExpiryMargin = 5 * time.Minute
	// tokenRequestTimeout bounds a single token exchange.
	tokenRequestTimeout = 10 * time.Second
)

// CredentialSource supplies the stored credentials for a tenant.
type CredentialSource interface {
	Credentials(ctx context.Context, tenantID string) (*models.TenantSettings, error)
}

type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// Broker exchanges per-tenant server-to-server credentials for access tokens
// and caches them until shortly before expiry. Safe for concurrent use;
// concurrent requests for the same tenant share one in-flight exchange.
type Broker struct {
	credentials CredentialSource
	authURL     string
	httpClient  *http.Client

	mu     sync.Mutex
	tokens map[string]cachedToken
	group  singleflight.Group
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithAuthURL overrides the token endpoint, used in tests.
func WithAuthURL(authURL string) BrokerOption {
	return func(b *Broker) {
		b.authURL = authURL
	}
}

// WithHTTPClient overrides the HTTP client used for token exchanges.
func WithHTTPClient(client *http.Client) BrokerOption {
	return func(b *Broker) {
		b.httpClient = client
	}
}

// NewBroker creates a token broker backed by the given credential source.
func NewBroker(credentials CredentialSource, opts ...BrokerOption) *Broker {
	b := &Broker{
		credentials: credentials,
		authURL:     AuthURL,
		httpClient:  &http.Client{Timeout: tokenRequestTimeout},
		tokens:      make(map[string]cachedToken),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// oauthConfig builds the client-credentials config for one credential set.
// Server-to-server OAuth needs grant_type=account_credentials plus the
// account id as form parameters, with the client pair in basic auth.
func (b *Broker) oauthConfig(settings *models.TenantSettings) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     settings.ClientID,
		ClientSecret: settings.ClientSecret,
		TokenURL:     b.authURL,
		EndpointParams: url.Values{
			"grant_type": []string{"account_credentials"},
			"account_id": []string{settings.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}
}

// Token returns a valid access token for the tenant, exchanging credentials
// with the provider only when the cached token is missing or near expiry.
func (b *Broker) Token(ctx context.Context, tenantID string) (string, error) {
	b.mu.Lock()
	if cached, ok := b.tokens[tenantID]; ok && time.Now().Before(cached.expiresAt) {
		b.mu.Unlock()
		return cached.accessToken, nil
	}
	b.mu.Unlock()

	token, err, _ := b.group.Do(tenantID, func() (any, error) {
		// Re-check under the group: a concurrent caller may have refreshed
		// the token while this one waited.
		b.mu.Lock()
		if cached, ok := b.tokens[tenantID]; ok && time.Now().Before(cached.expiresAt) {
			b.mu.Unlock()
			return cached.accessToken, nil
		}
		b.mu.Unlock()

		return b.exchange(ctx, tenantID)
	})
	if err != nil {
		return "", err
	}

	return token.(string), nil
}

func (b *Broker) exchange(ctx context.Context, tenantID string) (string, error) {
	settings, err := b.credentials.Credentials(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if settings == nil || settings.AccountID == "" || settings.ClientID == "" || settings.ClientSecret == "" {
		return "", domain.NewCredentialsMissingError(tenantID)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)

	tok, err := b.oauthConfig(settings).Token(ctx)
	if err != nil {
		metrics.TokenExchanges.WithLabelValues("error").Inc()
		slog.ErrorContext(ctx, "token exchange with provider failed",
			logging.ErrKey, err, "tenant_id", tenantID)
		return "", domain.NewTokenExchangeError("token exchange with provider failed", err)
	}
	metrics.TokenExchanges.WithLabelValues("ok").Inc()

	expiresAt := tok.Expiry.Add(-tokenExpiryMargin)
	if tok.Expiry.IsZero() {
		// Providers that omit expires_in get a short conservative lifetime.
		expiresAt = time.Now().Add(tokenExpiryMargin)
	}

	b.mu.Lock()
	b.tokens[tenantID] = cachedToken{accessToken: tok.AccessToken, expiresAt: expiresAt}
	b.mu.Unlock()

	slog.DebugContext(ctx, "provider access token refreshed",
		"tenant_id", tenantID, "expires_at", expiresAt)

	return tok.AccessToken, nil
}

// Invalidate drops the cached token for a tenant. Called whenever the
// tenant's credentials change or are deleted.
func (b *Broker) Invalidate(tenantID string) {
	b.mu.Lock()
	delete(b.tokens, tenantID)
	b.mu.Unlock()
}

// ValidateCredentials performs a raw token exchange with the given credential
// set without touching the cache, classifying provider rejections so callers
// can tell a malformed request from a bad client pair.
func (b *Broker) ValidateCredentials(ctx context.Context, settings *models.TenantSettings) error {
	if settings == nil || settings.AccountID == "" || settings.ClientID == "" || settings.ClientSecret == "" {
		return &domain.CredentialsInvalidError{Reason: domain.CredentialReasonMalformed, Detail: "incomplete credential set"}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, b.httpClient)

	_, err := b.oauthConfig(settings).Token(ctx)
	if err == nil {
		return nil
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		body := string(retrieveErr.Body)
		switch {
		case retrieveErr.ErrorCode == "invalid_request" || strings.Contains(body, "invalid_request"):
			return &domain.CredentialsInvalidError{Reason: domain.CredentialReasonMalformed, Detail: body}
		case retrieveErr.ErrorCode == "invalid_client" || strings.Contains(body, "invalid_client"):
			return &domain.CredentialsInvalidError{Reason: domain.CredentialReasonInvalidClient, Detail: body}
		default:
			return &domain.CredentialsInvalidError{Reason: domain.CredentialReasonUnknown, Detail: body}
		}
	}

	return domain.NewTokenExchangeError("credential validation request failed", err)
}
