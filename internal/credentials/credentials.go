// Package credentials resolves the secrets used to talk to the payments provider and the CMS.
package credentials

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/markket/storefront-api/internal/config"
	"github.com/markket/storefront-api/internal/helpers"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrMissingAdminToken is returned by the admin token source when no token is configured.
var ErrMissingAdminToken = errors.New("missing [MARKKET_API_KEY]")

// Credentials is a helper struct to hold the application secrets.
type Credentials struct {
	StripeSecretKey     string `json:"stripe_secret_key,omitempty"`
	StripeSecretKeyTest string `json:"stripe_secret_key_test,omitempty"`
	StripeWebhookSecret string `json:"stripe_webhook_secret,omitempty"`
	CMSAdminToken       string `json:"cms_admin_token,omitempty"`
}

// StripeKey returns the live or sandbox secret key.
func (c Credentials) StripeKey(testMode bool) string {
	if testMode {
		return c.StripeSecretKeyTest
	}
	return c.StripeSecretKey
}

// merge fills every empty field of c from fallback.
func (c Credentials) merge(fallback Credentials) Credentials {
	if c.StripeSecretKey == "" {
		c.StripeSecretKey = fallback.StripeSecretKey
	}
	if c.StripeSecretKeyTest == "" {
		c.StripeSecretKeyTest = fallback.StripeSecretKeyTest
	}
	if c.StripeWebhookSecret == "" {
		c.StripeWebhookSecret = fallback.StripeWebhookSecret
	}
	if c.CMSAdminToken == "" {
		c.CMSAdminToken = fallback.CMSAdminToken
	}
	return c
}

// SecretGetter fetches a named secret, typically from SSM Parameter Store.
type SecretGetter interface {
	GetSecret(ctx context.Context, key string, encrypted bool) (string, error)
}

// Store resolves credentials once and serves them read-only afterwards.
type Store struct {
	logger  *slog.Logger
	mode    string
	ssmKey  string
	static  Credentials
	secrets SecretGetter

	mu     sync.Mutex
	cached *Credentials
}

// Option is a functional option used to configure a Store.
type Option func(*Store)

// NewStore initializes a Store. The static credentials are used as-is in env mode and as fallback in ssm mode.
func NewStore(static Credentials, opts ...Option) *Store {
	_inst := &Store{static: static, mode: config.CredentialsModeEnv}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("credentialsMode", _inst.mode)
	return _inst
}

// Retrieve returns the credentials for the configured mode. SSM lookups are cached after the first success.
func (s *Store) Retrieve(ctx context.Context) (Credentials, error) {
	switch strings.TrimSpace(strings.ToLower(s.mode)) {
	case config.CredentialsModeEnv, "":
		return s.static, nil
	case config.CredentialsModeSSM:
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cached != nil {
			return *s.cached, nil
		}
		if s.secrets == nil {
			return Credentials{}, errors.New("ssm credentials mode requires a secret getter")
		}
		if s.ssmKey == "" {
			return Credentials{}, errors.New("ssm credentials mode requires an SSM key")
		}
		s.logger.Debug("retrieving credentials from SSM...")
		secret, err := s.secrets.GetSecret(ctx, s.ssmKey, true)
		if err != nil {
			return Credentials{}, errors.Wrap(err, "failed to fetch credentials from SSM")
		}
		var creds Credentials
		if err = json.Unmarshal([]byte(secret), &creds); err != nil {
			return Credentials{}, errors.Wrap(err, "failed to unmarshal credentials")
		}
		creds = creds.merge(s.static)
		s.cached = &creds
		return creds, nil
	default:
		return Credentials{}, fmt.Errorf("unsupported credentials mode: %s", s.mode)
	}
}

// StripeKey implements the key source of the payments controller.
func (s *Store) StripeKey(ctx context.Context, testMode bool) (string, error) {
	creds, err := s.Retrieve(ctx)
	if err != nil {
		return "", err
	}
	return creds.StripeKey(testMode), nil
}

// WebhookSecret returns the shared secret used to verify webhook deliveries.
func (s *Store) WebhookSecret(ctx context.Context) (string, error) {
	creds, err := s.Retrieve(ctx)
	if err != nil {
		return "", err
	}
	return creds.StripeWebhookSecret, nil
}

// AdminTokenSource returns an oauth2.TokenSource yielding the CMS admin bearer token.
func (s *Store) AdminTokenSource() oauth2.TokenSource {
	return &adminTokenSource{store: s}
}

type adminTokenSource struct {
	store *Store
}

func (a *adminTokenSource) Token() (*oauth2.Token, error) {
	creds, err := a.store.Retrieve(context.Background())
	if err != nil {
		return nil, err
	}
	if creds.CMSAdminToken == "" {
		return nil, ErrMissingAdminToken
	}
	return &oauth2.Token{AccessToken: creds.CMSAdminToken, TokenType: "Bearer"}, nil
}
