// Package stripe provides a Controller exposing the payments provider operations used for account onboarding.
package stripe

import (
	"context"
	"log/slog"
	"sync"

	"github.com/markket/storefront-api/internal/helpers"
	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// ErrMissingCredentials is returned when the secret key for the requested mode is not configured.
var ErrMissingCredentials = errors.New("payments provider secret key is not configured")

// AccountParams holds the inputs for creating a connected account.
type AccountParams struct {
	Type    string
	Country string
	Email   string
}

// AccountLinkParams holds the inputs for creating an onboarding link.
type AccountLinkParams struct {
	Account    string
	RefreshURL string
	ReturnURL  string
}

// Provider is the subset of payments provider operations used by the onboarding sequencer.
type Provider interface {
	CreateAccount(ctx context.Context, params AccountParams) (string, error)
	CreateAccountLink(ctx context.Context, params AccountLinkParams) (string, error)
}

// KeySource resolves the live or sandbox secret key.
type KeySource interface {
	StripeKey(ctx context.Context, testMode bool) (string, error)
}

// Controller lazily builds one provider client per mode and reuses it for every request.
type Controller struct {
	logger   *slog.Logger
	keys     KeySource
	backends *stripe.Backends

	live    lazyClient
	sandbox lazyClient
}

// Option is a functional option used to configure a Controller instance.
type Option func(*Controller)

// NewController initializes a new Controller reading keys from keys.
func NewController(keys KeySource, opts ...Option) *Controller {
	_inst := &Controller{keys: keys}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.backends == nil {
		_inst.backends = NewBackends("", _inst.logger)
	}
	return _inst
}

// Client returns the provider for the requested mode, constructing it on first use.
// A construction failure is not cached, so a later call may succeed once the key becomes available.
func (c *Controller) Client(ctx context.Context, testMode bool) (Provider, error) {
	lc := &c.live
	if testMode {
		lc = &c.sandbox
	}
	return lc.get(func() (*client.API, error) {
		key, err := c.keys.StripeKey(ctx, testMode)
		if err != nil {
			return nil, errors.Wrap(err, "failed to resolve payments provider key")
		}
		if key == "" {
			return nil, ErrMissingCredentials
		}
		c.logger.Debug("initialising payments provider client...", slog.Bool("testMode", testMode))
		return client.New(key, c.backends), nil
	})
}

type lazyClient struct {
	mu       sync.Mutex
	provider *provider
}

func (l *lazyClient) get(build func() (*client.API, error)) (Provider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.provider != nil {
		return l.provider, nil
	}
	api, err := build()
	if err != nil {
		return nil, err
	}
	l.provider = &provider{api: api}
	return l.provider, nil
}

type provider struct {
	api *client.API
}

func (p *provider) CreateAccount(ctx context.Context, params AccountParams) (string, error) {
	accountParams := &stripe.AccountParams{
		Type:    stripe.String(params.Type),
		Country: stripe.String(params.Country),
		Email:   stripe.String(params.Email),
	}
	accountParams.Context = ctx
	account, err := p.api.Accounts.New(accountParams)
	if err != nil {
		return "", err
	}
	return account.ID, nil
}

func (p *provider) CreateAccountLink(ctx context.Context, params AccountLinkParams) (string, error) {
	linkParams := &stripe.AccountLinkParams{
		Account:    stripe.String(params.Account),
		RefreshURL: stripe.String(params.RefreshURL),
		ReturnURL:  stripe.String(params.ReturnURL),
		Type:       stripe.String(string(stripe.AccountLinkTypeAccountOnboarding)),
	}
	linkParams.Context = ctx
	link, err := p.api.AccountLinks.New(linkParams)
	if err != nil {
		return "", err
	}
	return link.URL, nil
}

// ErrorMessage returns the provider's own message for err when available, else err.Error().
func ErrorMessage(err error) string {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
		return stripeErr.Msg
	}
	return err.Error()
}

// NewBackends returns provider backends without automatic network retries that log through logger.
// A non-empty url overrides the API endpoint.
func NewBackends(url string, logger *slog.Logger) *stripe.Backends {
	cfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     NewLeveledLogger(logger),
	}
	if url != "" {
		cfg.URL = stripe.String(url)
	}
	api := stripe.GetBackendWithConfig(stripe.APIBackend, cfg)
	return &stripe.Backends{
		API:     api,
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, cfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, cfg),
	}
}
