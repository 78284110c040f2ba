// Package handler implements the storefront API endpoints: the CMS proxy, the webhook receiver and the
// payment account onboarding sequencer.
package handler

import (
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/markket/storefront-api/internal/controllers/cms"
	"github.com/markket/storefront-api/internal/controllers/stripe"
	"github.com/markket/storefront-api/internal/handler/processor"
	"github.com/markket/storefront-api/internal/helpers"
	"github.com/markket/storefront-api/internal/models"
	"golang.org/x/time/rate"
)

// Forwarder relays a request to the upstream CMS.
type Forwarder interface {
	Forward(ctx context.Context, req cms.ForwardRequest) (*cms.ForwardResponse, error)
}

// StoreUpdater applies fields to a CMS store record with privileged credentials.
type StoreUpdater interface {
	UpdateStore(ctx context.Context, storeID string, fields map[string]any) error
}

// ProviderSource returns the live or sandbox payments provider client.
type ProviderSource interface {
	Client(ctx context.Context, testMode bool) (stripe.Provider, error)
}

// WebhookSecretSource returns the webhook shared secret.
type WebhookSecretSource interface {
	WebhookSecret(ctx context.Context) (string, error)
}

// ConnectDefaults holds the onboarding values applied when the caller omits them.
type ConnectDefaults struct {
	AccountType string
	Country     string
	// ReturnPath and RefreshPath are appended to the request origin. Supported placeholders: {store}
	ReturnPath  string
	RefreshPath string
}

var builtinConnectDefaults = ConnectDefaults{
	AccountType: "standard",
	Country:     "US",
	ReturnPath:  "/dashboard/stripe?store={store}&status=return",
	RefreshPath: "/dashboard/stripe?store={store}&status=refresh",
}

// Option is a functional option used to configure a Handler instance.
type Option func(*Handler)

// Handler serves the storefront API endpoints. It holds no per-request state and is safe for concurrent use.
type Handler struct {
	logger     *slog.Logger
	forwarder  Forwarder
	stores     StoreUpdater
	providers  ProviderSource
	secrets    WebhookSecretSource
	tolerance  time.Duration
	processors processor.Registry
	connect    ConnectDefaults
	validate   *validator.Validate

	missingSecretLog *rate.Sometimes
}

// NewHandler initializes a new Handler. Every collaborator option is required.
func NewHandler(opts ...Option) (*Handler, error) {
	_inst := &Handler{}
	for _, opt := range opts {
		opt(_inst)
	}

	var missing []string
	if _inst.forwarder == nil {
		missing = append(missing, "forwarder")
	}
	if _inst.stores == nil {
		missing = append(missing, "store updater")
	}
	if _inst.providers == nil {
		missing = append(missing, "payments provider source")
	}
	if _inst.secrets == nil {
		missing = append(missing, "webhook secret source")
	}
	if len(missing) > 0 {
		return nil, &MissingDependencyError{Names: missing}
	}

	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	if _inst.processors == nil {
		_inst.processors = processor.Known(processor.WithLogger(_inst.logger))
	}
	_inst.connect = ConnectDefaults{
		AccountType: cmp.Or(_inst.connect.AccountType, builtinConnectDefaults.AccountType),
		Country:     strings.ToUpper(cmp.Or(_inst.connect.Country, builtinConnectDefaults.Country)),
		ReturnPath:  cmp.Or(_inst.connect.ReturnPath, builtinConnectDefaults.ReturnPath),
		RefreshPath: cmp.Or(_inst.connect.RefreshPath, builtinConnectDefaults.RefreshPath),
	}
	_inst.validate = validator.New(validator.WithRequiredStructEnabled())
	_inst.missingSecretLog = helpers.NewOnceAMinute()

	return _inst, nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	helpers.RespondJSON(w, models.Response{Body: map[string]string{"status": "ok"}})
}

func normaliseHeaders(header http.Header) map[string]string {
	headers := make(map[string]string, len(header))
	for k, v := range header {
		if len(v) > 0 {
			headers[strings.ToLower(k)] = v[0]
		}
	}
	return headers
}
