package cmd

import (
	"context"

	"github.com/markket/storefront-api/internal/config"
	"github.com/markket/storefront-api/internal/controllers/aws"
	"github.com/markket/storefront-api/internal/controllers/cms"
	"github.com/markket/storefront-api/internal/controllers/stripe"
	"github.com/markket/storefront-api/internal/credentials"
	"github.com/markket/storefront-api/internal/handler"
	"github.com/markket/storefront-api/internal/handler/processor"
	"github.com/markket/storefront-api/internal/runtime"
	"github.com/pkg/errors"
)

// setup wires the controllers, the handler and the runtime from the loaded configuration.
func setup(ctx context.Context, extra ...runtime.Option) (*runtime.Runtime, error) {
	static := credentials.Credentials{
		StripeSecretKey:     config.Stripe.SecretKey,
		StripeSecretKeyTest: config.Stripe.SecretKeyTest,
		StripeWebhookSecret: config.Stripe.WebhookSecret,
		CMSAdminToken:       config.CMS.AdminToken,
	}
	storeOpts := []credentials.Option{
		credentials.WithLogger(logger.With("component", "credentials")),
		credentials.WithMode(config.Credentials.Mode),
	}
	if config.Credentials.Mode == config.CredentialsModeSSM {
		awsCtl, err := aws.NewController(ctx, aws.WithLogger(logger.With("component", "aws")))
		if err != nil {
			return nil, errors.Wrap(err, "failed to initialise AWS controller")
		}
		storeOpts = append(storeOpts, credentials.WithSSM(config.Credentials.SSMKey, awsCtl))
	}
	store := credentials.NewStore(static, storeOpts...)

	cmsCtl, err := cms.NewController(config.CMS.URL,
		cms.WithLogger(logger.With("component", "cms")),
		cms.WithAPIPrefix(config.CMS.APIPrefix),
		cms.WithTokenSource(store.AdminTokenSource()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialise CMS controller")
	}

	stripeCtl := stripe.NewController(store, stripe.WithLogger(logger.With("component", "stripe")))

	h, err := handler.NewHandler(
		handler.WithLogger(logger.With("component", "handler")),
		handler.WithForwarder(cmsCtl),
		handler.WithStoreUpdater(cmsCtl),
		handler.WithProviders(stripeCtl),
		handler.WithWebhookSecret(store, config.Stripe.WebhookTolerance),
		handler.WithProcessors(processor.NewRegistry(config.Stripe.Events, processor.WithLogger(logger.With("component", "processor")))),
		handler.WithConnectDefaults(handler.ConnectDefaults{
			AccountType: config.Stripe.Connect.AccountType,
			Country:     config.Stripe.Connect.Country,
			ReturnPath:  config.Stripe.Connect.ReturnPath,
			RefreshPath: config.Stripe.Connect.RefreshPath,
		}),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialise handler")
	}

	opts := append([]runtime.Option{
		runtime.WithLogger(logger),
		runtime.WithIdentity(cmsCtl),
		runtime.WithLambdaPayloadType(config.Lambda.PayloadType),
	}, extra...)
	return runtime.NewRuntime(h, opts...), nil
}
