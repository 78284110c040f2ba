package cmd

import (
	"time"

	"github.com/markket/storefront-api/internal/config"
	"github.com/markket/storefront-api/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.CMS.URL: {
		Name:        "cms-url",
		Description: "Base URL of the upstream CMS",
		Env:         helpers.Ptr("MARKKET_API"),
	},
	&config.CMS.APIPrefix: {
		Name:        "cms-api-prefix",
		Description: "Path prefix of the CMS REST API that proxied paths are appended to",
	},
	&config.CMS.AdminToken: {
		Name:        "cms-admin-token",
		Description: "Bearer token used for privileged CMS writes",
		Env:         helpers.Ptr("MARKKET_API_KEY"),
	},
	&config.Stripe.SecretKey: {
		Name:        "stripe-secret-key",
		Description: "Live payments provider secret key",
		Env:         helpers.Ptr("STRIPE_SECRET_KEY"),
	},
	&config.Stripe.SecretKeyTest: {
		Name:        "stripe-secret-key-test",
		Description: "Sandbox payments provider secret key, used when a request sets test_mode",
		Env:         helpers.Ptr("STRIPE_SECRET_KEY_TEST"),
	},
	&config.Stripe.WebhookSecret: {
		Name:        "stripe-webhook-secret",
		Description: "The secret used to verify incoming webhook signatures. Every delivery is rejected when unset",
		Env:         helpers.Ptr("STRIPE_WEBHOOK_SECRET"),
	},
	&config.Stripe.Connect.AccountType: {
		Name:        "stripe-connect-account-type",
		Description: "Account type used when the onboarding request omits one",
	},
	&config.Stripe.Connect.Country: {
		Name:        "stripe-connect-country",
		Description: "Account country used when the onboarding request omits one",
	},
	&config.Stripe.Connect.ReturnPath: {
		Name:        "stripe-connect-return-path",
		Description: "Onboarding return path appended to the request origin. Supported placeholders: {store}",
	},
	&config.Stripe.Connect.RefreshPath: {
		Name:        "stripe-connect-refresh-path",
		Description: "Onboarding refresh path appended to the request origin. Supported placeholders: {store}",
	},
	&config.Credentials.Mode: {
		Name:        "credentials-mode",
		Description: "Credentials provider. Supported values are 'env' and 'ssm'",
		Short:       helpers.Ptr("A"),
	},
	&config.Credentials.SSMKey: {
		Name:        "credentials-ssm-key",
		Description: "The SSM parameter holding the JSON encoded credentials when credentials-mode is 'ssm'",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Stripe.WebhookTolerance: {
		Name:        "stripe-webhook-tolerance",
		Description: "Maximum accepted age of a signed webhook timestamp",
	},
}

var envMapStringSlice = map[*[]string]boundEnvVar[[]string]{
	&config.Stripe.Events: {
		Name:        "stripe-events",
		Description: "The webhook event types dispatched to a processor. Other verified events are acknowledged and ignored",
	},
}
