// Package config provides a centralized entrypoint for the application parameters.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"go.yaml.in/yaml/v3"
)

const (
	// ModeService runs the application as a standalone HTTP server.
	ModeService = "service"
	// ModeLambda runs the application as an AWS Lambda function.
	ModeLambda = "lambda"
)

const (
	// CredentialsModeEnv reads credentials from flags and environment variables.
	CredentialsModeEnv = "env"
	// CredentialsModeSSM reads credentials from a JSON SSM SecureString parameter.
	CredentialsModeSSM = "ssm"
)

var (
	// Global is a struct that contains the global configuration.
	Global global
	// CMS is a struct that contains the configuration for the upstream CMS.
	CMS cms
	// Stripe is a struct that contains the configuration for the payments provider.
	Stripe stripe
	// Credentials is a struct that contains the configuration for the credentials source.
	Credentials credentials
	// Service is a struct that contains the configuration for the service mode.
	Service service
	// Lambda is a struct that contains the configuration for the lambda mode.
	Lambda lambda
)

type global struct {
	// Mode is the runtime mode of the application.
	Mode string `yaml:"mode,omitempty" default:"service"`
	// Logging is a struct that contains the logging configuration.
	Logging struct {
		// Verbosity is the verbosity level of the application. It represents slog levels.
		Verbosity int `yaml:"verbosity,omitempty"`
		// CallerTrace is a flag that enables the caller trace in the logger.
		CallerTrace bool `yaml:"callerTrace,omitempty"`
	} `yaml:"logging,omitempty"`
}

type cms struct {
	// URL is the base URL of the upstream CMS, e.g. https://api.markket.place.
	URL string `yaml:"url,omitempty" default:"https://api.markket.place"`
	// APIPrefix replaces the proxy route prefix when building upstream URLs.
	APIPrefix string `yaml:"apiPrefix,omitempty" default:"/api/"`
	// AdminToken is the bearer token used for privileged CMS writes.
	AdminToken string `yaml:"adminToken,omitempty"`
}

type stripe struct {
	// SecretKey is the live payments provider secret key.
	SecretKey string `yaml:"secretKey,omitempty"`
	// SecretKeyTest is the sandbox payments provider secret key.
	SecretKeyTest string `yaml:"secretKeyTest,omitempty"`
	// WebhookSecret is the shared secret used to verify webhook signatures.
	WebhookSecret string `yaml:"webhookSecret,omitempty"`
	// WebhookTolerance is the maximum accepted age of a signed webhook timestamp.
	WebhookTolerance time.Duration `yaml:"webhookTolerance,omitempty" default:"5m"`
	// Events is a slice of webhook event types that have a processor attached.
	Events []string `yaml:"events,omitempty" default:"[\"payment_intent.succeeded\", \"payment_intent.payment_failed\"]"`
	// Connect is a struct that contains the configuration for account onboarding.
	Connect struct {
		// AccountType is the default account type used when the caller omits one.
		AccountType string `yaml:"accountType,omitempty" default:"standard"`
		// Country is the default account country used when the caller omits one.
		Country string `yaml:"country,omitempty" default:"US"`
		// ReturnPath is appended to the request origin to build the onboarding return URL. Supported placeholders: {store}
		ReturnPath string `yaml:"returnPath,omitempty" default:"/dashboard/stripe?store={store}&status=return"`
		// RefreshPath is appended to the request origin to build the onboarding refresh URL. Supported placeholders: {store}
		RefreshPath string `yaml:"refreshPath,omitempty" default:"/dashboard/stripe?store={store}&status=refresh"`
	} `yaml:"connect,omitempty"`
}

type credentials struct {
	// Mode selects where secrets are read from. Supported values are 'env' and 'ssm'.
	Mode string `yaml:"mode,omitempty" default:"env"`
	// SSMKey is the SSM parameter holding the JSON encoded credentials.
	SSMKey string `yaml:"ssmKey,omitempty"`
}

type service struct {
	Path    string        `yaml:"path,omitempty" default:"/"`
	Addr    string        `yaml:"addr,omitempty"`
	Port    string        `yaml:"port,omitempty" default:"8080"`
	Timeout time.Duration `yaml:"timeout,omitempty" default:"30s"`
	Metrics struct {
		Enabled bool   `yaml:"enabled,omitempty" default:"true"`
		Path    string `yaml:"path,omitempty" default:"/metrics"`
	} `yaml:"metrics,omitempty"`
}

type lambda struct {
	PayloadType string `yaml:"payloadType,omitempty" default:"api-gateway-v2"`
}

type all struct {
	Global      global      `yaml:"global,omitempty"`
	CMS         cms         `yaml:"cms,omitempty"`
	Stripe      stripe      `yaml:"stripe,omitempty"`
	Credentials credentials `yaml:"credentials,omitempty"`
	Service     service     `yaml:"service,omitempty"`
	Lambda      lambda      `yaml:"lambda,omitempty"`
}

// SetDefaults sets the default values for the configuration.
func SetDefaults() error {
	return errors.Join(
		defaults.Set(&Global),
		defaults.Set(&CMS),
		defaults.Set(&Stripe),
		defaults.Set(&Credentials),
		defaults.Set(&Service),
		defaults.Set(&Lambda),
	)
}

// IsRemote reports whether the configuration path points to an S3 object.
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// SplitRemote splits an s3://bucket/key path into its bucket and key.
func SplitRemote(path string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(path, "s3://")
	bucket, key, found := strings.Cut(trimmed, "/")
	if !found || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid S3 configuration path %s", path)
	}
	return bucket, key, nil
}

// LoadFromFile loads the configuration from a file.
func LoadFromFile(path string) error {
	if len(path) == 0 {
		return nil
	}
	fstat, err := os.Stat(path)
	if err != nil {
		return nil //nolint:nilerr // If the file does not exist, we ignore it.
	}
	if fstat.IsDir() {
		return fmt.Errorf("configuration file %s is a directory", path)
	}
	if !fstat.Mode().IsRegular() {
		return fmt.Errorf("configuration file %s is not a regular file", path)
	}

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}
	if err = Load(content); err != nil {
		return fmt.Errorf("failed to unmarshal configuration file %s: %w", path, err)
	}
	return nil
}

// Load replaces the configuration with the YAML document in content.
func Load(content []byte) error {
	var a all
	if err := yaml.Unmarshal(content, &a); err != nil {
		return err
	}
	Global = a.Global
	CMS = a.CMS
	Stripe = a.Stripe
	Credentials = a.Credentials
	Service = a.Service
	Lambda = a.Lambda

	return nil
}
