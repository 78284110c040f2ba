package credentials

import "log/slog"

// WithLogger sets the logger instance for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithMode sets the credentials mode. Supported values are 'env' and 'ssm'.
func WithMode(mode string) Option {
	return func(s *Store) {
		s.mode = mode
	}
}

// WithSSM configures the SSM parameter key and the getter used to fetch it.
func WithSSM(key string, secrets SecretGetter) Option {
	return func(s *Store) {
		s.ssmKey = key
		s.secrets = secrets
	}
}
