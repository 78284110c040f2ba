package stripe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/markket/storefront-api/internal/helpers"
	"github.com/stripe/stripe-go/v81"
)

type sdkLogger struct {
	logger *slog.Logger
}

// NewLeveledLogger routes provider SDK logs through logger.
func NewLeveledLogger(logger *slog.Logger) stripe.LeveledLoggerInterface {
	if logger == nil {
		logger = helpers.NewNoopLogger()
	}
	return &sdkLogger{logger: logger.With("sdk", "stripe")}
}

func (s *sdkLogger) Debugf(format string, v ...any) { s.log(slog.LevelDebug, format, v...) }
func (s *sdkLogger) Infof(format string, v ...any)  { s.log(slog.LevelInfo, format, v...) }
func (s *sdkLogger) Warnf(format string, v ...any)  { s.log(slog.LevelWarn, format, v...) }
func (s *sdkLogger) Errorf(format string, v ...any) { s.log(slog.LevelError, format, v...) }

func (s *sdkLogger) log(level slog.Level, format string, v ...any) {
	if !s.logger.Enabled(context.Background(), level) {
		return
	}
	s.logger.Log(context.Background(), level, fmt.Sprintf(format, v...))
}
