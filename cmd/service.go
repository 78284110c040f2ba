package cmd

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/markket/storefront-api/internal/config"
	"github.com/markket/storefront-api/internal/runtime"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdService() *cobra.Command {
	return &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return chainCommands(cmd, args, withMode(config.ModeService), func(cmd *cobra.Command, _ []string) error {
				return runService(cmd)
			})
		},
	}
}

func runService(cmd *cobra.Command) error {
	var opts []runtime.Option
	if config.Service.Metrics.Enabled {
		opts = append(opts, runtime.WithMetrics(config.Service.Metrics.Path))
	}
	rt, err := setup(cmd.Context(), opts...)
	if err != nil {
		return errors.Wrap(err, "failed to setup service")
	}

	logger.Debug("creating HTTP server...")
	s := &http.Server{
		Handler:      mount(config.Service.Path, rt),
		Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
		WriteTimeout: config.Service.Timeout,
		ReadTimeout:  config.Service.Timeout,
		IdleTimeout:  config.Service.Timeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving...", "address", s.Addr, "path", config.Service.Path, "timeout", config.Service.Timeout.String())
		errCh <- s.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// mount serves h under path, stripping the prefix so routes stay rooted at /api.
func mount(path string, h http.Handler) http.Handler {
	prefix := "/" + strings.Trim(path, "/")
	if prefix == "/" {
		return h
	}
	mux := http.NewServeMux()
	mux.Handle(prefix+"/", http.StripPrefix(prefix, h))
	return mux
}
