// Package cmd provides the entrypoint for the storefront-api cli.
package cmd

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/markket/storefront-api/internal/config"
	"github.com/markket/storefront-api/internal/helpers"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "config.yaml"
	defaultEnvFile    = ".env"
)

var (
	configFilePath string
	logger         = helpers.NewNoopLogger()
)

type boundEnvVar[T argType] struct {
	Name, Description string
	Env, Short        *string
	Hidden            bool
}

// New returns the root command for the storefront-api.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "storefront-api",
		Short:        "Storefront API edge: CMS proxy, payments webhooks and account onboarding",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			config.Global.Mode = strings.TrimSpace(config.Global.Mode)
			logger = helpers.NewLogger(config.Global.Logging.Verbosity, config.Global.Logging.CallerTrace).
				With("mode", config.Global.Mode)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch config.Global.Mode {
			case config.ModeService:
				return runService(cmd)
			case config.ModeLambda:
				return runLambda(cmd)
			default:
				return fmt.Errorf("invalid mode: %s", config.Global.Mode)
			}
		},
	}

	// .env files never override variables already present in the environment.
	if err := godotenv.Load(cmp.Or(os.Getenv("ENV_FILE"), defaultEnvFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	// Root command flags
	configFilePath = configPathFromArgs(os.Args[1:], cmp.Or(os.Getenv("CONFIG_FILE"), defaultConfigPath))
	cmd.PersistentFlags().StringVarP(&configFilePath, "config", "c", configFilePath,
		"[CONFIG_FILE] path to the configuration file, local or s3://bucket/key")

	// Configuration loading & defaults
	if err := errors.Join(
		loadConfiguration(context.Background(), configFilePath),
		config.SetDefaults(),
	); err != nil {
		panic(err)
	}

	// Dynamic flags
	setupDynamicFlags(cmd)

	// Subcommands
	cmd.AddCommand(
		cmdLambda(),
		cmdService(),
	)

	return cmd
}

func setupDynamicFlags(cmd *cobra.Command) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(replacer)

	bindEnvMap(cmd, envMapString)
	bindEnvMap(cmd, envMapBool)
	bindEnvMap(cmd, envMapCount)
	bindEnvMap(cmd, envMapDuration)
	bindEnvMap(cmd, envMapStringSlice)

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapBool)
	bindEnvMap(cmd, svcEnvMapDuration)

	bindEnvMap(cmd, lambdaEnvMapString)
}

// configPathFromArgs finds the --config/-c value ahead of flag parsing, since the file supplies the flag defaults.
func configPathFromArgs(args []string, fallback string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			return fallback
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-c") && len(arg) > 2 && !strings.HasPrefix(arg, "--"):
			return strings.TrimPrefix(strings.TrimPrefix(arg, "-c"), "=")
		}
	}
	return fallback
}

func chainCommands(cmd *cobra.Command, args []string, fns ...func(*cobra.Command, []string) error) error {
	for _, fn := range fns {
		if err := fn(cmd, args); err != nil {
			return err
		}
	}
	return nil
}

// withMode pins the runtime mode when a subcommand is used instead of --mode.
func withMode(mode string) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, _ []string) error {
		config.Global.Mode = mode
		logger = helpers.NewLogger(config.Global.Logging.Verbosity, config.Global.Logging.CallerTrace).
			With("mode", mode)
		return nil
	}
}

