package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/markket/storefront-api/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func cmdLambda() *cobra.Command {
	return &cobra.Command{
		Use: "lambda",
		RunE: func(cmd *cobra.Command, args []string) error {
			return chainCommands(cmd, args, withMode(config.ModeLambda), func(cmd *cobra.Command, _ []string) error {
				return runLambda(cmd)
			})
		},
	}
}

func runLambda(cmd *cobra.Command) error {
	rt, err := setup(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to setup lambda")
	}

	logger.Info("lambda starting...", "payloadType", config.Lambda.PayloadType)
	lambda.StartWithOptions(rt.Lambda, lambda.WithContext(cmd.Context()))
	return nil
}
