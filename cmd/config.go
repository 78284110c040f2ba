package cmd

import (
	"context"

	"github.com/markket/storefront-api/internal/config"
	"github.com/markket/storefront-api/internal/controllers/aws"
	"github.com/pkg/errors"
)

// loadConfiguration reads the configuration from a local file or from an s3://bucket/key object.
func loadConfiguration(ctx context.Context, path string) error {
	if !config.IsRemote(path) {
		return config.LoadFromFile(path)
	}
	bucket, key, err := config.SplitRemote(path)
	if err != nil {
		return err
	}
	awsCtl, err := aws.NewController(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to initialise AWS controller")
	}
	content, err := awsCtl.GetS3Object(ctx, bucket, key)
	if err != nil {
		return err
	}
	return errors.Wrapf(config.Load(content), "failed to unmarshal configuration %s", path)
}
