package aws_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/markket/storefront-api/internal/controllers/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	input *ssm.GetParameterInput
	value *string
	err   error
}

func (f *fakeSSM) GetParameter(_ context.Context, params *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Value: f.value}}, nil
}

type fakeS3 struct {
	input *s3.GetObjectInput
	body  string
	err   error
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func newController(t *testing.T, ssmClient aws.SSMAPI, s3Client aws.S3API) *aws.Controller {
	t.Helper()
	ctl, err := aws.NewController(context.Background(), aws.WithSSMClient(ssmClient), aws.WithS3Client(s3Client))
	require.NoError(t, err)
	return ctl
}

func TestController_GetSecret(t *testing.T) {
	testCases := []struct {
		Name        string
		Client      *fakeSSM
		Expected    string
		ExpectError bool
	}{
		{
			Name:     "value",
			Client:   &fakeSSM{value: awssdk.String(`{"stripe_secret_key":"sk_live"}`)},
			Expected: `{"stripe_secret_key":"sk_live"}`,
		},
		{
			Name:        "missing_value",
			Client:      &fakeSSM{},
			ExpectError: true,
		},
		{
			Name:        "client_error",
			Client:      &fakeSSM{err: errors.New("access denied")},
			ExpectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			ctl := newController(t, tc.Client, &fakeS3{})
			value, err := ctl.GetSecret(context.Background(), "/storefront/credentials", true)
			if tc.ExpectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, value)
			assert.Equal(t, "/storefront/credentials", awssdk.ToString(tc.Client.input.Name))
			assert.True(t, awssdk.ToBool(tc.Client.input.WithDecryption))
		})
	}
}

func TestController_GetS3Object(t *testing.T) {
	client := &fakeS3{body: "global:\n  mode: lambda\n"}
	ctl := newController(t, &fakeSSM{}, client)

	content, err := ctl.GetS3Object(context.Background(), "bucket", "config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "global:\n  mode: lambda\n", string(content))
	assert.Equal(t, "bucket", awssdk.ToString(client.input.Bucket))
	assert.Equal(t, "config.yaml", awssdk.ToString(client.input.Key))

	ctl = newController(t, &fakeSSM{}, &fakeS3{err: errors.New("no such key")})
	_, err = ctl.GetS3Object(context.Background(), "bucket", "config.yaml")
	assert.Error(t, err)
}
