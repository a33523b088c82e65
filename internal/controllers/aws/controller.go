// Package aws provides the Controller struct that wraps AWS services and provides S3, SSM and Lambda functionality with context and logging support.
package aws

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/smithy-go"
	"github.com/aws/smithy-go/logging"
	"github.com/isometry/wsgi-lambda/internal/helpers"
	"github.com/pkg/errors"
)

// ErrParameterNotFound is returned by GetSecret when the SSM parameter does not exist.
var ErrParameterNotFound = errors.New("SSM parameter not found")

// Controller represents a wrapper for AWS services providing S3 and SSM functionality with context and logging support.
type Controller struct {
	ctx    context.Context
	logger *slog.Logger

	config       *aws.Config
	s3Client     *s3.Client
	ssmClient    *ssm.Client
	lambdaClient *lambda.Client
}

// Option defines a function type used to configure an instance of the Controller struct.
type Option func(*Controller)

// NewController initializes a Controller with customizable options and default configurations if unspecified.
// It returns an instance of the Controller struct and an error if any required initialization steps fail.
func NewController(opts ...Option) (*Controller, error) {
	_inst := &Controller{}
	for _, opt := range opts {
		opt(_inst)
	}
	if _inst.logger == nil {
		_inst.logger = helpers.NewNoopLogger()
	}
	_inst.logger = _inst.logger.With("controller", "aws")
	if _inst.ctx == nil {
		_inst.ctx = context.Background()
	}
	if _inst.config == nil {
		_inst.logger.Debug("loading default AWS configuration...")
		cfg, err := config.LoadDefaultConfig(_inst.ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load AWS configuration")
		}
		cfg.Logger = newAWSLogger(_inst.logger)
		_inst.config = &cfg
	}

	_inst.s3Client = s3.NewFromConfig(*_inst.config)
	_inst.ssmClient = ssm.NewFromConfig(*_inst.config)
	_inst.lambdaClient = lambda.NewFromConfig(*_inst.config)
	return _inst, nil
}

// GetSecret retrieves a value from SSM Parameter Store using the provided key.
// If encrypted is true, the value is returned decrypted.
func (a *Controller) GetSecret(key string, encrypted bool) (*string, error) {
	a.logger.With("key", key).Debug("fetching SSM parameter...")
	ssmResponse, err := a.ssmClient.GetParameter(a.ctx, &ssm.GetParameterInput{
		Name:           aws.String(key),
		WithDecryption: aws.Bool(encrypted),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ParameterNotFound" {
			return nil, errors.Wrapf(ErrParameterNotFound, "key %s", key)
		}
		return nil, errors.Wrap(err, "failed to load SSM parameter")
	}
	return ssmResponse.Parameter.Value, nil
}

// PutS3Object uploads a JSON document to the given bucket under key.
// An empty bucket is a no-op.
func (a *Controller) PutS3Object(bucket, key string, body []byte) error {
	if bucket == "" {
		return nil
	}
	a.logger.With("bucket", bucket, "key", key).Debug("uploading object...")
	_, err := a.s3Client.PutObject(a.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrap(err, "failed to put object to S3")
	}
	return nil
}

// InvokeFunction synchronously invokes the named Lambda function with payload
// and returns the response payload. A function error is returned as an error
// carrying the error payload.
func (a *Controller) InvokeFunction(name string, payload []byte) ([]byte, error) {
	a.logger.With("function", name).Debug("invoking function...")
	out, err := a.lambdaClient.Invoke(a.ctx, &lambda.InvokeInput{
		FunctionName: aws.String(name),
		Payload:      payload,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to invoke %s", name)
	}
	if out.FunctionError != nil {
		return nil, errors.Errorf("function %s failed (%s): %s", name, *out.FunctionError, out.Payload)
	}
	return out.Payload, nil
}

type awsLogger struct {
	logger *slog.Logger
}

func newAWSLogger(logger *slog.Logger) *awsLogger {
	return &awsLogger{logger}
}

func (a *awsLogger) Logf(classification logging.Classification, format string, args ...any) {
	a.logger.Debug(fmt.Sprintf("[%v] %s", classification, fmt.Sprintf(format, args...)))
}
