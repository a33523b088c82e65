package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/isometry/wsgi-lambda/internal/config"
	awsctl "github.com/isometry/wsgi-lambda/internal/controllers/aws"
	"github.com/isometry/wsgi-lambda/internal/echoapp"
	"github.com/isometry/wsgi-lambda/internal/gateway"
	"github.com/isometry/wsgi-lambda/internal/overlay"
	"github.com/isometry/wsgi-lambda/internal/processor"
	"github.com/isometry/wsgi-lambda/internal/runtime"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
	"github.com/pkg/errors"
)

// setup wires the configured application, adapter and runtime.
func setup(ctx context.Context) (*runtime.Runtime, error) {
	bodyMode, err := gateway.ParseBodyMode(config.Gateway.BodyMode)
	if err != nil {
		return nil, err
	}

	var ctl *awsctl.Controller
	if config.Overlay.SSMKey != "" || config.Archive.Enabled {
		logger.Debug("creating AWS controller...")
		if ctl, err = awsctl.NewController(
			awsctl.WithContext(ctx),
			awsctl.WithLogger(logger.With("component", "aws-controller"))); err != nil {
			return nil, errors.Wrap(err, "failed to create AWS controller")
		}
	}

	var source overlay.SecretGetter
	if ctl != nil {
		source = ctl
	}
	envOverlay := overlay.New(source, config.Overlay.SSMKey,
		overlay.WithStatic(config.Gateway.Environ),
		overlay.WithTTL(config.Overlay.TTL),
		overlay.WithLogger(logger.With("component", "overlay")))

	app := echoapp.New(
		echoapp.WithLogger(logger.With("component", "app")),
		echoapp.WithEnvironKeys(wsgi.KeyScriptName, wsgi.KeyHost, wsgi.KeyServerPort, wsgi.KeyURLScheme))

	adapter := gateway.New(wsgi.FromHandler(app),
		gateway.WithLogger(logger.With("component", "gateway")),
		gateway.WithBodyMode(bodyMode),
		gateway.WithDefaultHost(config.Gateway.DefaultHost),
		gateway.WithForwardedAddrHeader(config.Gateway.ForwardedAddrHeader),
		gateway.WithEnvironExtra(envOverlay.Vars),
		gateway.WithErrorStream(os.Stderr))

	opts := []runtime.Option{
		runtime.WithLogger(logger.With("component", "runtime")),
		runtime.WithEventPath(config.Service.EventPath),
	}
	if config.Archive.Enabled {
		if config.Archive.BucketName == "" {
			return nil, errors.New("archive enabled without a bucket name")
		}
		logger.Info("invocation archive enabled", slog.String("bucket", config.Archive.BucketName))
		opts = append(opts, runtime.WithPostProcessors(
			processor.NewS3ArchiverPostProcessor(ctl, config.Archive.BucketName, config.Archive.Prefix)))
	}

	logger.Debug("creating runtime...")
	return runtime.NewRuntime(adapter, opts...), nil
}
