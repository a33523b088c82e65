package cmd

import (
	"time"

	"github.com/isometry/wsgi-lambda/internal/config"
	"github.com/isometry/wsgi-lambda/internal/helpers"
)

var envMapString = map[*string]boundEnvVar[string]{
	&config.Global.Mode: {
		Name:        "mode",
		Description: "The application runtime mode. Possible values are 'lambda' and 'service'",
		Short:       helpers.Ptr("m"),
	},
	&config.Gateway.BodyMode: {
		Name:        "gateway-body-mode",
		Description: "How much of the application body is returned to the gateway. Supported values are 'first' and 'all'",
	},
	&config.Gateway.DefaultHost: {
		Name:        "gateway-default-host",
		Description: "The HTTP_HOST placeholder used when the event carries no Host header",
	},
	&config.Gateway.ForwardedAddrHeader: {
		Name:        "gateway-forwarded-addr-header",
		Description: "The header used as client address when the request context has no source IP",
	},
	&config.Overlay.SSMKey: {
		Name:        "overlay-ssm-key",
		Description: "The SSM parameter holding a JSON object of extra environ variables",
		Env:         helpers.Ptr("ENVIRON_OVERLAY_SSM_KEY"),
	},
	&config.Archive.BucketName: {
		Name:        "archive-s3-bucket",
		Description: "The S3 bucket receiving archived invocations",
		Env:         helpers.Ptr("ARCHIVE_S3_BUCKET"),
	},
	&config.Archive.Prefix: {
		Name:        "archive-s3-prefix",
		Description: "The key prefix of archived invocations",
	},
}

var envMapBool = map[*bool]boundEnvVar[bool]{
	&config.Global.Logging.CallerTrace: {
		Name:        "verbosity-caller-trace",
		Description: "Enable caller trace in logs",
		Short:       helpers.Ptr("V"),
	},
	&config.Archive.Enabled: {
		Name:        "archive",
		Description: "Enable S3 archiving of gateway invocations",
		Env:         helpers.Ptr("ARCHIVE_ENABLED"),
	},
}

var envMapCount = map[*int]boundEnvVar[int]{
	&config.Global.Logging.Verbosity: {
		Name:        "verbosity",
		Description: "Increase logger verbosity (default WarnLevel)",
		Short:       helpers.Ptr("v"),
	},
}

var envMapDuration = map[*time.Duration]boundEnvVar[time.Duration]{
	&config.Overlay.TTL: {
		Name:        "overlay-ttl",
		Description: "The minimum interval between two loads of the environ overlay",
	},
}

var envMapStringMap = map[*map[string]string]boundEnvVar[map[string]string]{
	&config.Gateway.Environ: {
		Name:        "gateway-environ",
		Description: "Static environ variables seeded into every gateway request, e.g. SCRIPT_NAME=/prod",
	},
}
