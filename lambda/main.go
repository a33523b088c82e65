// Command lambda is a minimal Lambda bootstrap serving the echo application
// with default settings and no configuration file.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/wsgi-lambda/internal/echoapp"
	"github.com/isometry/wsgi-lambda/internal/gateway"
	"github.com/isometry/wsgi-lambda/internal/runtime"
	"github.com/isometry/wsgi-lambda/internal/wsgi"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     slog.LevelDebug,
	})).With("mode", "lambda")
	logger.Info("spawned...")

	app := echoapp.New(echoapp.WithLogger(logger.With("component", "app")))
	adapter := gateway.New(wsgi.FromHandler(app),
		gateway.WithLogger(logger.With("component", "gateway")))

	rt := runtime.NewRuntime(adapter,
		runtime.WithLogger(logger.With("component", "runtime")))

	lambda.Start(rt.Lambda)
}
