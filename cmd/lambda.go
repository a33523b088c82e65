package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/isometry/wsgi-lambda/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// cmdLambda is the command for running behind API Gateway.
func cmdLambda() *cobra.Command {
	cmd := &cobra.Command{
		Use: "lambda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return errors.Wrap(err, "failed to setup lambda")
			}

			logger = logger.With("mode", config.ModeLambda)
			logger.Info("lambda starting...")
			lambda.StartWithOptions(rt.Lambda,
				lambda.WithContext(cmd.Context()))

			return nil
		},
	}

	return cmd
}
