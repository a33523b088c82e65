package cmd

import (
	"encoding/json"
	"io"
	"os"

	awsctl "github.com/isometry/wsgi-lambda/internal/controllers/aws"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// cmdInvoke is the command for running a single event payload locally.
func cmdInvoke() *cobra.Command {
	var functionName string
	cmd := &cobra.Command{
		Use:   "invoke [event.json]",
		Short: "Run one invocation payload read from a file or stdin and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := io.Reader(cmd.InOrStdin())
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrap(err, "failed to open payload")
				}
				defer func() { _ = f.Close() }()
				in = f
			}
			payload, err := io.ReadAll(in)
			if err != nil {
				return errors.Wrap(err, "failed to read payload")
			}

			var result any
			if functionName != "" {
				if result, err = invokeRemote(cmd, functionName, payload); err != nil {
					return err
				}
			} else {
				rt, err := setup(cmd.Context())
				if err != nil {
					return err
				}
				if result, err = rt.Lambda(cmd.Context(), payload); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&functionName, "function", "f", "", "invoke the named deployed function instead of the local runtime")
	return cmd
}

func invokeRemote(cmd *cobra.Command, functionName string, payload []byte) (json.RawMessage, error) {
	ctl, err := awsctl.NewController(
		awsctl.WithContext(cmd.Context()),
		awsctl.WithLogger(logger.With("component", "aws-controller")))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create AWS controller")
	}
	out, err := ctl.InvokeFunction(functionName, payload)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(out), nil
}
