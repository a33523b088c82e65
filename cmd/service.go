package cmd

import (
	"net"
	"net/http"

	"github.com/isometry/wsgi-lambda/internal/config"
	"github.com/spf13/cobra"
)

// cmdService is the command for serving the application locally.
func cmdService() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "service",
		Aliases: []string{"s", "serve", "standalone", "server"},
		PreRunE: func(_ *cobra.Command, _ []string) error {
			logger = logger.With("mode", config.ModeService)
			logger.Info("Spawning...")

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup(cmd.Context())
			if err != nil {
				return err
			}

			logger.Debug("Creating HTTP server...")
			h := http.NewServeMux()
			h.Handle(config.Service.Path, rt)
			if config.Service.EventPath != "" && config.Service.EventPath != config.Service.Path {
				h.Handle(config.Service.EventPath, rt)
			}

			s := &http.Server{
				Handler:      h,
				Addr:         net.JoinHostPort(config.Service.Addr, config.Service.Port),
				WriteTimeout: config.Service.Timeout,
				ReadTimeout:  config.Service.Timeout,
				IdleTimeout:  config.Service.Timeout,
			}

			logger.Info("Serving...", "address", s.Addr, "path", config.Service.Path, "eventPath", config.Service.EventPath, "timeout", config.Service.Timeout.String())
			return s.ListenAndServe()
		},
	}

	bindEnvMap(cmd, svcEnvMapString)
	bindEnvMap(cmd, svcEnvMapDuration)
	return cmd
}
