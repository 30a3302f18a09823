package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Rangga11268/siakad-smp-sub000/internal/client"
	applogger "github.com/Rangga11268/siakad-smp-sub000/pkg/logger"
)

type rootOptions struct {
	server  string
	timeout time.Duration
	verbose bool

	logger *zap.Logger
	api    *client.Client
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "attendctl",
		Short:         "Record daily and per-period attendance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := applogger.NewCLILogger(opts.verbose)
			if err != nil {
				return err
			}
			opts.logger = logger
			opts.api = client.New(opts.server,
				client.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
				client.WithLogger(logger),
			)
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	server := os.Getenv("SIAKAD_SERVER")
	if server == "" {
		server = "http://localhost:8080"
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.server, "server", server, "attendance API root (env SIAKAD_SERVER)")
	pf.DurationVar(&opts.timeout, "timeout", 15*time.Second, "per-request timeout")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log every API call")

	cmd.AddCommand(
		newClassesCmd(opts),
		newPeriodsCmd(opts),
		newShowCmd(opts),
		newMarkCmd(opts),
	)
	return cmd
}
