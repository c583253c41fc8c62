package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/vvakame/bookgraph/server"
)

type serveOptions struct {
	configFile string
	addr       string
	verbosity  int
}

func (opts *serveOptions) bind(flags *pflag.FlagSet) {
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file.")
	flags.StringVar(&opts.addr, "addr", "", "Listen address, overrides the config file and PORT.")
	flags.IntVarP(&opts.verbosity, "verbosity", "v", 0, "Log verbosity.")
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the GraphQL endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(opts.configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = opts.addr
			}
			if cmd.Flags().Changed("verbosity") {
				cfg.Verbosity = opts.verbosity
			}

			stdr.SetVerbosity(cfg.Verbosity)
			logger := stdr.New(log.Default())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logr.NewContext(ctx, logger)

			srv, err := server.NewServer(ctx, cfg)
			if err != nil {
				logger.Error(err, "failed to execute NewServer")
				return err
			}

			logger.Info("listening server", "addr", cfg.Addr, "path", cfg.Path)

			return srv.ListenAndServe(ctx)
		},
	}
	opts.bind(cmd.Flags())

	return cmd
}
