package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/CreativeUnicorns/cogbot/config"
)

// app carries what the subcommands share.
type app struct {
	opts config.Options
	cfg  *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "cogbot [flags]",
		Short:         "Discord utility bot with per-channel and per-server category settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.New(), a.opts)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.opts.ConfigFile, "config", "c", "", "config file (yaml, toml or json)")
	root.PersistentFlags().StringVar(&a.opts.EnvFile, "env-file", "", "env file to load before reading COGBOT_* variables (default .env)")

	root.AddCommand(newRunCmd(a), newConfigCmd(a), newSettingsCmd(a))
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
