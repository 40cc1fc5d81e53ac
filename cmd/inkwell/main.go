package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eringen/inkwell"
	"github.com/eringen/inkwell/views"
)

// version is set at build time via ldflags.
var version = "dev"

type options struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "inkwell",
		Short:         "inkwell - a markdown blog engine with a static exporter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./inkwell.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "log format: console or json")

	root.AddCommand(
		newBuildCmd(opts),
		newServeCmd(opts),
		newCheckCmd(opts),
		newNewCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the inkwell version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "inkwell %s\n", version)
			},
		},
	)
	return root
}

// load reads the configuration and builds the logger, applying flag
// overrides on top of the file and environment.
func (o *options) load() (inkwell.Config, zerolog.Logger, error) {
	cfg, err := inkwell.LoadConfig(o.configPath)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	log, err := inkwell.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return cfg, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// newApp opens an App with the bundled views.
func newApp(ctx context.Context, cfg inkwell.Config, log zerolog.Logger) (*inkwell.App, error) {
	app := inkwell.New(cfg, viewFuncs(), inkwell.WithLogger(log))
	if err := app.Open(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func viewFuncs() inkwell.ViewFuncs {
	return inkwell.ViewFuncs{
		Home:           views.Home,
		List:           views.List,
		Post:           views.Post,
		Tags:           views.Tags,
		Page:           views.Page,
		NotFound:       views.NotFound,
		ServerError:    views.ServerError,
		AdminLogin:     views.AdminLogin,
		AdminDashboard: views.AdminDashboard,
	}
}
