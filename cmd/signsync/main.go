// Package main provides the CLI entrypoint for signsync.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/signsync/internal/config"
	"github.com/ayusman/signsync/internal/logging"
)

var (
	configPath string

	serveAddr   string
	serveStatic string

	localCamera int
	localLocale string
	localNoTray bool

	gesturesCaptured bool

	classifyLang string
)

func main() {
	logging.Preinit()

	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "signsync",
		Short:         "Real-time sign language recognition",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/signsync/config.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket recognition service",
		Args:  cobra.NoArgs,
		RunE:  runServeCmd,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveStatic, "static", "", "directory served at / (overrides server.static_dir)")

	localCmd := &cobra.Command{
		Use:   "local",
		Short: "Recognize signs from a local camera",
		Args:  cobra.NoArgs,
		RunE:  runLocalCmd,
	}
	localCmd.Flags().IntVar(&localCamera, "camera", -1, "camera device id (overrides local.camera_id)")
	localCmd.Flags().StringVar(&localLocale, "lang", "", "display locale, en or ta (overrides local.locale)")
	localCmd.Flags().BoolVar(&localNoTray, "no-tray", false, "log confirmations only, without the tray menu")

	gesturesCmd := &cobra.Command{
		Use:   "gestures",
		Short: "List the recognizable vocabulary",
		Args:  cobra.NoArgs,
		RunE:  runGesturesCmd,
	}
	gesturesCmd.Flags().BoolVar(&gesturesCaptured, "captured", false, "include labels of captured samples")

	classifyCmd := &cobra.Command{
		Use:   "classify <frame.json>",
		Short: "Classify a saved predict request",
		Args:  cobra.ExactArgs(1),
		RunE:  runClassifyCmd,
	}
	classifyCmd.Flags().StringVar(&classifyLang, "lang", "", "display locale, en or ta (overrides the file's lang)")

	rootCmd.AddCommand(serveCmd, localCmd, gesturesCmd, classifyCmd)
	return rootCmd
}

// loadConfig reads config and installs the configured logger. The returned
// func closes the log file.
func loadConfig() (*config.Config, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	closer, err := logging.Init(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, nil, err
	}
	return cfg, func() { closer.Close() }, nil
}
