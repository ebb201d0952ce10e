package main

import (
	"github.com/spf13/cobra"

	"github.com/bongobongo2020/craft/logging"
	"github.com/bongobongo2020/craft/settings"
)

var (
	settingsPath string
	logLevel     string
	logFile      string
)

var rootCmd = &cobra.Command{
	Use:           "craft",
	Short:         "Generate images on a ComfyUI backend",
	Long:          "Craft submits text prompts (optionally conditioned on a reference image)\nto a ComfyUI backend and retrieves the generated image.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if settingsPath == "" {
			p, err := settings.DefaultPath()
			if err != nil {
				return err
			}
			settingsPath = p
		}
		return logging.Init(logging.Config{Level: logLevel, File: logFile})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "settings file path (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file (rotated)")
}
