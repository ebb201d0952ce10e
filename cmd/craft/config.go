package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bongobongo2020/craft/settings"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the backend connection settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load(settingsPath)
		if err != nil {
			return err
		}
		if s.AuthSecret != "" {
			s.AuthSecret = "********"
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting and persist it",
	Long: `Change one setting and persist it.

Keys: http-endpoint, ws-endpoint, auth-id, auth-secret, auth-enabled`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := settings.Load(settingsPath)
		if err != nil {
			return err
		}
		key, value := args[0], args[1]
		switch key {
		case "http-endpoint":
			s.HTTPEndpoint = value
		case "ws-endpoint":
			s.WSEndpoint = value
		case "auth-id":
			s.AuthID = value
		case "auth-secret":
			s.AuthSecret = value
		case "auth-enabled":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("auth-enabled must be true or false: %w", err)
			}
			s.AuthEnabled = b
		default:
			return fmt.Errorf("unknown setting %q", key)
		}
		return settings.Save(settingsPath, s)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
