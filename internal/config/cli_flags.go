package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().Bool("headless", true, "Run Chrome headless")
	cmd.PersistentFlags().String("chrome-path", "", "Path to a Chrome/Chromium executable")
	cmd.PersistentFlags().String("nav-timeout", "15s", "Navigation waiter timeout")
}
