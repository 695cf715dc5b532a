package cli

import (
	"github.com/matjam/glpaper/internal/config"
	"github.com/spf13/cobra"
)

func RegisterFlags(rootCmd *cobra.Command) {
	settings := rootCmd.Flags()
	settings.StringSliceP(config.KeyBGColor, "b", nil, "RGBA values for the background color (0.0-1.0 ranges)")
	settings.IntP(config.KeyDuration, "d", 0, "Transition duration in milliseconds")
	settings.IntP(config.KeyMinutes, "m", 0, "Number of minutes between wallpaper changes")
	settings.StringSliceP(config.KeyTransitions, "t", nil, "A list of transition names (see --list-transitions)")
	settings.StringP(config.KeyDirectory, "w", "", "Wallpaper directory containing image files")

	actions := rootCmd.Flags()
	actions.BoolP("next", "n", false, "Switch the running instance to the next wallpaper")
	actions.BoolP("reload", "r", false, "Make the running instance reload its configuration")
	actions.Bool("list-transitions", false, "Print the available transitions")

	rootCmd.PersistentFlags().StringP(config.KeyConfig, "c", "", "config file (default is $XDG_CONFIG_HOME/glpaper/glpaper.toml)")
	rootCmd.PersistentFlags().BoolP("installconfig", "i", false, "Install a default config file")
	rootCmd.PersistentFlags().Bool("show-config", false, "Dump resolved config")
	rootCmd.PersistentFlags().Bool("background", false, "Run as a daemon")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Print version")
	rootCmd.PersistentFlags().BoolP("help", "h", false, "Print usage")
}
