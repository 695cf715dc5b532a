package cli

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// flagConfig binds the command's flags into their own viper instance so
// config.New can tell which values were given on the command line.
func flagConfig(cmd *cobra.Command) *viper.Viper {
	flags := viper.New()
	if err := flags.BindPFlags(cmd.Flags()); err != nil {
		log.Fatalf("Error binding flags: %v", err)
	}
	return flags
}

func loadConfig(cmd *cobra.Command) *config.Provider {
	provider, err := config.New(flagConfig(cmd))
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	return provider
}
