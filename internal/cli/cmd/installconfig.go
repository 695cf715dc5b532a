package cmd

import (
	"github.com/matjam/glpaper/internal/cli/cmd/utils"
	"github.com/spf13/cobra"
)

func NewInstallConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "installconfig",
		Short: "Install a default config file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			utils.InstallDefaultConfig()
		},
	}
}
