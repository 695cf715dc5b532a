package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/ipc"
	"github.com/spf13/cobra"
)

func NewReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the configuration and wallpaper directory of the daemon",
		Long: `Makes the running daemon re-read its config file. Every value the file
defines replaces the current one, including values given on the command
line, and the wallpaper directory is scanned again.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := ipc.NewClient(ipc.SocketPath()).SendReload(); err != nil {
				log.Fatalf("Failed to send 'reload' command: %v", err)
			}
			log.Info("Reload command sent")
		},
	}
}
