package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/cli/cmd/utils"
	"github.com/matjam/glpaper/internal/ipc"
	"github.com/matjam/glpaper/internal/types"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get glpaper status",
		Long:  `Returns the current status of the glpaper process.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.NewClient(ipc.SocketPath()).SendCommand(types.Command{
				Type: types.CommandStatus,
			})
			if err != nil {
				log.Errorf("Error sending command: %v", err)
				return
			}

			utils.PrintJSONColored(response.Data)
		},
	}
}
