/*
Copyright © 2025 Nathan Ollerenshaw <chrome@stupendous.net>
*/
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper"
	"github.com/matjam/glpaper/internal/cli/cmd"
	"github.com/matjam/glpaper/internal/cli/cmd/utils"
	"github.com/matjam/glpaper/internal/ipc"
	"github.com/matjam/glpaper/internal/transitions"
	"github.com/matjam/glpaper/internal/types"
	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "glpaper",
	Short: "X11 wallpaper setter using OpenGL",
	Long: `glpaper shows the images of a directory as the desktop background and
moves between them with GLSL transition effects.

Run without a subcommand it starts the wallpaper daemon; -n and -r talk to
an instance that is already running.`,
	Args: cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		flags := c.Flags()

		if v, _ := flags.GetBool("debug"); v {
			log.SetLevel(log.DebugLevel)
		}

		if v, _ := flags.GetBool("version"); v {
			printVersion()
			return
		}

		if v, _ := flags.GetBool("list-transitions"); v {
			for _, name := range transitions.Default().Names() {
				log.Print(name)
			}
			return
		}

		if v, _ := flags.GetBool("installconfig"); v {
			utils.InstallDefaultConfig()
			return
		}

		next, _ := flags.GetBool("next")
		reload, _ := flags.GetBool("reload")
		if next || reload {
			sendActions(next, reload)
			return
		}

		if v, _ := flags.GetBool("show-config"); v {
			provider := loadConfig(c)
			log.Infof("Using config file: %v", provider.ConfigFileUsed())
			log.Infof("All settings:")
			utils.PrintJSONColored(provider.Snapshot())
			return
		}

		if v, _ := flags.GetBool("background"); v {
			if !daemonize() {
				return
			}
		}

		cmd.StartEngine(flagConfig(c))
	},
}

func printVersion() {
	babyBlue := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("76"))
	log.Infof("%v version %v © 2025 %v",
		babyBlue.Render("glpaper "),
		green.Render(strings.Trim(glpaper.Version, "\n\r ")),
		yellow.Render("Nathan Ollerenshaw"))
}

// sendActions forwards -r and -n to the running instance, reload first.
// The session bus is tried when nothing answers on the socket.
func sendActions(next, reload bool) {
	send := busSend
	client := ipc.NewClient(ipc.SocketPath())
	if client.Running() {
		send = func(t types.CommandType) error {
			if t == types.CommandReload {
				return client.SendReload()
			}
			return client.SendNext()
		}
	}

	if reload {
		if err := send(types.CommandReload); err != nil {
			log.Fatalf("Failed to send 'reload' command: %v", err)
		}
	}
	if next {
		if err := send(types.CommandNext); err != nil {
			log.Fatalf("Failed to send 'next' command: %v", err)
		}
	}
}

func busSend(t types.CommandType) error {
	if err := ipc.BusCall(t); err != nil {
		return fmt.Errorf("glpaper is not running: %w", err)
	}
	return nil
}

// daemonize re-executes the process detached from the terminal. It
// returns true in the child, which should carry on starting the engine.
func daemonize() bool {
	cntxt := &daemon.Context{
		WorkDir: "/",
		Umask:   027,
		Env:     append(os.Environ(), "BACKGROUND_PROCESS=1"),
	}

	child, err := cntxt.Reborn()
	if err != nil {
		log.Fatalf("Failed to start in the background: %v", err)
	}
	if child != nil {
		log.Infof("glpaper started in the background with PID %d", child.Pid)
		return false
	}
	return true
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	RegisterFlags(rootCmd)

	rootCmd.AddCommand(
		cmd.NewNextCmd(),
		cmd.NewReloadCmd(),
		cmd.NewStatusCmd(),
		cmd.NewStopCmd(),
		cmd.NewInstallConfigCmd(),
		cmd.NewGenManCmd(rootCmd),
	)
}
