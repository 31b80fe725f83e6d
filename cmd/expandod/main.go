// Command expandod is expando's daemon and CLI entry point: it assembles
// the cobra root command the way the teacher's main() does (subcommand
// registration; this root defines no persistent flags), then dispatches
// to the daemon
// lifecycle, the store, or the control API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kir-gadjello/expando/internal/config"
	"github.com/kir-gadjello/expando/internal/logging"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "expandod",
		Short: "expando daemon and control CLI",
		Long:  "expandod runs the text-expansion daemon and exposes the snippet store over a CLI and a local HTTP API.",
	}

	log := logging.Default()

	rootCmd.AddCommand(
		newStartCmd(log),
		newStopCmd(log),
		newStatusCmd(log),
		newAddCmd(),
		newUpdateCmd(),
		newDeleteCmd(),
		newListCmd(),
		newServeCmd(log),
		newPortCmd(),
		newAPIStatusCmd(),
		newAPIDiagnoseCmd(log),
		newDoctorCmd(log),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// storePath resolves $HOME/.expando/expando.json, per spec.md §6.
func storePath() (string, error) {
	return config.Path(config.AppName + ".json")
}

func pidPath() (string, error) {
	return config.Path(config.AppName + "-daemon.pid")
}

func apiPortPath() (string, error) {
	return config.Path(config.AppName + "-api.port")
}

func scriptDir() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return dir + "/tmp", nil
}

func loadResolvedConfig() (config.Resolved, error) {
	f, err := config.Load()
	if err != nil {
		return config.Resolved{}, err
	}
	return config.Resolve(f), nil
}
