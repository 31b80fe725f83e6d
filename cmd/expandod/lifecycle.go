package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kir-gadjello/expando/internal/daemon"
	"github.com/kir-gadjello/expando/internal/logging"
	"github.com/kir-gadjello/expando/internal/store"
)

func newStartCmd(log *logging.Logger) *cobra.Command {
	var foreground bool
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the expando daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !foreground {
				detached, err := daemon.Detach()
				if err != nil {
					return err
				}
				if detached {
					fmt.Println("expando daemon started in the background")
					return nil
				}
			}
			return runDaemon(log)
		},
	}
	cmd.Flags().BoolVar(&foreground, "foreground", false, "run in the foreground instead of detaching")
	return cmd
}

func newServeCmd(log *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon in the foreground (alias for start --foreground)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(log)
		},
	}
}

func runDaemon(log *logging.Logger) error {
	cfg, err := loadResolvedConfig()
	if err != nil {
		return err
	}

	sp, err := storePath()
	if err != nil {
		return err
	}
	st, err := store.Open(sp)
	if err != nil {
		return err
	}

	pp, err := pidPath()
	if err != nil {
		return err
	}
	pidFile, err := daemon.Acquire(pp)
	if err != nil {
		return err
	}
	defer pidFile.Release()

	apiPort, err := apiPortPath()
	if err != nil {
		return err
	}
	sd, err := scriptDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(sd, 0o755); err != nil {
		return err
	}

	svc := daemon.NewServices(cfg, st, pp, apiPort, sd, log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("expando daemon starting (pid %d)", os.Getpid())
	return daemon.Run(ctx, svc, pidFile)
}

func newStopCmd(log *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running expando daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadResolvedConfig()
			if err != nil {
				return err
			}
			pp, err := pidPath()
			if err != nil {
				return err
			}
			if err := daemon.Stop(pp, cfg.StopTimeout, log); err != nil {
				return err
			}
			fmt.Println("expando daemon stopped")
			return nil
		},
	}
}

func newStatusCmd(log *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report the daemon's lifecycle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			pp, err := pidPath()
			if err != nil {
				return err
			}
			state, pid := daemon.Status(pp)
			if pid > 0 {
				fmt.Printf("%s (pid %d)\n", state, pid)
			} else {
				fmt.Println(state)
			}
			return nil
		},
	}
}
