package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kir-gadjello/expando/internal/config"
	"github.com/kir-gadjello/expando/internal/daemon"
	"github.com/kir-gadjello/expando/internal/logging"
	"github.com/kir-gadjello/expando/internal/observer"
	"github.com/kir-gadjello/expando/internal/synth"
)

func newDoctorCmd(log *logging.Logger) *cobra.Command {
	var interactive bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check system capabilities required to run the daemon",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("expando doctor")
			fmt.Println("==============")

			if dir, err := config.Dir(); err == nil {
				fmt.Printf("%s config dir  : %s\n", checkmark(true), dir)
			} else {
				fmt.Printf("%s config dir  : %v\n", checkmark(false), err)
			}

			if pp, err := pidPath(); err == nil {
				state, pid := daemon.Status(pp)
				fmt.Printf("%s daemon      : %s (pid %d)\n", checkmark(state == daemon.Running), state, pid)
			}

			if devices := observer.KeyboardDevices(); len(devices) > 0 {
				fmt.Printf("%s input hook  : %d keyboard device(s) found\n", checkmark(true), len(devices))
			} else {
				fmt.Printf("%s input hook  : no readable /dev/input/event* devices found\n", checkmark(false))
			}

			if emitter, err := synth.NewEmitter(); err == nil {
				emitter.Close()
				fmt.Printf("%s keystroke injection: available\n", checkmark(true))
			} else {
				fmt.Printf("%s keystroke injection: %v\n", checkmark(false), err)
			}

			if isatty.IsTerminal(os.Stdout.Fd()) {
				fmt.Printf("%s terminal    : interactive\n", checkmark(true))
			} else {
				fmt.Printf("%s terminal    : not a tty (ok for a service manager)\n", checkmark(true))
			}

			if interactive {
				if err := interactiveEchoTest(); err != nil {
					fmt.Printf("%s echo test   : %v\n", checkmark(false), err)
				}
			}
		},
	}
	cmd.Flags().BoolVar(&interactive, "interactive", false, "also run a PTY-backed keystroke echo test")
	return cmd
}

func checkmark(ok bool) string {
	if ok {
		return "[ok]"
	}
	return "[--]"
}

// interactiveEchoTest spawns the user's shell in a PTY and waits for a
// single keypress to confirm raw-mode terminal I/O behaves as expected on
// this machine, the way the teacher's session mode drives a PTY-wrapped
// shell with term.MakeRaw + a single blocking stdin read.
func interactiveEchoTest() error {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	fmt.Println("press any key to confirm raw input works; the spawned shell is closed afterwards")

	c := exec.Command(shell)
	ptmx, err := pty.Start(c)
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}
	defer ptmx.Close()

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	key, err := readSingleKey()
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	fmt.Printf("\r\ngot key %q\r\n", key)
	return c.Process.Kill()
}

func readSingleKey() (rune, error) {
	b := make([]byte, 1)
	if _, err := os.Stdin.Read(b); err != nil {
		return 0, err
	}
	return rune(b[0]), nil
}
