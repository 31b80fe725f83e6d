package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kir-gadjello/expando/internal/api"
	"github.com/kir-gadjello/expando/internal/logging"
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	styleBad  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

func readAPIPort() (int, error) {
	path, err := apiPortPath()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read api port sidecar: %w (is the daemon running?)", err)
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func apiGet(path string, out interface{}) error {
	port, err := readAPIPort()
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d%s", port, path))
	if err != nil {
		return fmt.Errorf("control api unreachable: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *string         `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decode control api response: %w", err)
	}
	if !body.Success {
		msg := "unknown error"
		if body.Error != nil {
			msg = *body.Error
		}
		return fmt.Errorf("control api: %s", msg)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body.Data, out)
}

func newPortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "port",
		Short: "Print the local control API's bound port",
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := readAPIPort()
			if err != nil {
				return err
			}
			fmt.Println(port)
			return nil
		},
	}
}

func newAPIStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "api-status",
		Short: "Query the control API's /api/daemon/status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var running bool
			if err := apiGet("/api/daemon/status", &running); err != nil {
				fmt.Println(styleBad.Render("unreachable"))
				return err
			}
			if running {
				fmt.Println(styleOK.Render("running"))
			} else {
				fmt.Println(styleWarn.Render("not running"))
			}
			return nil
		},
	}
}

func newAPIDiagnoseCmd(log *logging.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "api-diagnose",
		Short: "Print the control API's full daemon details",
		RunE: func(cmd *cobra.Command, args []string) error {
			var details api.Details
			if err := apiGet("/api/daemon/details", &details); err != nil {
				return err
			}
			fmt.Printf("running:     %v\n", details.Running)
			fmt.Printf("pid:         %d\n", details.PID)
			fmt.Printf("config path: %s\n", details.ConfigPath)
			fmt.Printf("api port:    %d\n", details.APIServer.Port)
			fmt.Printf("api url:     %s\n", details.APIServer.URL)
			fmt.Printf("recent text: %q\n", details.RecentIdleText)
			return nil
		},
	}
}
