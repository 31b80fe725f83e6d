package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kir-gadjello/expando/internal/store"
)

// openStore opens the snippet store file directly. The store's own file
// lock (internal/store/lock.go) keeps this safe to run alongside a
// running daemon, the same way the teacher's history.Manager lets the TUI
// and the CLI share one sqlite file.
func openStore() (*store.Store, error) {
	path, err := storePath()
	if err != nil {
		return nil, err
	}
	return store.Open(path)
}

func newAddCmd() *cobra.Command {
	var shortcut, snippet string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new snippet",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !store.ValidShortcutName(trimParams(shortcut)) {
				return fmt.Errorf("invalid shortcut name: %q", shortcut)
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			entry, err := st.Add(shortcut, snippet)
			if err != nil {
				return err
			}
			return printEntry(entry)
		},
	}
	cmd.Flags().StringVar(&shortcut, "shortcut", "", "shortcut name, e.g. sig or greet(name)")
	cmd.Flags().StringVar(&snippet, "snippet", "", "expansion body")
	cmd.MarkFlagRequired("shortcut")
	cmd.MarkFlagRequired("snippet")
	return cmd
}

func newUpdateCmd() *cobra.Command {
	var shortcut, snippet string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Replace an existing snippet's body",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			entry, err := st.Update(trimParams(shortcut), snippet)
			if err != nil {
				return err
			}
			return printEntry(entry)
		},
	}
	cmd.Flags().StringVar(&shortcut, "shortcut", "", "shortcut name to update")
	cmd.Flags().StringVar(&snippet, "snippet", "", "new expansion body")
	cmd.MarkFlagRequired("shortcut")
	cmd.MarkFlagRequired("snippet")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var shortcut string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a snippet",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			if err := st.Delete(trimParams(shortcut)); err != nil {
				return err
			}
			fmt.Printf("deleted %q\n", shortcut)
			return nil
		},
	}
	cmd.Flags().StringVar(&shortcut, "shortcut", "", "shortcut name to delete")
	cmd.MarkFlagRequired("shortcut")
	return cmd
}

func newListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all snippets",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			entries := st.List()
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			for _, e := range entries {
				fmt.Printf("%-24s %s\n", e.Shortcut, e.Snippet)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON instead of a table")
	return cmd
}

func printEntry(e store.Entry) error {
	fmt.Printf("%s -> %s\n", e.Shortcut, e.Snippet)
	return nil
}

// trimParams strips a trailing "(...)" parameter list, since Update and
// Delete key off the bare index name (store.Entry.Name), not the full
// declaration the shortcut was added with.
func trimParams(shortcut string) string {
	for i, c := range shortcut {
		if c == '(' {
			return shortcut[:i]
		}
	}
	return shortcut
}
