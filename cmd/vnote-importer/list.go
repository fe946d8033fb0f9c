// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/vnote-importer/internal/notestore"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes in the SQLite store",
	Long: `List prints every note stored in the SQLite database, ordered by
creation time.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := notestore.NewSQLiteStore(viper.GetString("store.db_path"))
	if err != nil {
		return err
	}
	defer store.Close()

	notes, err := store.Notes(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(notes)
	}

	if len(notes) == 0 {
		fmt.Println("No notes stored.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-25s  %s\n", "GUID", "Title", "Created", "Updated")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 120))
	for _, n := range notes {
		title := n.Title
		if len(title) > 30 {
			title = title[:27] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-36s  %-30s  %-25s  %s\n",
			n.GUID, title, n.Created.Format(time.RFC3339), n.Updated.Format(time.RFC3339))
	}
	fmt.Fprintf(os.Stdout, "\n%d notes\n", len(notes))
	return nil
}

var showCmd = &cobra.Command{
	Use:   "show <guid>",
	Short: "Print the ENML document of a stored note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := notestore.NewSQLiteStore(viper.GetString("store.db_path"))
		if err != nil {
			return err
		}
		defer store.Close()

		content, err := store.Content(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Println(content)
		return nil
	},
}

func init() {
	listCmd.Flags().Bool("json", false, "output notes as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}
