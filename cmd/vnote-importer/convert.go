// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/vnote-importer/internal/importer"
	"github.com/pdiddy/vnote-importer/internal/vnote"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert one vNote file and print the ENML document",
	Long: `Convert parses a single vNote file and prints the resulting ENML
document to stdout without storing anything. Use --json to print the whole
parsed note, including the decoded body and timestamps.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func runConvert(cmd *cobra.Command, args []string) error {
	loc, err := vnote.ParseOffset(viper.GetString("import.timezone_offset"))
	if err != nil {
		return err
	}

	note, err := importer.ParseFile(vnote.NewParser(loc), args[0])
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(note)
	}
	fmt.Println(note.Content)
	return nil
}

func init() {
	convertCmd.Flags().Bool("json", false, "print the parsed note as JSON")

	rootCmd.AddCommand(convertCmd)
}
