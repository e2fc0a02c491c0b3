package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"mdnotes-server/internal/domain"
	"mdnotes-server/internal/repository"

	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the notes in the notes directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		repo, err := repository.NewNoteRepository(cfg.Notes.Dir, cfg.Notes.Pattern)
		if err != nil {
			return err
		}

		names, err := repo.List()
		if err != nil {
			return fmt.Errorf("listing notes: %w", err)
		}
		sort.Strings(names)

		if listJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(domain.FileListResponse{Files: names})
		}

		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}
