package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bankdir/ifsc-api/internal/model"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the persisted lookup index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Force a full index rebuild from the source listing page",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ix := buildServices()
		records, err := ix.Build(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("rebuilt index: %d records -> %s\n", len(records), ix.Path())
		return nil
	},
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted index artifact",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, ix := buildServices()

		data, err := os.ReadFile(ix.Path())
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Printf("no index artifact at %s\n", ix.Path())
				return nil
			}
			return eris.Wrap(err, "read index artifact")
		}

		var records []model.IndexRecord
		if err := json.Unmarshal(data, &records); err != nil {
			fmt.Printf("index artifact at %s is corrupt and will be rebuilt on next use\n", ix.Path())
			return nil
		}

		fmt.Printf("%s: %d records\n", ix.Path(), len(records))
		for _, r := range records {
			fmt.Printf("  %-40s bank=%q prefix=%q\n", r.Title, r.Bank, r.IFSCPrefix)
		}
		return nil
	},
}

func init() {
	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}
