package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bankdir/ifsc-api/internal/model"
)

var (
	lookupBank string
	lookupIFSC string
)

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List the bank names known to the index",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _ := buildServices()
		banks, err := svc.Banks(cmd.Context())
		if err != nil {
			return err
		}
		for _, b := range banks {
			fmt.Println(b)
		}
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up branch rows by bank name or exact IFSC",
	RunE: func(cmd *cobra.Command, args []string) error {
		if (lookupBank == "") == (lookupIFSC == "") {
			return eris.New("exactly one of --bank or --ifsc is required")
		}

		svc, _ := buildServices()

		var rows []model.BranchRow
		var err error
		if lookupBank != "" {
			rows, err = svc.ByBank(cmd.Context(), lookupBank)
		} else {
			rows, err = svc.ByIFSC(cmd.Context(), lookupIFSC)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupBank, "bank", "", "case-insensitive substring of the bank name")
	lookupCmd.Flags().StringVar(&lookupIFSC, "ifsc", "", "full IFSC (11 characters)")
	rootCmd.AddCommand(banksCmd)
	rootCmd.AddCommand(lookupCmd)
}
