package cmd

import (
	"elmpid/internal/cmd/list"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known PIDs and their metadata",
	Args:  cobra.NoArgs,
	RunE:  list.Run,
}

func init() {
	listCmd.Flags().String("mode", "", "Only list this mode (hex)")
	listCmd.Flags().String("format", list.FormatTable, "Output format: table, yaml or json")
}
