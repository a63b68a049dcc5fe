package cmd

import (
	"elmpid/internal/cmd/scan"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Discover the PIDs supported by the connected vehicle",
	Args:  cobra.NoArgs,
	RunE:  scan.Run,
}
