package cmd

import (
	"elmpid/internal/cmd/decode"

	"github.com/spf13/cobra"
)

var decodeCmd = &cobra.Command{
	Use:     "decode MODE PID HEX...",
	Short:   "Decode a raw payload without a vehicle",
	Example: "  elmpid decode 01 0C 1AF8\n  elmpid decode 01 00 BE 1F A8 13",
	Args:    cobra.MinimumNArgs(3),
	RunE:    decode.Run,
}
