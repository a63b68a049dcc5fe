package scan

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"elmpid/internal/cmd/connect"
	"elmpid/internal/obd"
	"elmpid/internal/obd/pid"

	"github.com/spf13/cobra"
)

// Run lists the PIDs the vehicle advertises for the configured mode.
func Run(cmd *cobra.Command, args []string) error {
	mode, err := connect.Mode()
	if err != nil {
		return err
	}

	provider, err := connect.Start(cmd.Context())
	if err != nil {
		return err
	}
	defer provider.Stop()

	return Scan(cmd.Context(), cmd.OutOrStdout(), provider, pid.Default(), mode)
}

func Scan(ctx context.Context, w io.Writer, provider obd.OBDProvider, reg *pid.Registry, mode byte) error {
	supported, err := obd.Discover(ctx, provider, reg, mode)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PID\tSIZE\tDESCRIPTION")
	known := 0
	for _, number := range supported {
		d, err := reg.Lookup(mode, number)
		if err != nil {
			fmt.Fprintf(tw, "%02X\t-\tunknown\n", number)
			continue
		}
		known++
		fmt.Fprintf(tw, "%02X\t%s\t%s\n", number, d.ResultSize(), d.Description())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%d PIDs supported in mode %02X, %d decodable\n", len(supported), mode, known)
	return err
}
