package list

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"elmpid/internal/obd/pid"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
)

func Run(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	format, _ := cmd.Flags().GetString("format")

	infos, err := Infos(pid.Default(), mode)
	if err != nil {
		return err
	}
	return Write(cmd.OutOrStdout(), infos, format)
}

// Infos collects descriptor metadata for one mode, or every mode when mode is empty.
func Infos(reg *pid.Registry, mode string) ([]pid.Info, error) {
	modes := reg.Modes()
	if mode != "" {
		m, err := pid.ParseNumber(mode)
		if err != nil {
			return nil, err
		}
		if len(reg.All(m)) == 0 {
			return nil, fmt.Errorf("mode %02X: %w", m, pid.ErrNotFound)
		}
		modes = []byte{m}
	}

	var infos []pid.Info
	for _, m := range modes {
		for _, d := range reg.All(m) {
			infos = append(infos, d.Info())
		}
	}
	return infos, nil
}

func Write(w io.Writer, infos []pid.Info, format string) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(infos); err != nil {
			return err
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	case FormatTable, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MODE\tPID\tSIZE\tUNIT\tMIN\tMAX\tDESCRIPTION")
		for _, i := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				i.Mode, i.PID, i.ResultSize, orDash(i.Unit), bound(i.Min), bound(i.Max), i.Description)
		}
		return tw.Flush()
	}
	return fmt.Errorf("unknown format %q", format)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func bound(v any) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(v)
}
