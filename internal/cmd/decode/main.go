package decode

import (
	"fmt"
	"io"

	"elmpid/internal/obd/pid"

	"github.com/spf13/cobra"
)

// Run decodes a payload given as MODE PID HEX...
func Run(cmd *cobra.Command, args []string) error {
	reading, err := Decode(pid.Default(), args)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), reading)
}

func Decode(reg *pid.Registry, args []string) (pid.Reading, error) {
	if len(args) < 3 {
		return pid.Reading{}, fmt.Errorf("expected MODE PID HEX, got %d arguments", len(args))
	}
	mode, err := pid.ParseNumber(args[0])
	if err != nil {
		return pid.Reading{}, err
	}
	number, err := pid.ParseNumber(args[1])
	if err != nil {
		return pid.Reading{}, err
	}
	raw, err := pid.ParsePayload(args[2:]...)
	if err != nil {
		return pid.Reading{}, err
	}
	return reg.Decode(mode, number, raw)
}

func write(w io.Writer, r pid.Reading) error {
	_, err := fmt.Fprintln(w, r)
	return err
}
