package decode

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elmpid/internal/obd/pid"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"01", "0C", "1AF8"}, "010C Engine speed: 1726.00 rpm"},
		{[]string{"0x01", "0x05", "7b"}, "0105 Engine coolant temperature: 83 °C"},
		{[]string{"01", "0C", "0x1A", "0xF8"}, "010C Engine speed: 1726.00 rpm"},
		{[]string{"01", "E0", "00000003"}, "01E0 PIDs supported [E1 - FF]: [FF]"},
		{[]string{"01", "00", "BE", "1F", "A8", "13"}, "0100 PIDs supported [01 - 20]: [01 03 04 05 06 07 0C 0D 0E 0F 10 11 13 15 1C 1F 20]"},
		{[]string{"02", "02", "01 33"}, "0202 DTC that caused freeze frame to be stored: P0133"},
	}
	for _, tt := range tests {
		r, err := Decode(pid.Default(), tt.args)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, r.String())
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(pid.Default(), []string{"01", "0C"})
	assert.Error(t, err)

	_, err = Decode(pid.Default(), []string{"01", "FF", "00"})
	assert.ErrorIs(t, err, pid.ErrNotFound)

	_, err = Decode(pid.Default(), []string{"01", "0C", "1A"})
	assert.ErrorIs(t, err, pid.ErrInvalidLength)

	_, err = Decode(pid.Default(), []string{"01", "0C", "XYZ"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, Run(cmd, []string{"01", "0D", "32"}))
	assert.Equal(t, "010D Vehicle speed: 50 km/h\n", out.String())
}
