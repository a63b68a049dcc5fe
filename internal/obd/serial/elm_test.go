package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elmpid/internal/obd"
)

var engineRPM = obd.Request{Mode: 0x01, PID: 0x0C}

func TestParseELMResponse(t *testing.T) {
	tests := []struct {
		name string
		resp string
		req  obd.Request
		want []byte
	}{
		{"spaces off", "410C1AF8", engineRPM, []byte{0x1A, 0xF8}},
		{"spaces on", "41 0C 1A F8 ", engineRPM, []byte{0x1A, 0xF8}},
		{"lowercase", "41 0c 1a f8", engineRPM, []byte{0x1A, 0xF8}},
		{"searching", "SEARCHING...\r41 00 BE 1F A8 13\r", obd.RequestSupportedPIDs, []byte{0xBE, 0x1F, 0xA8, 0x13}},
		{"echo", "0100\r4100BE1FA813", obd.RequestSupportedPIDs, []byte{0xBE, 0x1F, 0xA8, 0x13}},
		{"two ecus first wins", "4100BE1FA813\r4100 80 00 00 00", obd.RequestSupportedPIDs, []byte{0xBE, 0x1F, 0xA8, 0x13}},
		{"other pid skipped", "410D32\r410C0FA0", engineRPM, []byte{0x0F, 0xA0}},
		{"coolant", "41 05 7B", obd.Request{Mode: 0x01, PID: 0x05}, []byte{0x7B}},
		{"freeze frame", "42 0C 00 0F A0", obd.Request{Mode: 0x02, PID: 0x0C}, []byte{0x0F, 0xA0}},
		{"can dtc", "43 01 01 33", obd.RequestStoredDTCs, []byte{0x01, 0x01, 0x33}},
		{"legacy dtc lines", "43 01 33 00 00 00 00\r43 04 20 00 00 00 00", obd.RequestStoredDTCs,
			[]byte{0x01, 0x33, 0x00, 0x00, 0x00, 0x00, 0x04, 0x20, 0x00, 0x00, 0x00, 0x00}},
		{"multi frame", "00A\r0: 43 04 01 33 04\r1: 20 01 71 C1 00 00 00", obd.RequestStoredDTCs,
			[]byte{0x04, 0x01, 0x33, 0x04, 0x20, 0x01, 0x71, 0xC1, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseELMResponse(tt.resp, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseELMResponseNoData(t *testing.T) {
	for _, resp := range []string{
		"NO DATA",
		"SEARCHING...\rUNABLE TO CONNECT",
		"?",
		"CAN ERROR",
		"",
		"410D32",
		"41 0C ZZ",
	} {
		_, err := parseELMResponse(resp, engineRPM)
		assert.ErrorIs(t, err, obd.ErrNoResponse, "response %q", resp)
	}
}

func TestParseVoltage(t *testing.T) {
	v, err := parseVoltage("12.5V")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = parseVoltage(" 13.8v\r")
	require.NoError(t, err)
	assert.Equal(t, 13.8, v)

	_, err = parseVoltage("?")
	assert.Error(t, err)
}

func TestProtocolName(t *testing.T) {
	assert.Equal(t, "ISO 15765-4 CAN (11 bit ID, 500 kbaud)", ProtocolName("A6"))
	assert.Equal(t, "ISO 9141-2 (5 baud init)", ProtocolName("3"))
	assert.Equal(t, "SAE J1939 CAN (29 bit ID, 250 kbaud)", ProtocolName("a"))
	assert.Equal(t, "Unknown", ProtocolName("C"))
}

func TestPickPort(t *testing.T) {
	assert.Equal(t, "", pickPort(nil))
	assert.Equal(t, "/dev/ttyUSB0", pickPort([]string{"/dev/ttyS0", "/dev/ttyUSB0", "/dev/ttyS1"}))
	assert.Equal(t, "/dev/rfcomm0", pickPort([]string{"/dev/ttyS1", "/dev/rfcomm0"}))
	assert.Equal(t, "/dev/ttyS0", pickPort([]string{"/dev/ttyS1", "/dev/ttyS0"}))

	assert.Equal(t, "COM3", defaultPort("windows"))
	assert.Equal(t, "/dev/ttyUSB0", defaultPort("linux"))
}
