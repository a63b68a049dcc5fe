package dtc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"elmpid/internal/models"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		a, b byte
		want string
	}{
		{0x01, 0x33, "P0133"},
		{0x03, 0x01, "P0301"},
		{0x41, 0x23, "C0123"},
		{0x9A, 0x00, "B1A00"},
		{0xE1, 0x03, "U2103"},
		{0x00, 0x00, "P0000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Decode(tt.a, tt.b))
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    []models.DTCEntry
	}{
		{
			name:    "non CAN with padding",
			payload: []byte{0x03, 0x01, 0x04, 0x20, 0x00, 0x00},
			want: []models.DTCEntry{
				{Code: "P0301", Description: "Cylinder 1 Misfire Detected"},
				{Code: "P0420", Description: "Catalyst System Efficiency Below Threshold"},
			},
		},
		{
			name:    "CAN with count byte",
			payload: []byte{0x01, 0xC1, 0x00},
			want: []models.DTCEntry{
				{Code: "U0100", Description: "Lost Communication With ECM/PCM"},
			},
		},
		{
			name:    "no codes",
			payload: []byte{0x00},
			want:    nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Parse(tt.payload)); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "System Too Lean (Bank 1)", Describe("P0171"))
	assert.Equal(t, "TPMS/Tire Pressure Related Code", Describe("C2199"))
	assert.Equal(t, "Unknown powertrain code", Describe("P1234"))
	assert.Equal(t, "Unknown network code", Describe("U3000"))
	assert.Equal(t, "Unknown DTC", Describe(""))
}
