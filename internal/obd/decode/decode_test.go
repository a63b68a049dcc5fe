package decode

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestCelsius(t *testing.T) {
	for b := 0; b <= 255; b++ {
		assert.Equal(t, int16(b-40), Celsius(uint8(b)))
	}
	assert.Equal(t, int16(-40), Celsius(0))
	assert.Equal(t, int16(215), Celsius(255))
}

func TestPercent(t *testing.T) {
	for b := 0; b <= 255; b++ {
		assert.InDelta(t, float64(b)/2.55, Percent(uint8(b)), 1e-12)
	}
	assert.Equal(t, 0.0, Percent(0))
	assert.InDelta(t, 100.0, Percent(255), 1e-9)
}

func TestTimingAdvance(t *testing.T) {
	for b := 0; b <= 255; b++ {
		assert.Equal(t, float64(b)/2-64, TimingAdvance(uint8(b)))
	}
	assert.Equal(t, -64.0, TimingAdvance(0))
	assert.Equal(t, 63.5, TimingAdvance(255))
}

func TestFuelTrim(t *testing.T) {
	assert.Equal(t, -100.0, FuelTrim(0))
	assert.InDelta(t, 0.0, FuelTrim(128), 1e-9)
	assert.InDelta(t, 99.21875, FuelTrim(255), 1e-9)
	assert.Equal(t, FuelTrim(42), EGRError(42))
}

func TestTwoByteFormulas(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"rpm 0x1AF8", EngineSpeed(0x1AF8), 1726},
		{"rpm max", EngineSpeed(0xFFFF), 16383.75},
		{"maf 0x0190", AirFlowRate(0x0190), 4},
		{"maf max", AirFlowRate(0xFFFF), 655.35},
		{"rail pressure max", FuelRailPressure(0xFFFF), 5177.265},
		{"catalyst", CatalystTemperature(0x1234), 426},
		{"module voltage", ControlModuleVoltage(0x3A98), 15},
		{"absolute load", AbsoluteLoad(255), 100},
		{"fuel rate", FuelRate(40), 2},
		{"injection timing", InjectionTiming(0x6900), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.got, 1e-9)
		})
	}

	assert.Equal(t, uint32(655350), FuelRailGaugePressure(0xFFFF))
	assert.Equal(t, uint16(765), FuelPressure(255))
	assert.Equal(t, uint16(0x0102), Identity(uint16(0x0102)))
}

func TestOxygenSensorVoltage(t *testing.T) {
	s := OxygenSensorVoltage(0x5A80)
	assert.InDelta(t, 0.45, s.Voltage, 1e-12)
	assert.Equal(t, 0.0, s.FuelTrim)

	s = OxygenSensorVoltage(0xFF00)
	assert.InDelta(t, 1.275, s.Voltage, 1e-12)
	assert.Equal(t, -100.0, s.FuelTrim)

	// 0xFF: sensor not used for trim
	s = OxygenSensorVoltage(0x10FF)
	assert.Equal(t, 0.0, s.FuelTrim)
}

func TestOxygenSensorLambda(t *testing.T) {
	l := OxygenSensorLambda(0x80000000)
	assert.Equal(t, 1.0, l.Ratio)
	assert.Equal(t, 0.0, l.Voltage)

	l = OxygenSensorLambda(0x00008000)
	assert.Equal(t, 0.0, l.Ratio)
	assert.Equal(t, 4.0, l.Voltage)

	l = OxygenSensorLambda(0xFFFFFFFF)
	assert.InDelta(t, 2.0, l.Ratio, 1e-3)
	assert.InDelta(t, 8.0, l.Voltage, 1e-3)
}

func TestAvailablePIDs(t *testing.T) {
	tests := []struct {
		name  string
		input uint32
		block uint8
		want  []uint8
	}{
		{
			name:  "wikipedia example",
			input: 0xBE1FA813,
			want:  []uint8{1, 3, 4, 5, 6, 7, 12, 13, 14, 15, 16, 17, 19, 21, 28, 31, 32},
		},
		{
			name:  "none",
			input: 0,
			want:  []uint8{},
		},
		{
			name:  "msb and lsb of second block",
			input: 0x80000001,
			block: 1,
			want:  []uint8{0x21, 0x40},
		},
		{
			name:  "all of third block",
			input: 0xFFFFFFFF,
			block: 2,
			want: []uint8{
				0x41, 0x42, 0x43, 0x44, 0x45, 0x46, 0x47, 0x48, 0x49, 0x4A, 0x4B, 0x4C, 0x4D, 0x4E, 0x4F, 0x50,
				0x51, 0x52, 0x53, 0x54, 0x55, 0x56, 0x57, 0x58, 0x59, 0x5A, 0x5B, 0x5C, 0x5D, 0x5E, 0x5F, 0x60,
			},
		},
		{
			name:  "last block stops at FF",
			input: 0xFFFFFFFF,
			block: 7,
			want: []uint8{
				0xE1, 0xE2, 0xE3, 0xE4, 0xE5, 0xE6, 0xE7, 0xE8, 0xE9, 0xEA, 0xEB, 0xEC, 0xED, 0xEE, 0xEF, 0xF0,
				0xF1, 0xF2, 0xF3, 0xF4, 0xF5, 0xF6, 0xF7, 0xF8, 0xF9, 0xFA, 0xFB, 0xFC, 0xFD, 0xFE, 0xFF,
			},
		},
		{
			name:  "lsb of last block",
			input: 0x00000001,
			block: 7,
			want:  []uint8{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AvailablePIDs(tt.input, tt.block)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AvailablePIDs(%#08x, %d) mismatch (-want +got):\n%s", tt.input, tt.block, diff)
			}
		})
	}
}

func TestMonitorStatusOf(t *testing.T) {
	m := MonitorStatusOf(0x83076504)
	assert.True(t, m.MIL)
	assert.Equal(t, uint8(3), m.DTCCount)
	assert.False(t, m.CompressionIgnition)
	assert.Equal(t, uint32(0x83076504), m.Raw)

	m = MonitorStatusOf(0x00080000)
	assert.False(t, m.MIL)
	assert.True(t, m.CompressionIgnition)
}

func TestDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, AvailablePIDs(0xBE1FA813, 0), AvailablePIDs(0xBE1FA813, 0))
		assert.Equal(t, OxygenSensorVoltage(0x5A80), OxygenSensorVoltage(0x5A80))
		assert.Equal(t, Standard(7), Standard(7))
	}
}
