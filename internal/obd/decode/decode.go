// Package decode holds the OBD-II formulas that turn raw response words into
// engineering values. Every function is pure: multi-byte words are assembled
// big-endian (A is the high byte) by the caller before they get here.
package decode

// Celsius decodes a one byte temperature with the standard -40 offset.
func Celsius(v uint8) int16 {
	return int16(v) - 40
}

// Percent decodes the 0..255 -> 0..100% scale used by load, throttle, EGR,
// evaporative purge and fuel level.
func Percent(v uint8) float64 {
	return float64(v) / 2.55
}

// FuelTrim decodes short/long term fuel trim: below 128 is leaner, above is richer.
func FuelTrim(v uint8) float64 {
	return float64(v)/1.28 - 100
}

// EGRError shares the fuel trim scale.
func EGRError(v uint8) float64 {
	return float64(v)/1.28 - 100
}

// TimingAdvance returns degrees before TDC.
func TimingAdvance(v uint8) float64 {
	return float64(v)/2 - 64
}

// EngineSpeed returns rpm from (256A+B)/4.
func EngineSpeed(v uint16) float64 {
	return float64(v) / 4
}

// AirFlowRate returns the MAF sensor reading in grams/sec.
func AirFlowRate(v uint16) float64 {
	return float64(v) / 100
}

// FuelRailPressure is relative to manifold vacuum, in kPa.
func FuelRailPressure(v uint16) float64 {
	return 0.079 * float64(v)
}

// FuelRailGaugePressure is used by diesel and gasoline direct injection, in kPa.
func FuelRailGaugePressure(v uint16) uint32 {
	return 10 * uint32(v)
}

// FuelPressure is gauge pressure in kPa.
func FuelPressure(v uint8) uint16 {
	return 3 * uint16(v)
}

// Identity is for PIDs whose raw word already is the value (km/h, kPa, seconds, km).
func Identity[T any](v T) T {
	return v
}

func CatalystTemperature(v uint16) float64 {
	return float64(v)/10 - 40
}

func ControlModuleVoltage(v uint16) float64 {
	return float64(v) / 1000
}

func AbsoluteLoad(v uint16) float64 {
	return float64(v) * 100 / 255
}

// FuelRate is engine fuel rate in L/h.
func FuelRate(v uint16) float64 {
	return float64(v) / 20
}

// InjectionTiming is fuel injection timing in degrees.
func InjectionTiming(v uint16) float64 {
	return float64(v)/128 - 210
}

// OxygenSensor is the (voltage, short term fuel trim) pair reported by the
// narrow band sensors at PIDs 0x14-0x1B.
type OxygenSensor struct {
	Voltage  float64 `json:"voltage" yaml:"voltage"`
	FuelTrim float64 `json:"fuel_trim" yaml:"fuel_trim"`
}

// OxygenSensorVoltage decodes A as volts and B as the trim. B == 0xFF means the
// sensor is not used in the trim calculation and yields a zero trim.
func OxygenSensorVoltage(v uint16) OxygenSensor {
	a := v >> 8
	b := v & 0xff

	s := OxygenSensor{Voltage: float64(a) / 200}
	if b != 0xff {
		s.FuelTrim = 100*float64(b)/128 - 100
	}
	return s
}

// Lambda is the (equivalence ratio, voltage) pair reported by wide band
// sensors at PIDs 0x24-0x2B.
type Lambda struct {
	Ratio   float64 `json:"ratio" yaml:"ratio"`
	Voltage float64 `json:"voltage" yaml:"voltage"`
}

func OxygenSensorLambda(v uint32) Lambda {
	ab := v >> 16
	cd := v & 0xffff
	return Lambda{
		Ratio:   2.0 / 65536 * float64(ab),
		Voltage: 8.0 / 65536 * float64(cd),
	}
}

// AvailablePIDs unpacks a supported-PIDs bitmap. The MSB stands for PID
// block*32+1 and the LSB for block*32+32; the result is in ascending order.
// Bits past PID 0xFF are dropped.
func AvailablePIDs(v uint32, block uint8) []uint8 {
	pids := make([]uint8, 0, 32)
	for offset := 0; offset < 32; offset++ {
		p := offset + 1 + 32*int(block)
		if p > 0xFF {
			break
		}
		if v&(1<<(31-offset)) != 0 {
			pids = append(pids, uint8(p))
		}
	}
	return pids
}

// MonitorStatus is the first part of PID 0x01.
type MonitorStatus struct {
	MIL                 bool   `json:"mil" yaml:"mil"`
	DTCCount            uint8  `json:"dtc_count" yaml:"dtc_count"`
	CompressionIgnition bool   `json:"compression_ignition" yaml:"compression_ignition"`
	Raw                 uint32 `json:"raw" yaml:"raw"`
}

func MonitorStatusOf(v uint32) MonitorStatus {
	a := uint8(v >> 24)
	b := uint8(v >> 16)
	return MonitorStatus{
		MIL:                 a&0x80 != 0,
		DTCCount:            a & 0x7f,
		CompressionIgnition: b&0x08 != 0,
		Raw:                 v,
	}
}

// Unused marks PIDs whose payload is accepted but not interpreted.
type Unused struct{}

func (Unused) String() string { return "-" }

// Ignore is the interpret function for Unused PIDs.
func Ignore[T any](T) Unused {
	return Unused{}
}
