package pid

import (
	"fmt"

	"elmpid/internal/obd/decode"
)

const (
	ModeCurrentData byte = 0x01
	ModeFreezeFrame byte = 0x02
)

// Units used by the tables.
const (
	UnitPercent     = "%"
	UnitCelsius     = "°C"
	UnitKPa         = "kPa"
	UnitRPM         = "rpm"
	UnitKMH         = "km/h"
	UnitDegreesTDC  = "° before TDC"
	UnitDegrees     = "°"
	UnitGramsPerSec = "g/s"
	UnitSeconds     = "s"
	UnitKM          = "km"
	UnitVolts       = "V"
	UnitLitresHour  = "L/h"
	UnitCount       = "count"
	UnitVoltsTrim   = "V, %"
	UnitLambda      = "ratio, V"
)

const (
	// maxTrim is the largest value the -100..+99 trim scale produces (255/1.28-100).
	maxTrim = 99.21875
	// maxSensorTrim is one step lower: B = 0xFF marks an oxygen sensor
	// unused for trim and decodes to 0.
	maxSensorTrim = 98.4375
)

// availablePIDs binds the block number of a supported-PIDs query: 0 for PID
// 0x00, 1 for 0x20 and so on.
func availablePIDs(block uint8) func(uint32) []uint8 {
	return func(v uint32) []uint8 {
		return decode.AvailablePIDs(v, block)
	}
}

func supportedPIDs(number byte) Descriptor {
	first := int(number) + 1
	return Define(ModeCurrentData, number,
		fmt.Sprintf("PIDs supported [%02X - %02X]", first, min(first+0x1F, 0xFF)),
		availablePIDs(number/0x20))
}

func percent(number byte, description string) Descriptor {
	return Define(ModeCurrentData, number, description, decode.Percent).
		WithUnit(UnitPercent).
		WithBounds(0, 100)
}

func temperature(number byte, description string) Descriptor {
	return Define(ModeCurrentData, number, description, decode.Celsius).
		WithUnit(UnitCelsius).
		WithBounds(-40, 215)
}

func fuelTrim(number byte, description string) Descriptor {
	return Define(ModeCurrentData, number, description, decode.FuelTrim).
		WithUnit(UnitPercent).
		WithBounds(-100, maxTrim)
}

func oxygenSensor(n int) Descriptor {
	return Define(ModeCurrentData, byte(0x13+n),
		fmt.Sprintf("Oxygen sensor %d, voltage and short term fuel trim", n),
		decode.OxygenSensorVoltage).
		WithUnit(UnitVoltsTrim).
		WithBounds(decode.OxygenSensor{Voltage: 0, FuelTrim: -100}, decode.OxygenSensor{Voltage: 1.275, FuelTrim: maxSensorTrim})
}

func oxygenSensorLambda(n int) Descriptor {
	return Define(ModeCurrentData, byte(0x23+n),
		fmt.Sprintf("Oxygen sensor %d, air-fuel equivalence ratio and voltage", n),
		decode.OxygenSensorLambda).
		WithUnit(UnitLambda).
		WithBounds(decode.Lambda{Ratio: 0, Voltage: 0}, decode.Lambda{Ratio: 2, Voltage: 8})
}

func catalystTemperature(number byte, description string) Descriptor {
	return Define(ModeCurrentData, number, description, decode.CatalystTemperature).
		WithUnit(UnitCelsius).
		WithBounds(-40, 6513.5)
}

// Mode01 returns the "show current data" PIDs in ascending order.
func Mode01() []Descriptor {
	descs := []Descriptor{
		supportedPIDs(0x00),
		Define(ModeCurrentData, 0x01, "Monitor status since DTCs cleared", decode.MonitorStatusOf),
		Define(ModeCurrentData, 0x02, "Freeze DTC", decode.Ignore[uint16]),
		Define(ModeCurrentData, 0x03, "Fuel system status", decode.FuelSystemStatus),
		percent(0x04, "Calculated engine load"),
		temperature(0x05, "Engine coolant temperature"),
		fuelTrim(0x06, "Short term fuel trim, bank 1"),
		fuelTrim(0x07, "Long term fuel trim, bank 1"),
		fuelTrim(0x08, "Short term fuel trim, bank 2"),
		fuelTrim(0x09, "Long term fuel trim, bank 2"),
		Define(ModeCurrentData, 0x0A, "Fuel pressure", decode.FuelPressure).
			WithUnit(UnitKPa).
			WithBounds(0, 765),
		Define(ModeCurrentData, 0x0B, "Intake manifold absolute pressure", decode.Identity[uint8]).
			WithUnit(UnitKPa).
			WithBounds(0, 255),
		Define(ModeCurrentData, 0x0C, "Engine speed", decode.EngineSpeed).
			WithUnit(UnitRPM).
			WithBounds(0, 16383.75),
		Define(ModeCurrentData, 0x0D, "Vehicle speed", decode.Identity[uint8]).
			WithUnit(UnitKMH).
			WithBounds(0, 255),
		Define(ModeCurrentData, 0x0E, "Timing advance", decode.TimingAdvance).
			WithUnit(UnitDegreesTDC).
			WithBounds(-64, 63.5),
		temperature(0x0F, "Intake air temperature"),
		Define(ModeCurrentData, 0x10, "Mass air flow sensor air flow rate", decode.AirFlowRate).
			WithUnit(UnitGramsPerSec).
			WithBounds(0, 655.35),
		percent(0x11, "Throttle position"),
		Define(ModeCurrentData, 0x12, "Commanded secondary air status", decode.SecondaryAir),
		Define(ModeCurrentData, 0x13, "Oxygen sensors present in 2 banks", decode.Ignore[uint8]),
	}

	for n := 1; n <= 8; n++ {
		descs = append(descs, oxygenSensor(n))
	}

	descs = append(descs,
		Define(ModeCurrentData, 0x1C, "OBD standards this vehicle conforms to", decode.Standard),
		Define(ModeCurrentData, 0x1D, "Oxygen sensors present in 4 banks", decode.Ignore[uint8]),
		Define(ModeCurrentData, 0x1E, "Auxiliary input status", decode.AuxiliaryInput),
		Define(ModeCurrentData, 0x1F, "Run time since engine start", decode.Identity[uint16]).
			WithUnit(UnitSeconds).
			WithBounds(0, 65535),
		supportedPIDs(0x20),
		Define(ModeCurrentData, 0x21, "Distance traveled with malfunction indicator lamp (MIL) on", decode.Identity[uint16]).
			WithUnit(UnitKM).
			WithBounds(0, 65535),
		Define(ModeCurrentData, 0x22, "Fuel rail pressure (relative to manifold vacuum)", decode.FuelRailPressure).
			WithUnit(UnitKPa).
			WithBounds(0, 5177.265),
		Define(ModeCurrentData, 0x23, "Fuel rail gauge pressure (diesel, or gasoline direct injection)", decode.FuelRailGaugePressure).
			WithUnit(UnitKPa).
			WithBounds(0, 655350),
	)

	for n := 1; n <= 8; n++ {
		descs = append(descs, oxygenSensorLambda(n))
	}

	descs = append(descs,
		percent(0x2C, "Commanded EGR"),
		Define(ModeCurrentData, 0x2D, "EGR error", decode.EGRError).
			WithUnit(UnitPercent).
			WithBounds(-100, maxTrim),
		percent(0x2E, "Commanded evaporative purge"),
		percent(0x2F, "Fuel tank level input"),
		Define(ModeCurrentData, 0x30, "Warm-ups since codes cleared", decode.Identity[uint8]).
			WithUnit(UnitCount).
			WithBounds(0, 255),
		Define(ModeCurrentData, 0x31, "Distance traveled since codes cleared", decode.Identity[uint16]).
			WithUnit(UnitKM).
			WithBounds(0, 65535),
		Define(ModeCurrentData, 0x33, "Absolute barometric pressure", decode.Identity[uint8]).
			WithUnit(UnitKPa).
			WithBounds(0, 255),
		catalystTemperature(0x3C, "Catalyst temperature, bank 1, sensor 1"),
		catalystTemperature(0x3D, "Catalyst temperature, bank 2, sensor 1"),
		catalystTemperature(0x3E, "Catalyst temperature, bank 1, sensor 2"),
		catalystTemperature(0x3F, "Catalyst temperature, bank 2, sensor 2"),
		supportedPIDs(0x40),
		Define(ModeCurrentData, 0x42, "Control module voltage", decode.ControlModuleVoltage).
			WithUnit(UnitVolts).
			WithBounds(0, 65.535),
		Define(ModeCurrentData, 0x43, "Absolute load value", decode.AbsoluteLoad).
			WithUnit(UnitPercent).
			WithBounds(0, 25700),
		percent(0x45, "Relative throttle position"),
		temperature(0x46, "Ambient air temperature"),
		percent(0x47, "Absolute throttle position B"),
		percent(0x49, "Accelerator pedal position D"),
		percent(0x4C, "Commanded throttle actuator"),
		temperature(0x5C, "Engine oil temperature"),
		Define(ModeCurrentData, 0x5D, "Fuel injection timing", decode.InjectionTiming).
			WithUnit(UnitDegrees).
			WithBounds(-210, 301.9921875),
		Define(ModeCurrentData, 0x5E, "Engine fuel rate", decode.FuelRate).
			WithUnit(UnitLitresHour).
			WithBounds(0, 3276.75),
		supportedPIDs(0x60),
		supportedPIDs(0x80),
		supportedPIDs(0xA0),
		supportedPIDs(0xC0),
		supportedPIDs(0xE0),
	)

	return descs
}
