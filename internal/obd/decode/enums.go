package decode

import "fmt"

// FuelSystem is the status of one fuel system (PID 0x03).
type FuelSystem uint8

const (
	FuelUnknown FuelSystem = iota
	FuelMotorOff
	FuelOpenLoopInsufficientTemperature
	FuelClosedLoopOxygenFeedback
	FuelOpenLoopLoadOrDecelFuelCut
	FuelOpenLoopSystemFailure
	FuelClosedLoopFaultFeedback
)

func (f FuelSystem) String() string {
	switch f {
	case FuelMotorOff:
		return "motor off"
	case FuelOpenLoopInsufficientTemperature:
		return "open loop, insufficient engine temperature"
	case FuelClosedLoopOxygenFeedback:
		return "closed loop, oxygen sensor feedback"
	case FuelOpenLoopLoadOrDecelFuelCut:
		return "open loop, engine load or deceleration fuel cut"
	case FuelOpenLoopSystemFailure:
		return "open loop, system failure"
	case FuelClosedLoopFaultFeedback:
		return "closed loop, feedback system fault"
	default:
		return "unknown"
	}
}

// fuelSystemOf maps a single status byte. Only one bit may be set.
func fuelSystemOf(b uint8) FuelSystem {
	switch b {
	case 0:
		return FuelMotorOff
	case 1:
		return FuelOpenLoopInsufficientTemperature
	case 2:
		return FuelClosedLoopOxygenFeedback
	case 4:
		return FuelOpenLoopLoadOrDecelFuelCut
	case 8:
		return FuelOpenLoopSystemFailure
	case 16:
		return FuelClosedLoopFaultFeedback
	default:
		return FuelUnknown
	}
}

// FuelSystems holds both fuel system statuses of PID 0x03.
type FuelSystems struct {
	System1 FuelSystem `json:"system1" yaml:"system1"`
	System2 FuelSystem `json:"system2" yaml:"system2"`
}

func (f FuelSystems) String() string {
	return fmt.Sprintf("%s / %s", f.System1, f.System2)
}

// FuelSystemStatus decodes A as fuel system 1 and B as fuel system 2.
func FuelSystemStatus(v uint16) FuelSystems {
	return FuelSystems{
		System1: fuelSystemOf(uint8(v >> 8)),
		System2: fuelSystemOf(uint8(v)),
	}
}

// SecondaryAirStatus is the commanded secondary air status (PID 0x12).
type SecondaryAirStatus uint8

const (
	AirUnknown SecondaryAirStatus = iota
	AirUpstream
	AirDownstream
	AirFromOutsideAtmosphereOrOff
	AirPumpCommandedForDiagnostics
)

func (s SecondaryAirStatus) String() string {
	switch s {
	case AirUpstream:
		return "upstream"
	case AirDownstream:
		return "downstream of catalytic converter"
	case AirFromOutsideAtmosphereOrOff:
		return "from the outside atmosphere or off"
	case AirPumpCommandedForDiagnostics:
		return "pump commanded on for diagnostics"
	default:
		return "unknown"
	}
}

// SecondaryAir selects the status from a single-bit flag.
func SecondaryAir(v uint8) SecondaryAirStatus {
	switch v {
	case 0x01:
		return AirUpstream
	case 0x02:
		return AirDownstream
	case 0x04:
		return AirFromOutsideAtmosphereOrOff
	case 0x08:
		return AirPumpCommandedForDiagnostics
	default:
		return AirUnknown
	}
}

// OBDStandard is the OBD standard this vehicle conforms to (PID 0x1C).
type OBDStandard uint8

const (
	StandardUnknown OBDStandard = iota
	OBD2CARB
	OBDEPA
	OBD1And2
	OBD1
	NotOBDCompliant
	EOBD
	EOBDAndOBD2
	EOBDAndOBD
	EOBDAndOBDAndOBD2
	JOBD
	JOBDAndOBD2
	JOBDAndEOBD
	JOBDAndEOBDAndOBD2
	EMD
	EMDPlus
	HDOBDC
	HDOBD
	WWHOBD
	HDEOBD1
	HDEOBD1N
	HDEOBD2
	HDEOBD2N
	OBDBr1
	OBDBr2
	KOBD
	IOBD1
	IOBD2
	HDEOBD4
	StandardReserved
	StandardNotAvailableForAssignment
)

var standardNames = map[OBDStandard]string{
	OBD2CARB:           "OBD-II as defined by the CARB",
	OBDEPA:             "OBD as defined by the EPA",
	OBD1And2:           "OBD and OBD-II",
	OBD1:               "OBD-I",
	NotOBDCompliant:    "Not OBD compliant",
	EOBD:               "EOBD (Europe)",
	EOBDAndOBD2:        "EOBD and OBD-II",
	EOBDAndOBD:         "EOBD and OBD",
	EOBDAndOBDAndOBD2:  "EOBD, OBD and OBD II",
	JOBD:               "JOBD (Japan)",
	JOBDAndOBD2:        "JOBD and OBD II",
	JOBDAndEOBD:        "JOBD and EOBD",
	JOBDAndEOBDAndOBD2: "JOBD, EOBD, and OBD II",
	EMD:                "Engine Manufacturer Diagnostics (EMD)",
	EMDPlus:            "Engine Manufacturer Diagnostics Enhanced (EMD+)",
	HDOBDC:             "Heavy Duty On-Board Diagnostics (Child/Partial) (HD OBD-C)",
	HDOBD:              "Heavy Duty On-Board Diagnostics (HD OBD)",
	WWHOBD:             "World Wide Harmonized OBD (WWH OBD)",
	HDEOBD1:            "Heavy Duty Euro OBD Stage I without NOx control (HD EOBD-I)",
	HDEOBD1N:           "Heavy Duty Euro OBD Stage I with NOx control (HD EOBD-I N)",
	HDEOBD2:            "Heavy Duty Euro OBD Stage II without NOx control (HD EOBD-II)",
	HDEOBD2N:           "Heavy Duty Euro OBD Stage II with NOx control (HD EOBD-II N)",
	OBDBr1:             "Brazil OBD Phase 1 (OBDBr-1)",
	OBDBr2:             "Brazil OBD Phase 2 (OBDBr-2)",
	KOBD:               "Korean OBD (KOBD)",
	IOBD1:              "India OBD I (IOBD I)",
	IOBD2:              "India OBD II (IOBD II)",
	HDEOBD4:            "Heavy Duty Euro OBD Stage VI (HD EOBD-IV)",
	StandardReserved:   "reserved",

	StandardNotAvailableForAssignment: "not available for assignment (SAE J1939 special meaning)",
}

func (s OBDStandard) String() string {
	if name, ok := standardNames[s]; ok {
		return name
	}
	return "unknown"
}

// standards maps assigned bytes to their standard. Bytes 1..33 not listed are reserved.
var standards = map[uint8]OBDStandard{
	1: OBD2CARB, 2: OBDEPA, 3: OBD1And2, 4: OBD1, 5: NotOBDCompliant,
	6: EOBD, 7: EOBDAndOBD2, 8: EOBDAndOBD, 9: EOBDAndOBDAndOBD2,
	10: JOBD, 11: JOBDAndOBD2, 12: JOBDAndEOBD, 13: JOBDAndEOBDAndOBD2,
	17: EMD, 18: EMDPlus, 19: HDOBDC, 20: HDOBD, 21: WWHOBD,
	23: HDEOBD1, 24: HDEOBD1N, 25: HDEOBD2, 26: HDEOBD2N,
	28: OBDBr1, 29: OBDBr2, 30: KOBD, 31: IOBD1, 32: IOBD2, 33: HDEOBD4,
}

// Standard decodes PID 0x1C. Out of table bytes map to the Reserved,
// NotAvailableForAssignment or Unknown sentinels.
func Standard(v uint8) OBDStandard {
	switch {
	case v == 0:
		return StandardUnknown
	case v >= 251:
		return StandardNotAvailableForAssignment
	}
	if s, ok := standards[v]; ok {
		return s
	}
	return StandardReserved
}

// BinaryState is an on/off flag carried in the top bit of a byte.
type BinaryState uint8

const (
	StateUnknown BinaryState = iota
	StateOn
	StateOff
)

func (s BinaryState) String() string {
	switch s {
	case StateOn:
		return "on"
	case StateOff:
		return "off"
	default:
		return "unknown"
	}
}

// AuxiliaryInput decodes PID 0x1E: bit 7 is the power take off status.
func AuxiliaryInput(v uint8) BinaryState {
	if v>>7 == 1 {
		return StateOn
	}
	return StateOff
}
