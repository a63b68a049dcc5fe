// Package dtc decodes SAE J2012 diagnostic trouble codes.
package dtc

import (
	"fmt"
	"strings"

	"elmpid/internal/models"
)

var letters = [4]byte{'P', 'C', 'B', 'U'}

// Decode turns the two bytes of a DTC into its text form. The top two bits of
// a select the system letter, the remaining 14 bits are the four digits.
func Decode(a, b byte) string {
	return fmt.Sprintf("%c%X%X%X%X", letters[a>>6], (a>>4)&0x03, a&0x0F, b>>4, b&0x0F)
}

// Parse reads consecutive code pairs from a mode 03/07/0A payload. A 0x0000
// pair is padding. Payloads of odd length carry a leading count byte (CAN).
func Parse(payload []byte) []models.DTCEntry {
	if len(payload)%2 == 1 {
		payload = payload[1:]
	}

	var entries []models.DTCEntry
	for i := 0; i+1 < len(payload); i += 2 {
		a, b := payload[i], payload[i+1]
		if a == 0 && b == 0 {
			continue
		}
		code := Decode(a, b)
		entries = append(entries, models.DTCEntry{Code: code, Description: Describe(code)})
	}
	return entries
}

var descriptions = map[string]string{
	// Powertrain
	"P0101": "Mass Air Flow Circuit Range/Performance",
	"P0102": "Mass Air Flow Circuit Low Input",
	"P0103": "Mass Air Flow Circuit High Input",
	"P0171": "System Too Lean (Bank 1)",
	"P0172": "System Too Rich (Bank 1)",
	"P0174": "System Too Lean (Bank 2)",
	"P0175": "System Too Rich (Bank 2)",
	"P0300": "Random/Multiple Cylinder Misfire Detected",
	"P0301": "Cylinder 1 Misfire Detected",
	"P0302": "Cylinder 2 Misfire Detected",
	"P0303": "Cylinder 3 Misfire Detected",
	"P0304": "Cylinder 4 Misfire Detected",
	"P0401": "Exhaust Gas Recirculation Flow Insufficient",
	"P0402": "Exhaust Gas Recirculation Flow Excessive",
	"P0420": "Catalyst System Efficiency Below Threshold",
	"P0440": "Evaporative Emission Control System Malfunction",
	"P0441": "Evaporative Emission Control System Incorrect Purge Flow",
	"P0442": "Evaporative Emission Control System Leak Detected (Small)",
	"P0455": "Evaporative Emission Control System Leak Detected (Large)",
	"P0500": "Vehicle Speed Sensor Malfunction",
	"P0505": "Idle Control System Malfunction",
	"P0506": "Idle Control System RPM Lower Than Expected",
	"P0507": "Idle Control System RPM Higher Than Expected",

	// Chassis
	"C1A00": "TPMS Control Module Malfunction",
	"C2100": "Tire Pressure Too Low - Left Front",
	"C2101": "Tire Pressure Too Low - Right Front",
	"C2102": "Tire Pressure Too Low - Right Rear",
	"C2103": "Tire Pressure Too Low - Left Rear",

	// Body
	"B1000": "Body Control Module Malfunction",
	"B1600": "Ignition Switch Malfunction",

	// Network
	"U0001": "High Speed CAN Communication Bus",
	"U0100": "Lost Communication With ECM/PCM",
	"U0101": "Lost Communication With TCM",
	"U0121": "Lost Communication With ABS Module",
	"U0140": "Lost Communication With Body Control Module",
	"U0155": "Lost Communication With Instrument Cluster",
}

// Describe returns a description for well known codes, falling back to the
// system the code belongs to.
func Describe(code string) string {
	if desc, ok := descriptions[code]; ok {
		return desc
	}
	if strings.HasPrefix(code, "C1A") || strings.HasPrefix(code, "C2") {
		return "TPMS/Tire Pressure Related Code"
	}

	switch {
	case strings.HasPrefix(code, "P"):
		return "Unknown powertrain code"
	case strings.HasPrefix(code, "C"):
		return "Unknown chassis code"
	case strings.HasPrefix(code, "B"):
		return "Unknown body code"
	case strings.HasPrefix(code, "U"):
		return "Unknown network code"
	}
	return "Unknown DTC"
}
