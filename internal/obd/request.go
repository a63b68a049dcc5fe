package obd

import "fmt"

// Request is an OBD-II query as sent to an ELM327. Freeze frame (mode 02)
// requests always address frame 00.
type Request struct {
	Mode byte
	PID  byte
}

var (
	RequestSupportedPIDs = Request{Mode: 0x01, PID: 0x00}
	RequestStoredDTCs    = Request{Mode: 0x03}
)

// HasPID reports whether the mode takes a PID byte. Modes 03, 04, 07 and 0A do not.
func (r Request) HasPID() bool {
	switch r.Mode {
	case 0x03, 0x04, 0x07, 0x0A:
		return false
	}
	return true
}

// ResponseMode is the mode byte echoed by the vehicle.
func (r Request) ResponseMode() byte {
	return r.Mode + 0x40
}

func (r Request) String() string {
	if !r.HasPID() {
		return fmt.Sprintf("%02X", r.Mode)
	}
	if r.Mode == 0x02 {
		return fmt.Sprintf("%02X%02X00", r.Mode, r.PID)
	}
	return fmt.Sprintf("%02X%02X", r.Mode, r.PID)
}
