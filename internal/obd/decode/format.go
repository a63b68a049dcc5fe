package decode

import "fmt"

func (s OxygenSensor) String() string {
	return fmt.Sprintf("%.3f V, %.2f %%", s.Voltage, s.FuelTrim)
}

func (l Lambda) String() string {
	return fmt.Sprintf("λ %.4f, %.3f V", l.Ratio, l.Voltage)
}

func (m MonitorStatus) String() string {
	mil := "off"
	if m.MIL {
		mil = "on"
	}
	return fmt.Sprintf("MIL %s, %d DTC(s)", mil, m.DTCCount)
}
