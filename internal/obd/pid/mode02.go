package pid

import "elmpid/internal/obd/dtc"

func freezeFrameDTC(v uint16) string {
	return dtc.Decode(uint8(v>>8), uint8(v))
}

// Mode02 returns the freeze frame PIDs. They share the mode 01 formulas,
// except that 0x01 does not exist and 0x02 carries the DTC that caused the
// freeze frame to be stored.
func Mode02() []Descriptor {
	var descs []Descriptor
	for _, d := range Mode01() {
		switch d.Number() {
		case 0x01:
			continue
		case 0x02:
			descs = append(descs, Define(ModeFreezeFrame, 0x02, "DTC that caused freeze frame to be stored", freezeFrameDTC))
			continue
		}
		descs = append(descs, d.withMode(ModeFreezeFrame))
	}
	return descs
}
