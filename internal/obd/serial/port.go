package serial

import (
	"runtime"
	"slices"
	"strings"

	"elmpid/pkg/log"

	bugserial "go.bug.st/serial"
	"go.uber.org/zap"
)

// adapterHints are substrings of device names typically used by USB and
// Bluetooth ELM327 adapters.
var adapterHints = []string{"ttyUSB", "ttyACM", "rfcomm", "usbserial", "usbmodem", "OBD", "COM"}

// detectPlatformSerialDev returns the most likely adapter port, falling back
// to the platform's usual first USB serial device.
func detectPlatformSerialDev() string {
	ports, err := bugserial.GetPortsList()
	if err != nil {
		log.Warn("Failed to enumerate serial ports", zap.Error(err))
	}
	if port := pickPort(ports); port != "" {
		log.Info("Detected serial port", zap.String("port", port), zap.Strings("candidates", ports))
		return port
	}
	return defaultPort(runtime.GOOS)
}

// pickPort prefers ports matching an adapter hint, then the first one listed.
func pickPort(ports []string) string {
	if len(ports) == 0 {
		return ""
	}
	sorted := slices.Clone(ports)
	slices.Sort(sorted)
	for _, hint := range adapterHints {
		for _, p := range sorted {
			if strings.Contains(p, hint) {
				return p
			}
		}
	}
	return sorted[0]
}

func defaultPort(goos string) string {
	switch goos {
	case "darwin":
		return "/dev/tty.usbserial"
	case "windows":
		return "COM3"
	default:
		return "/dev/ttyUSB0"
	}
}
