package serial

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"elmpid/internal/obd"
	"elmpid/pkg/log"

	"go.uber.org/zap"
)

const (
	CommandReset           = "ATZ"
	CommandEchoOff         = "ATE0"
	CommandLineFeedsOff    = "ATL0"
	CommandHeadersOff      = "ATH0"
	CommandSpacesOff       = "ATS0"
	CommandSetProtocolAuto = "ATSP0"
	CommandTryProtocol     = "ATTP"
	CommandLowPower        = "ATLP"
	CommandProtocolNum     = "ATDPN"
	CommandReadVoltage     = "ATRV"

	CR     = "\r"
	Prompt = '>'

	// Supported protocol IDs
	ProtocolAuto          = "0" // Automatic mode
	ProtocolJ1850PWM      = "1" // SAE J1850 PWM
	ProtocolJ1850VPW      = "2" // SAE J1850 VPW
	ProtocolISO9141       = "3" // ISO 9141-2
	ProtocolISO14230_5    = "4" // ISO 14230-4 (KWP 5BAUD)
	ProtocolISO14230      = "5" // ISO 14230-4 (KWP FAST)
	ProtocolISO15765_11   = "6" // ISO 15765-4 (CAN 11/500)
	ProtocolISO15765_29   = "7" // ISO 15765-4 (CAN 29/500)
	ProtocolISO15765_11_2 = "8" // ISO 15765-4 (CAN 11/250)
	ProtocolISO15765_29_2 = "9" // ISO 15765-4 (CAN 29/250)
	ProtocolSAEJ1939      = "A" // SAE J1939 (CAN 29/250)
)

var protocolNames = map[string]string{
	ProtocolAuto:          "Auto",
	ProtocolJ1850PWM:      "SAE J1850 PWM (41.6 kbaud)",
	ProtocolJ1850VPW:      "SAE J1850 VPW (10.4 kbaud)",
	ProtocolISO9141:       "ISO 9141-2 (5 baud init)",
	ProtocolISO14230_5:    "ISO 14230-4 KWP (5 baud init)",
	ProtocolISO14230:      "ISO 14230-4 KWP (fast init)",
	ProtocolISO15765_11:   "ISO 15765-4 CAN (11 bit ID, 500 kbaud)",
	ProtocolISO15765_29:   "ISO 15765-4 CAN (29 bit ID, 500 kbaud)",
	ProtocolISO15765_11_2: "ISO 15765-4 CAN (11 bit ID, 250 kbaud)",
	ProtocolISO15765_29_2: "ISO 15765-4 CAN (29 bit ID, 250 kbaud)",
	ProtocolSAEJ1939:      "SAE J1939 CAN (29 bit ID, 250 kbaud)",
}

// ProtocolName returns the human readable name of an ATDPN answer.
// Automatically detected protocols are prefixed with "A".
func ProtocolName(num string) string {
	num = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(num)), "A")
	if name, ok := protocolNames[num]; ok {
		return name
	}
	return "Unknown"
}

// parseVoltage attempts to parse an ELM voltage response like "12.5V" into a float
func parseVoltage(response string) (float64, error) {
	response = strings.TrimSpace(strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(response)), "V"))
	return strconv.ParseFloat(response, 64)
}

// parseELMResponse extracts the payload answering req from a raw ELM327
// reply, headers and spaces being optional. Status lines such as
// "SEARCHING..." and the echoed request are skipped. Multi-frame CAN replies
// ("014", "0: 49 02 01 ...", "1: ...") are reassembled and truncated to the
// announced length.
//
// Requests with a PID return the first matching frame. Requests without one
// (03, 07, 0A) return the concatenated payload of every matching frame.
func parseELMResponse(resp string, req obd.Request) ([]byte, error) {
	var (
		frames   []string
		segments strings.Builder
		total    = -1
	)

	lines := strings.FieldsFunc(strings.ToUpper(resp), func(r rune) bool {
		return r == '\r' || r == '\n'
	})
	for _, line := range lines {
		line = strings.ReplaceAll(strings.TrimSpace(line), " ", "")
		line = strings.TrimRight(line, string(Prompt))

		switch {
		case line == "", line == req.String():
			continue
		case strings.HasPrefix(line, "SEARCHING"), strings.HasPrefix(line, "BUSINIT"):
			continue
		case strings.Contains(line, "NODATA"),
			strings.Contains(line, "UNABLETOCONNECT"),
			strings.Contains(line, "ERROR"),
			strings.Contains(line, "STOPPED"),
			line == "?":
			return nil, fmt.Errorf("%w: %s", obd.ErrNoResponse, line)
		}

		if i := strings.IndexByte(line, ':'); i > 0 {
			segments.WriteString(line[i+1:])
			continue
		}
		if len(line) == 3 {
			if n, err := strconv.ParseUint(line, 16, 16); err == nil {
				total = int(n)
				continue
			}
		}
		frames = append(frames, line)
	}
	if segments.Len() > 0 {
		frames = append([]string{segments.String()}, frames...)
	}

	var payload []byte
	matched := false
	for i, frame := range frames {
		b, err := hex.DecodeString(frame)
		if err != nil {
			log.Debug("Ignoring malformed frame", zap.String("frame", frame), zap.Error(err))
			continue
		}
		if i == 0 && segments.Len() > 0 && total >= 0 && total < len(b) {
			b = b[:total]
		}

		data, ok := matchFrame(b, req)
		if !ok {
			continue
		}
		if req.HasPID() {
			return data, nil
		}
		payload = append(payload, data...)
		matched = true
	}
	if !matched {
		return nil, fmt.Errorf("%w: no frame answering %s in %q", obd.ErrNoResponse, req, resp)
	}
	return payload, nil
}

// matchFrame checks the response mode and pid echo of a frame and returns
// what follows them.
func matchFrame(b []byte, req obd.Request) ([]byte, bool) {
	if len(b) == 0 || b[0] != req.ResponseMode() {
		return nil, false
	}
	if !req.HasPID() {
		return b[1:], true
	}
	if len(b) < 2 || b[1] != req.PID {
		return nil, false
	}
	if req.Mode == 0x02 {
		// frame number
		if len(b) < 3 {
			return nil, false
		}
		return b[3:], true
	}
	return b[2:], true
}

// readELMResponse collects bytes from the reader until the ELM327 prompt '>' is seen,
// the provided timeout elapses or ctx is done. It returns the response (prompt excluded).
// Reads rely on the port's own ReadTimeout to return regularly.
func readELMResponse(ctx context.Context, reader *bufio.Reader, timeout time.Duration) (string, error) {
	log.Debug("Starting to read response", zap.Duration("timeout", timeout))

	var sb strings.Builder
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if err := ctx.Err(); err != nil {
			return strings.TrimSpace(sb.String()), err
		}

		b, err := reader.ReadByte()
		if err != nil {
			if err != io.EOF {
				log.Warn("Response ended with error",
					zap.Error(err),
					zap.String("partial_response", sb.String()))
				return strings.TrimSpace(sb.String()), err
			}
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if b == Prompt {
			log.Debug("Complete response received", zap.String("response", sb.String()))
			return strings.TrimSpace(sb.String()), nil
		}

		// Filter out null bytes and other control characters except CR/LF
		if b >= 32 && b <= 126 || b == '\r' || b == '\n' {
			sb.WriteByte(b)
		}
	}

	if sb.Len() > 0 {
		return strings.TrimSpace(sb.String()), nil
	}
	return "", fmt.Errorf("read timeout after %v", timeout)
}
