package serial

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"elmpid/internal/models"
	"elmpid/internal/obd"
	"elmpid/internal/obd/dtc"
	"elmpid/pkg/log"

	"github.com/tarm/serial"
	"go.uber.org/zap"
)

const (
	DefaultDelay   = 100 * time.Millisecond
	DefaultBaud    = 38400
	queryTimeout   = 1200 * time.Millisecond
	dtcTimeout     = 10 * time.Second
	minimumVoltage = 6.0
)

// SerialOBD implements OBDProvider backed by a serial (ELM327-like) device.
type SerialOBD struct {
	portName    string
	baud        int
	delay       time.Duration
	port        io.ReadWriteCloser
	reader      *bufio.Reader
	protocol    string
	isLowPower  bool
	isConnected bool

	// cmdMu serialises request/response exchanges on the port.
	cmdMu sync.Mutex
	mu    sync.RWMutex
}

// New creates a SerialOBD. An empty portName picks the first adapter found.
func New(portName string, baud int) *SerialOBD {
	if portName == "" {
		portName = detectPlatformSerialDev()
	}
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &SerialOBD{
		portName: portName,
		baud:     baud,
		delay:    2 * DefaultDelay,
	}
}

func (s *SerialOBD) Start(ctx context.Context) error {
	// Connect
	if err := s.open(ctx); err != nil {
		return fmt.Errorf("error while connecting: %w", err)
	}

	// Try to detect protocol automatically first
	if err := s.autoDetectProtocol(ctx); err != nil {
		log.Warn("Auto protocol detection failed, will try specific protocols", zap.Error(err))
		// Try specific protocols in order of likelihood
		protocols := []string{
			ProtocolISO15765_11,   // ISO 15765-4 (CAN 11/500) - Most common
			ProtocolISO15765_11_2, // ISO 15765-4 (CAN 11/250)
			ProtocolJ1850PWM,      // SAE J1850 PWM
			ProtocolISO9141,       // ISO 9141-2
			ProtocolISO14230,      // ISO 14230-4 (KWP FAST)
		}

		detected := false
		for _, protocol := range protocols {
			if err := s.tryProtocol(ctx, protocol); err == nil {
				log.Info("Successfully connected using protocol",
					zap.String("protocol", protocol),
					zap.String("name", ProtocolName(protocol)))
				s.setProtocol(protocol)
				detected = true
				break
			}
		}
		if !detected {
			s.close()
			return fmt.Errorf("no protocol answered on %s", s.portName)
		}
	}

	s.setConnected(true)
	return nil
}

// Stop puts a connected adapter into low power mode and closes the port.
func (s *SerialOBD) Stop() {
	if s.IsConnected() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := s.EnterLowPower(ctx); err != nil {
			log.Warn("Adapter left powered", zap.Error(err))
		}
		cancel()
	}
	s.close()
}

func (s *SerialOBD) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		s.port.Close()
		s.port = nil
	}
	s.isConnected = false
}

func (s *SerialOBD) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// Protocol returns the name of the protocol detected at start.
func (s *SerialOBD) Protocol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ProtocolName(s.protocol)
}

// Query sends mode and pid and returns the payload of the answer.
func (s *SerialOBD) Query(ctx context.Context, mode, pid byte) ([]byte, error) {
	req := obd.Request{Mode: mode, PID: pid}
	resp, err := s.exchange(ctx, req.String(), queryTimeout)
	if err != nil {
		return nil, err
	}
	return parseELMResponse(resp, req)
}

// GetErrors reads the stored trouble codes (mode 03).
func (s *SerialOBD) GetErrors() ([]models.DTCEntry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dtcTimeout+time.Second)
	defer cancel()

	log.Debug("Sending Mode 03 command to query DTCs")
	resp, err := s.exchange(ctx, obd.RequestStoredDTCs.String(), dtcTimeout)
	if err != nil {
		return nil, err
	}
	log.Debug("Raw DTC response", zap.String("response", resp))

	payload, err := parseELMResponse(resp, obd.RequestStoredDTCs)
	if errors.Is(err, obd.ErrNoResponse) {
		// Some vehicles answer NO DATA when nothing is stored
		return []models.DTCEntry{}, nil
	}
	if err != nil {
		return nil, err
	}
	entries := dtc.Parse(payload)
	if entries == nil {
		entries = []models.DTCEntry{}
	}
	return entries, nil
}

// EnterLowPower puts the ELM327 into low power mode
func (s *SerialOBD) EnterLowPower(ctx context.Context) error {
	if !s.IsConnected() {
		return fmt.Errorf("cannot enter low power: %w", obd.ErrNotConnected)
	}

	resp, err := s.exchange(ctx, CommandLowPower, 500*time.Millisecond)
	if err != nil || !strings.Contains(resp, "OK") {
		return fmt.Errorf("did not receive OK response for low power mode")
	}

	s.mu.Lock()
	s.isLowPower = true
	s.mu.Unlock()
	log.Info("Successfully entered low power mode")
	return nil
}

// ExitLowPower wakes up the ELM327 from low power mode. The port only needs
// to be open, so it can run before the adapter is initialised again.
func (s *SerialOBD) ExitLowPower(ctx context.Context) error {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	s.mu.RLock()
	port := s.port
	s.mu.RUnlock()
	if port == nil {
		return fmt.Errorf("cannot exit low power: %w", obd.ErrNotConnected)
	}

	// Send a space to wake up the device
	if _, err := port.Write([]byte(" ")); err != nil {
		return fmt.Errorf("failed to send wake up command: %w", err)
	}

	// Wait for the device to wake up
	if err := sleep(ctx, 5*s.delay); err != nil {
		return err
	}

	s.mu.Lock()
	s.isLowPower = false
	s.mu.Unlock()
	log.Info("Successfully exited low power mode")
	return nil
}

// Voltage reads the supply voltage seen by the adapter.
func (s *SerialOBD) Voltage(ctx context.Context) (float64, error) {
	resp, err := s.exchange(ctx, CommandReadVoltage, 500*time.Millisecond)
	if err != nil {
		return 0, err
	}
	return parseVoltage(resp)
}

// autoDetectProtocol attempts to automatically detect the protocol using ATSP0
func (s *SerialOBD) autoDetectProtocol(ctx context.Context) error {
	if _, err := s.command(ctx, CommandSetProtocolAuto, 500*time.Millisecond); err != nil {
		return fmt.Errorf("failed to set auto protocol: %w", err)
	}

	// Searching can take several seconds on the first request
	resp, err := s.command(ctx, obd.RequestSupportedPIDs.String(), 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to send test command: %w", err)
	}
	if _, err := parseELMResponse(resp, obd.RequestSupportedPIDs); err != nil {
		return fmt.Errorf("unable to detect protocol: %w", err)
	}

	resp, err = s.command(ctx, CommandProtocolNum, 1*time.Second)
	if err != nil || resp == "" {
		return fmt.Errorf("no response from protocol query")
	}

	protocol := strings.TrimPrefix(resp, "A")
	s.setProtocol(protocol)
	log.Info("Detected protocol",
		zap.String("protocol", protocol),
		zap.String("name", ProtocolName(resp)))
	return nil
}

// tryProtocol attempts to connect using a specific protocol
func (s *SerialOBD) tryProtocol(ctx context.Context, protocol string) error {
	if _, err := s.command(ctx, CommandTryProtocol+protocol, 500*time.Millisecond); err != nil {
		return fmt.Errorf("failed to set protocol %s: %w", protocol, err)
	}

	resp, err := s.command(ctx, obd.RequestSupportedPIDs.String(), 5*time.Second)
	if err != nil || resp == "" {
		return fmt.Errorf("no response with protocol %s", protocol)
	}
	if _, err := parseELMResponse(resp, obd.RequestSupportedPIDs); err != nil {
		return fmt.Errorf("unable to connect with protocol %s: %w", protocol, err)
	}
	return nil
}

func (s *SerialOBD) open(ctx context.Context) error {
	log.Info("[Serial] Attempting to connect", zap.String("port", s.portName), zap.Int("baud", s.baud))
	cfg := &serial.Config{
		Name:        s.portName,
		Baud:        s.baud,
		ReadTimeout: DefaultDelay,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
	}

	// Try opening the port with retries
	var p *serial.Port
	var err error
	maxRetries := 3

	for i := 0; i < maxRetries; i++ {
		p, err = serial.OpenPort(cfg)
		if err == nil {
			break
		}
		log.Warn("Failed to open port, retrying...", zap.Error(err), zap.Int("attempt", i+1))
		if err := sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}

	if err != nil {
		return fmt.Errorf("failed to open port after %d attempts: %w", maxRetries, err)
	}

	if err := p.Flush(); err != nil {
		log.Warn("Failed to flush port", zap.Error(err))
	}

	s.mu.Lock()
	s.port = p
	s.reader = bufio.NewReader(p)
	s.mu.Unlock()
	log.Info("[Serial] Port opened successfully", zap.String("config", fmt.Sprintf("%+v", cfg)))

	if s.IsLowPower() {
		if err := s.ExitLowPower(ctx); err != nil {
			log.Warn("Failed to wake adapter", zap.Error(err))
		}
	}

	log.Info("Initializing ELM327 device over serial", zap.String("port", s.portName), zap.Int("baud", s.baud))
	if err := s.initELM327(ctx); err != nil {
		s.close()
		return err
	}
	log.Info("ELM327 initialization completed")

	return nil
}

func (s *SerialOBD) initELM327(ctx context.Context) error {
	// Reset and wait for response - with retries
	log.Debug("[ELM Init] Sending reset command")
	maxRetries := 3
	var resetSuccess bool

	for i := 0; i < maxRetries; i++ {
		resp, err := s.command(ctx, CommandReset, 3*time.Second)
		if err == nil && strings.Contains(resp, "ELM") {
			log.Info("Reset successful", zap.String("response", resp))
			resetSuccess = true
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("No response after reset attempt", zap.Int("attempt", i+1), zap.Error(err))
	}

	if !resetSuccess {
		return fmt.Errorf("device failed to respond after %d reset attempts", maxRetries)
	}

	// Send each command and verify response
	commands := []string{
		CommandEchoOff,      // Echo off
		CommandLineFeedsOff, // Line feeds off
		CommandHeadersOff,   // Headers off, frames start at the response mode
		CommandSpacesOff,    // Spaces off
		CommandReadVoltage,  // Read voltage
	}

	for _, cmd := range commands {
		resp, err := s.command(ctx, cmd, 500*time.Millisecond)
		log.Debug("[ELM Init] Command response", zap.String("command", cmd), zap.String("response", resp), zap.Error(err))

		if cmd == CommandReadVoltage {
			// ATRV may not be supported on all devices
			if v, err := parseVoltage(resp); err == nil {
				if v < minimumVoltage {
					return fmt.Errorf("voltage too low: %.1fV", v)
				}
				log.Info("[ELM Init] Voltage", zap.Float64("volts", v))
			}
			continue
		}

		if err != nil {
			return fmt.Errorf("command %s failed: %w", cmd, err)
		}
		if resp == "" {
			return fmt.Errorf("command %s got no response", cmd)
		}
	}

	return nil
}

// exchange runs a command on a connected adapter.
func (s *SerialOBD) exchange(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	if !s.IsConnected() {
		return "", obd.ErrNotConnected
	}
	return s.command(ctx, cmd, timeout)
}

// command sends cmd and reads the reply up to the prompt.
func (s *SerialOBD) command(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	s.cmdMu.Lock()
	defer s.cmdMu.Unlock()

	if err := s.sendCommand(ctx, cmd); err != nil {
		return "", err
	}

	s.mu.RLock()
	reader := s.reader
	s.mu.RUnlock()
	return readELMResponse(ctx, reader, timeout)
}

func (s *SerialOBD) sendCommand(ctx context.Context, cmd string) error {
	s.mu.RLock()
	port, reader := s.port, s.reader
	s.mu.RUnlock()

	if port == nil {
		return fmt.Errorf("cannot send command: port is nil")
	}

	// Clear any pending data before sending new command
	if n := reader.Buffered(); n > 0 {
		pending, _ := reader.Peek(n)
		log.Debug("Cleared pending data", zap.Int("bytes", n), zap.String("data", string(pending)))
		reader.Discard(n)
	}

	full := cmd + CR

	// Write with retry
	maxRetries := 3
	var writeErr error

	for i := 0; i < maxRetries; i++ {
		n, err := port.Write([]byte(full))
		if err != nil {
			writeErr = err
			log.Warn("Write failed, retrying...",
				zap.String("command", cmd),
				zap.Error(err),
				zap.Int("attempt", i+1))
			if err := sleep(ctx, 500*time.Millisecond); err != nil {
				return err
			}
			continue
		}
		if n != len(full) {
			writeErr = fmt.Errorf("incomplete write: %d/%d bytes", n, len(full))
			continue
		}
		writeErr = nil
		break
	}

	if writeErr != nil {
		return fmt.Errorf("[Serial] Error writing command %q after retries: %w", cmd, writeErr)
	}

	log.Debug("Command sent successfully",
		zap.String("command", cmd),
		zap.Int("bytes", len(full)))

	return sleep(ctx, s.delay)
}

func (s *SerialOBD) setProtocol(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocol = p
}

func (s *SerialOBD) setConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isConnected = v
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsLowPower reports whether ATLP was acknowledged and no wake up sent since.
func (s *SerialOBD) IsLowPower() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLowPower
}
