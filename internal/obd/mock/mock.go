package mock

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"time"

	"elmpid/internal/models"
	"elmpid/internal/obd"
	"elmpid/internal/obd/dtc"
)

// MockOBD simulates an engine and answers mode 01 queries with the raw
// payload a vehicle would send.
type MockOBD struct {
	mu       sync.RWMutex
	running  bool
	// simulated values
	rpm      float64
	speed    int
	load     float64
	throttle float64
	coolant  int
	intake   int
	oil      int
	fuel     float64
	distance int
	started  time.Time
	errors   []models.DTCEntry

	updateTicker *time.Ticker
	stopCh       chan struct{}
}

// moduleVoltage in mV.
const moduleVoltage = 14200

// pids answered by the mock, supported-PIDs queries included.
var pids = []byte{
	0x00, 0x01, 0x04, 0x05, 0x0C, 0x0D, 0x0F, 0x11, 0x1C, 0x1F,
	0x20, 0x2F, 0x31,
	0x40, 0x42, 0x46, 0x5C,
}

func New() *MockOBD {
	return &MockOBD{
		rpm:      800,
		load:     20,
		throttle: 15,
		coolant:  75,
		intake:   25,
		oil:      80,
		fuel:     60,
		distance: 1234,
		started:  time.Now(),
		errors:   []models.DTCEntry{},
	}
}

func (m *MockOBD) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}
	m.updateTicker = time.NewTicker(1 * time.Second)
	m.stopCh = make(chan struct{})
	m.running = true
	ticker, stop := m.updateTicker, m.stopCh
	go func() {
		for {
			select {
			case <-ticker.C:
				m.step()
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()
	return nil
}

// step random walks the engine state.
func (m *MockOBD) step() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rpm = clamp(m.rpm+float64(rand.Intn(201)-100), 600, 4000)
	m.throttle = clamp(m.throttle+float64(rand.Intn(11)-5), 0, 100)
	m.load = clamp(m.throttle*0.8+float64(rand.Intn(11)), 0, 100)
	m.speed = int(clamp(float64(m.speed+rand.Intn(11)-5), 0, 180))
	m.coolant = int(clamp(float64(m.coolant+rand.Intn(3)-1), 60, 110))
	m.oil = int(clamp(float64(m.oil+rand.Intn(3)-1), 60, 130))
	m.fuel = clamp(m.fuel-0.01, 0, 100)
	if m.speed > 0 && rand.Float32() < 0.1 {
		m.distance++
	}

	// randomly add/remove an error
	if rand.Float32() < 0.05 {
		m.errors = append(m.errors, newEntry(byte(rand.Intn(0x40)), byte(rand.Intn(0x100))))
	}
	if len(m.errors) > 0 && rand.Float32() < 0.02 {
		m.errors = m.errors[1:]
	}
}

func (m *MockOBD) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.updateTicker.Stop()
	close(m.stopCh)
	m.running = false
}

// IsConnected for MockOBD always returns true while running.
func (m *MockOBD) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

func (m *MockOBD) Query(ctx context.Context, mode, pid byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.running {
		return nil, obd.ErrNotConnected
	}
	if mode != 0x01 || !slices.Contains(pids, pid) {
		return nil, fmt.Errorf("%w: %s", obd.ErrNoResponse, obd.Request{Mode: mode, PID: pid})
	}

	switch pid {
	case 0x00, 0x20, 0x40:
		return be32(supportedMask(pid)), nil
	case 0x01:
		status := uint32(len(m.errors)&0x7f) << 24
		if len(m.errors) > 0 {
			status |= 0x80 << 24
		}
		return be32(status), nil
	case 0x04:
		return []byte{percent(m.load)}, nil
	case 0x05:
		return []byte{celsius(m.coolant)}, nil
	case 0x0C:
		return be16(uint16(m.rpm * 4)), nil
	case 0x0D:
		return []byte{byte(m.speed)}, nil
	case 0x0F:
		return []byte{celsius(m.intake)}, nil
	case 0x11:
		return []byte{percent(m.throttle)}, nil
	case 0x1C:
		return []byte{0x06}, nil // EOBD
	case 0x1F:
		return be16(uint16(time.Since(m.started).Seconds())), nil
	case 0x2F:
		return []byte{percent(m.fuel)}, nil
	case 0x31:
		return be16(uint16(m.distance)), nil
	case 0x42:
		return be16(moduleVoltage), nil
	case 0x46:
		return []byte{celsius(18)}, nil
	case 0x5C:
		return []byte{celsius(m.oil)}, nil
	}
	return nil, fmt.Errorf("%w: %02X%02X", obd.ErrNoResponse, mode, pid)
}

// Protocol names the simulated bus.
func (m *MockOBD) Protocol() string {
	return "simulated"
}

// Voltage matches the control module voltage answered to PID 0x42.
func (m *MockOBD) Voltage(ctx context.Context) (float64, error) {
	if !m.IsConnected() {
		return 0, obd.ErrNotConnected
	}
	return moduleVoltage / 1000.0, nil
}

func (m *MockOBD) GetErrors() ([]models.DTCEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	copyErr := make([]models.DTCEntry, len(m.errors))
	copy(copyErr, m.errors)
	return copyErr, nil
}

func newEntry(a, b byte) models.DTCEntry {
	code := dtc.Decode(a, b)
	return models.DTCEntry{Code: code, Description: dtc.Describe(code)}
}

// supportedMask builds the bitmap answered to the supported-PIDs query at base.
func supportedMask(base byte) uint32 {
	var mask uint32
	for _, p := range pids {
		if off := int(p) - int(base); off > 0 && off <= 0x20 {
			mask |= 1 << (32 - off)
		}
	}
	return mask
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}

func percent(v float64) byte {
	return byte(v*2.55 + 0.5)
}

func celsius(v int) byte {
	return byte(v + 40)
}

func be16(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func be32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
