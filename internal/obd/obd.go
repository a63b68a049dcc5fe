package obd

import (
	"context"
	"errors"
	"fmt"

	"elmpid/internal/models"
	"elmpid/internal/obd/pid"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrNoResponse   = errors.New("no response from vehicle")
)

// OBDProvider abstracts access to an OBD-II device.
// It hands back raw payloads; decoding is done through a pid.Registry.
type OBDProvider interface {
	Start(ctx context.Context) error
	Stop()
	IsConnected() bool
	// Query sends mode/pid and returns the payload following the response
	// mode and pid bytes.
	Query(ctx context.Context, mode, pid byte) ([]byte, error)
	GetErrors() ([]models.DTCEntry, error)
}

// Adapter is implemented by providers able to report on the interface
// device itself rather than the vehicle.
type Adapter interface {
	Protocol() string
	Voltage(ctx context.Context) (float64, error)
}

// AdapterStatus describes the protocol and supply voltage of p, e.g.
// "ISO 15765-4 CAN (11 bit ID, 500 kbaud), 12.6 V". It returns "" when p is
// not an Adapter.
func AdapterStatus(ctx context.Context, p OBDProvider) string {
	a, ok := p.(Adapter)
	if !ok {
		return ""
	}
	status := a.Protocol()
	if v, err := a.Voltage(ctx); err == nil {
		status += fmt.Sprintf(", %.1f V", v)
	}
	return status
}

// Read queries a PID and decodes the payload.
func Read(ctx context.Context, p OBDProvider, reg *pid.Registry, mode, number byte) (pid.Reading, error) {
	if _, err := reg.Lookup(mode, number); err != nil {
		return pid.Reading{}, err
	}

	raw, err := p.Query(ctx, mode, number)
	if err != nil {
		return pid.Reading{}, fmt.Errorf("query %s: %w", Request{Mode: mode, PID: number}, err)
	}
	return reg.Decode(mode, number, raw)
}

// Discover walks the supported-PIDs blocks (0x00, 0x20, 0x40, ...) and
// returns every PID the vehicle advertises for mode, in ascending order.
// The next block is queried only if the last PID of the current one is set.
func Discover(ctx context.Context, p OBDProvider, reg *pid.Registry, mode byte) ([]uint8, error) {
	var supported []uint8
	for block := 0; block < 8; block++ {
		number := byte(block * 0x20)
		reading, err := Read(ctx, p, reg, mode, number)
		if err != nil {
			if block == 0 {
				return nil, err
			}
			break
		}

		pids, ok := reading.Value.([]uint8)
		if !ok {
			return nil, fmt.Errorf("%s did not decode to a PID list", reading.Key())
		}
		supported = append(supported, pids...)

		// the last block (0xE0) has no successor
		if len(pids) == 0 || int(pids[len(pids)-1]) != int(number)+0x20 {
			break
		}
	}
	return supported, nil
}

// ReadAll reads every supported PID that has a descriptor, skipping the
// supported-PIDs queries themselves. Failed reads are returned in errs.
func ReadAll(ctx context.Context, p OBDProvider, reg *pid.Registry, mode byte, supported []uint8) (readings []pid.Reading, errs []error) {
	for _, d := range reg.Supported(mode, supported) {
		if d.Number()%0x20 == 0 {
			continue
		}
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			return
		}
		r, err := Read(ctx, p, reg, mode, d.Number())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		readings = append(readings, r)
	}
	return
}
