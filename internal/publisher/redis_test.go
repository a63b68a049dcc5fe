package publisher

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"elmpid/internal/obd/pid"
)

func TestFields(t *testing.T) {
	got := Fields([]pid.Reading{
		{Mode: 0x01, PID: 0x0C, Description: "Engine speed", Unit: "rpm", Value: 1726.0},
		{Mode: 0x01, PID: 0x05, Description: "Engine coolant temperature", Unit: "°C", Value: int16(83)},
		{Mode: 0x02, PID: 0x02, Description: "DTC that caused freeze frame to be stored", Value: "P0133"},
	})
	want := map[string]string{
		"01:0c": "1726.00 rpm",
		"01:05": "83 °C",
		"02:02": "P0133",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestChanged(t *testing.T) {
	r := NewRedis("localhost:0", "")
	defer r.Close()
	assert.Equal(t, DefaultKey, r.key)

	r.last = map[string]string{"01:0c": "800.00 rpm", "01:05": "83 °C"}
	got := r.changed(map[string]string{"01:0c": "812.00 rpm", "01:05": "83 °C", "01:0d": "0 km/h"})
	assert.ElementsMatch(t, []string{"01:0c", "01:0d"}, got)
}

func TestPublishNothing(t *testing.T) {
	r := NewRedis("localhost:0", "car")
	defer r.Close()
	assert.NoError(t, r.Publish(context.Background(), nil))
}
