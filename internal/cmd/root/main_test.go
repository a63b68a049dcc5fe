package root

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elmpid/internal/obd/mock"
	"elmpid/internal/obd/pid"
)

func TestPrintSummary(t *testing.T) {
	m := mock.New()
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	var out bytes.Buffer
	require.NoError(t, printSummary(context.Background(), &out, m, pid.Default(), pid.ModeCurrentData, nil))

	s := out.String()
	assert.True(t, strings.HasPrefix(s, "Adapter: simulated, 14.2 V\n"), s)
	assert.Contains(t, s, "Readings (mode 01, 16 supported PIDs):")
	assert.Contains(t, s, "- 010C Engine speed: 800.00 rpm")
	assert.Contains(t, s, "- 0105 Engine coolant temperature: 75 °C")
	assert.NotContains(t, s, "- 0100 ")
	assert.Contains(t, s, "Current DTC Error Codes:")
}

func TestPrintSummaryNotStarted(t *testing.T) {
	var out bytes.Buffer
	err := printSummary(context.Background(), &out, mock.New(), pid.Default(), pid.ModeCurrentData, nil)
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

