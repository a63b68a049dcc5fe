package scan

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elmpid/internal/obd"
	"elmpid/internal/obd/mock"
	"elmpid/internal/obd/pid"
)

func TestScan(t *testing.T) {
	m := mock.New()
	require.NoError(t, m.Start(context.Background()))
	defer m.Stop()

	var out bytes.Buffer
	require.NoError(t, Scan(context.Background(), &out, m, pid.Default(), pid.ModeCurrentData))

	s := out.String()
	assert.Contains(t, s, "0C   2     Engine speed")
	assert.Contains(t, s, "16 PIDs supported in mode 01, 16 decodable")
	assert.Equal(t, 18, len(strings.Split(strings.TrimSpace(s), "\n")))
}

func TestScanNotConnected(t *testing.T) {
	err := Scan(context.Background(), &bytes.Buffer{}, mock.New(), pid.Default(), pid.ModeCurrentData)
	assert.ErrorIs(t, err, obd.ErrNotConnected)
}
