package list

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"elmpid/internal/obd/pid"
)

func TestInfos(t *testing.T) {
	all, err := Infos(pid.Default(), "")
	require.NoError(t, err)
	mode01, err := Infos(pid.Default(), "01")
	require.NoError(t, err)
	mode02, err := Infos(pid.Default(), "2")
	require.NoError(t, err)

	assert.Len(t, all, len(mode01)+len(mode02))
	assert.Equal(t, "00", mode01[0].PID)
	assert.Equal(t, "02", mode02[0].Mode)

	_, err = Infos(pid.Default(), "09")
	assert.ErrorIs(t, err, pid.ErrNotFound)
}

func TestWriteTable(t *testing.T) {
	infos, err := Infos(pid.Default(), "01")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Write(&out, infos, FormatTable))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(infos)+1)
	assert.True(t, strings.HasPrefix(lines[0], "MODE"))

	var rpm string
	for _, l := range lines {
		if strings.HasPrefix(l, "01    0C") {
			rpm = l
		}
	}
	assert.Contains(t, rpm, "Engine speed")
	assert.Contains(t, rpm, "rpm")
	assert.Contains(t, rpm, "16383.75")
}

func TestWriteYAML(t *testing.T) {
	infos, err := Infos(pid.Default(), "01")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Write(&out, infos, FormatYAML))

	var back []map[string]any
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &back))
	require.Len(t, back, len(infos))
	assert.Equal(t, "0C", back[12]["pid"])
	assert.Equal(t, "rpm", back[12]["unit"])
}

func TestWriteJSON(t *testing.T) {
	infos, err := Infos(pid.Default(), "01")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Write(&out, infos, FormatJSON))

	var back []map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &back))
	assert.Equal(t, "Engine speed", back[12]["description"])
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, nil, "xml"))
}
