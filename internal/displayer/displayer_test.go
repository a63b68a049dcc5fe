package displayer

import (
	"testing"
	"time"

	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"

	"elmpid/internal/models"
	"elmpid/internal/obd/mock"
	"elmpid/internal/obd/pid"
)

func TestReadingRows(t *testing.T) {
	rows := ReadingRows([]pid.Reading{
		{Mode: 0x01, PID: 0x0C, Description: "Engine speed", Unit: "rpm", Value: 1726.0},
		{Mode: 0x01, PID: 0x1C, Description: "OBD standard", Value: "EOBD (Europe)"},
	})
	assert.Equal(t, [][]string{
		{"010C", "Engine speed", "1726.00", "rpm"},
		{"011C", "OBD standard", "EOBD (Europe)", ""},
	}, rows)
}

func TestDTCRows(t *testing.T) {
	assert.Empty(t, DTCRows(nil))
	assert.Equal(t, [][]string{{"P0420", "Catalyst"}}, DTCRows([]models.DTCEntry{{Code: "P0420", Description: "Catalyst"}}))
}

func TestFillKeepsHeader(t *testing.T) {
	tbl := newTable("Code", "Description")
	fill(tbl, [][]string{{"P0101", "a"}, {"P0102", "b"}})
	assert.Equal(t, 3, tbl.GetRowCount())

	fill(tbl, [][]string{{"P0300", "c"}})
	assert.Equal(t, 2, tbl.GetRowCount())
	assert.Equal(t, "Code", tbl.GetCell(0, 0).Text)
	assert.Equal(t, "P0300", tbl.GetCell(1, 0).Text)
}

func TestOptions(t *testing.T) {
	d := New(mock.New(), pid.Default(), WithInterval(time.Second), WithMode(pid.ModeFreezeFrame))
	assert.Equal(t, time.Second, d.interval)
	assert.Equal(t, pid.ModeFreezeFrame, d.mode)
	assert.Nil(t, d.sink)

	d = New(mock.New(), pid.Default(), WithInterval(0))
	assert.Equal(t, DefaultInterval, d.interval)
	assert.IsType(t, &tview.Pages{}, d.tabs)
}

func TestStatusLine(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		adapter   string
		want      string
	}{
		{"disconnected", false, "simulated, 14.2 V", "[red]disconnected[white]"},
		{"no adapter info", true, "", "[green]connected[white] 16 PIDs, 1 DTCs"},
		{"adapter", true, "ISO 15765-4 CAN (11 bit ID, 500 kbaud), 12.6 V",
			"[green]connected[white] (ISO 15765-4 CAN (11 bit ID, 500 kbaud), 12.6 V) 16 PIDs, 1 DTCs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusLine(tt.connected, tt.adapter, 16, 1))
		})
	}
}
