package displayer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"elmpid/internal/models"
	"elmpid/internal/obd"
	"elmpid/internal/obd/pid"
	"elmpid/pkg/log"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

const DefaultInterval = 2 * time.Second

// Sink receives every batch of readings, e.g. a Redis publisher.
type Sink interface {
	Publish(ctx context.Context, readings []pid.Reading) error
}

// Displayer handles the TUI and polls an already started OBDProvider.
type Displayer struct {
	app      *tview.Application
	tabs     *tview.Pages
	provider obd.OBDProvider
	registry *pid.Registry
	mode     byte
	interval time.Duration
	sink     Sink
	ctx      context.Context
	cancel   context.CancelFunc
	once     sync.Once

	// UI elements cached for updates
	statusText *tview.TextView
	helpText   *tview.TextView
	pidTable   *tview.Table
	dtcTable   *tview.Table
}

type Option func(*Displayer)

// WithInterval sets the polling period.
func WithInterval(d time.Duration) Option {
	return func(disp *Displayer) {
		if d > 0 {
			disp.interval = d
		}
	}
}

// WithMode selects the service mode displayed, 01 by default.
func WithMode(mode byte) Option {
	return func(d *Displayer) { d.mode = mode }
}

// WithSink forwards every batch of readings to s.
func WithSink(s Sink) Option {
	return func(d *Displayer) { d.sink = s }
}

func New(provider obd.OBDProvider, registry *pid.Registry, opts ...Option) *Displayer {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Displayer{
		app:      tview.NewApplication(),
		tabs:     tview.NewPages(),
		provider: provider,
		registry: registry,
		mode:     pid.ModeCurrentData,
		interval: DefaultInterval,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Displayer) Run() error {
	// build UI
	d.pidTable = newTable("PID", "Description", "Value", "Unit")
	d.dtcTable = newTable("Code", "Description")

	// header area: title, status, help
	title := tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("elmpid - OBD-II PID monitor")
	d.statusText = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true)
	d.helpText = tview.NewTextView().SetTextAlign(tview.AlignCenter).SetText("[1 - Dashboard] [2 - DTC] [q - Quit]")
	d.setStatus("discovering supported PIDs")

	headerFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	headerFlex.AddItem(title, 1, 0, false)
	headerFlex.AddItem(d.statusText, 1, 0, false)
	headerFlex.AddItem(d.helpText, 1, 0, false)

	// Create main layout with header always visible
	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow)
	mainFlex.AddItem(headerFlex, 3, 0, false)

	d.tabs.AddPage("dashboard", d.pidTable, true, true)
	d.tabs.AddPage("dtc", d.dtcTable, true, false)
	mainFlex.AddItem(d.tabs, 0, 1, true)

	d.app.SetRoot(mainFlex, true)
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			d.Shutdown()
			return nil
		case '1':
			d.tabs.SwitchToPage("dashboard")
			return nil
		case '2':
			d.tabs.SwitchToPage("dtc")
			return nil
		}
		return event
	})

	go d.refreshLoop()

	return d.app.Run()
}

func (d *Displayer) Shutdown() {
	d.once.Do(func() {
		d.cancel()
		d.provider.Stop()
		d.app.Stop()
	})
}

// refreshLoop talks to the provider and hands results to the UI goroutine.
func (d *Displayer) refreshLoop() {
	supported, err := obd.Discover(d.ctx, d.provider, d.registry, d.mode)
	if err != nil {
		log.Error("failed to discover supported PIDs", zap.Error(err))
		d.app.QueueUpdateDraw(func() { d.setStatus(fmt.Sprintf("discovery failed: %v", err)) })
		return
	}
	log.Debug("discovered supported PIDs", zap.Int("count", len(supported)))

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		d.refresh(supported)

		select {
		case <-d.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Displayer) refresh(supported []uint8) {
	readings, errs := obd.ReadAll(d.ctx, d.provider, d.registry, d.mode, supported)
	for _, err := range errs {
		log.Debug("read failed", zap.Error(err))
	}
	if d.sink != nil && len(readings) > 0 {
		if err := d.sink.Publish(d.ctx, readings); err != nil {
			log.Warn("failed to publish readings", zap.Error(err))
		}
	}

	dtcs, err := d.provider.GetErrors()
	if err != nil {
		log.Debug("failed to read DTCs", zap.Error(err))
	}

	status := StatusLine(d.provider.IsConnected(), obd.AdapterStatus(d.ctx, d.provider), len(readings), len(dtcs))
	d.app.QueueUpdateDraw(func() {
		fill(d.pidTable, ReadingRows(readings))
		fill(d.dtcTable, DTCRows(dtcs))
		d.setStatus(status)
	})
}

// StatusLine renders the header status, adapter being the optional
// protocol and voltage summary.
func StatusLine(connected bool, adapter string, pids, dtcs int) string {
	if !connected {
		return "[red]disconnected[white]"
	}
	s := "[green]connected[white]"
	if adapter != "" {
		s += " (" + adapter + ")"
	}
	return fmt.Sprintf("%s %d PIDs, %d DTCs", s, pids, dtcs)
}

func (d *Displayer) setStatus(s string) {
	d.statusText.SetText("Status: " + s)
}

// ReadingRows lays readings out as dashboard rows.
func ReadingRows(readings []pid.Reading) [][]string {
	rows := make([][]string, 0, len(readings))
	for _, r := range readings {
		rows = append(rows, []string{r.Key(), r.Description, r.ValueText(), r.Unit})
	}
	return rows
}

// DTCRows lays trouble codes out as DTC page rows.
func DTCRows(entries []models.DTCEntry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Code, e.Description})
	}
	return rows
}

func newTable(headers ...string) *tview.Table {
	tbl := tview.NewTable().SetBorders(true).SetFixed(1, 0)
	for i, h := range headers {
		tbl.SetCell(0, i, tview.NewTableCell(h).SetSelectable(false).SetAlign(tview.AlignCenter))
	}
	return tbl
}

// fill replaces every row but the header.
func fill(tbl *tview.Table, rows [][]string) {
	for r := tbl.GetRowCount() - 1; r >= 1; r-- {
		tbl.RemoveRow(r)
	}
	for i, row := range rows {
		for j, cell := range row {
			tbl.SetCell(i+1, j, tview.NewTableCell(cell))
		}
	}
}
