package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/torosent/hostbench/internal/metrics"
)

// RunConfig holds batch parameters for display.
type RunConfig struct {
	Hosts      int           // Number of hosts in the batch
	Count      int           // Requests per host
	Timeout    time.Duration // Per-request timeout
	Parallel   bool          // Hosts run concurrently
	Workers    int           // Host-level concurrency when Parallel is set
	Rate       float64       // Requests per second (0 = unlimited)
	ConfigFile string        // Path to config file if used
}

// Dashboard renders a live terminal UI for a running batch.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid           *ui.Grid
	summaryPara    *widgets.Paragraph
	hostGauge      *widgets.Gauge
	latencySparkle *widgets.SparklineGroup
	latencyPara    *widgets.Paragraph
	hostList       *widgets.List
	statusList     *widgets.List
	errorList      *widgets.List
	latencyHistory []float64
	startTime      time.Time
	cfg            RunConfig
}

// New initialises termui and builds the widget grid. shutdownFunc is invoked
// when the user presses q or Ctrl+C.
func New(collector *metrics.Collector, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:      collector,
		ctx:            ctx,
		cancel:         cancel,
		shutdownFunc:   shutdownFunc,
		latencyHistory: make([]float64, 0, 100),
		startTime:      time.Now(),
		cfg:            cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

func (d *Dashboard) initWidgets() {
	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Batch"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.hostGauge = widgets.NewGauge()
	d.hostGauge.Title = "Hosts Completed"
	d.hostGauge.Percent = 0
	d.hostGauge.BarColor = ui.ColorBlue
	d.hostGauge.BorderStyle.Fg = ui.ColorCyan
	d.hostGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	sparkline := widgets.NewSparkline()
	sparkline.Title = "Mean latency (ms)"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.latencySparkle = widgets.NewSparklineGroup(sparkline)
	d.latencySparkle.Title = "Latency"
	d.latencySparkle.BorderStyle.Fg = ui.ColorCyan

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Latency Stats"
	d.latencyPara.Text = "Min:  n/a\nMean: n/a\nMax:  n/a"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.hostList = widgets.NewList()
	d.hostList.Title = "Hosts"
	d.hostList.Rows = []string{"Awaiting data"}
	d.hostList.TextStyle = ui.NewStyle(ui.ColorCyan)
	d.hostList.BorderStyle.Fg = ui.ColorCyan

	d.statusList = widgets.NewList()
	d.statusList.Title = "Status Codes"
	d.statusList.Rows = []string{"No responses"}
	d.statusList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.statusList.BorderStyle.Fg = ui.ColorCyan

	d.errorList = widgets.NewList()
	d.errorList.Title = "Errors"
	d.errorList.Rows = []string{"No errors"}
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.15,
			ui.NewCol(0.6, d.summaryPara),
			ui.NewCol(0.4, d.hostGauge),
		),
		ui.NewRow(0.25,
			ui.NewCol(0.65, d.latencySparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.6,
			ui.NewCol(0.6, d.hostList),
			ui.NewCol(0.4,
				ui.NewRow(0.5, d.statusList),
				ui.NewRow(0.5, d.errorList),
			),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Stop() cancels the context once the runner has drained.
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := d.collector.Stats()

	if stats.Success > 0 {
		meanMs := metrics.RoundMs(stats.MeanLatency)
		d.latencyHistory = append(d.latencyHistory, meanMs)
		if len(d.latencyHistory) > 100 {
			d.latencyHistory = d.latencyHistory[1:]
		}
		d.latencySparkle.Sparklines[0].Data = d.latencyHistory
		d.latencySparkle.Title = fmt.Sprintf("Latency | Mean: %.1fms | Min: %.1fms | Max: %.1fms",
			meanMs, metrics.RoundMs(stats.MinLatency), metrics.RoundMs(stats.MaxLatency))
	}

	d.hostGauge.Percent = hostPercent(stats)
	d.hostGauge.Label = fmt.Sprintf("%d/%d hosts | %.1f RPS", stats.HostsDone+stats.HostsFailed, stats.HostsTotal, stats.RequestsPerSec)

	d.summaryPara.Text = fmt.Sprintf("%s\nElapsed: %s | Requests: %d | Success: %d | Failed: %d | Errors: %d",
		formatRunParams(d.cfg),
		stats.Elapsed.Round(time.Second),
		stats.Requests, stats.Success, stats.Failed, stats.Errors,
	)

	d.latencyPara.Text = formatLatencyText(stats)
	d.hostList.Rows = formatHostRows(stats.Hosts)
	d.statusList.Rows = formatStatusRows(stats.StatusCodes)
	d.errorList.Rows = formatErrorRows(stats)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func hostPercent(stats metrics.LiveStats) int {
	if stats.HostsTotal <= 0 {
		return 0
	}
	pct := (stats.HostsDone + stats.HostsFailed) * 100 / stats.HostsTotal
	if pct > 100 {
		pct = 100
	}
	return pct
}

func formatLatencyText(stats metrics.LiveStats) string {
	if stats.Success == 0 {
		return "Min:  n/a\nMean: n/a\nMax:  n/a"
	}
	return fmt.Sprintf("Min:  %.1fms\nMean: %.1fms\nMax:  %.1fms",
		metrics.RoundMs(stats.MinLatency),
		metrics.RoundMs(stats.MeanLatency),
		metrics.RoundMs(stats.MaxLatency),
	)
}

func formatHostRows(hosts []metrics.HostProgress) []string {
	if len(hosts) == 0 {
		return []string{"Awaiting data"}
	}
	rows := make([]string, 0, len(hosts))
	for _, h := range hosts {
		var state string
		switch {
		case h.Invalid:
			state = "[invalid](fg:red)"
		case h.Finished:
			state = "[done](fg:green)"
		default:
			state = "[running](fg:yellow)"
		}
		rows = append(rows, fmt.Sprintf("[%s](fg:cyan) | %s | ok %d | fail %d | err %d | other %d",
			h.Host, state, h.Success, h.Failed, h.Errors, h.Other))
	}
	return rows
}

func formatStatusRows(codes map[int]int) []string {
	rows := metrics.FlattenStatusCodes(codes)
	if len(rows) == 0 {
		return []string{"[No responses](fg:green)"}
	}
	if len(rows) > 10 {
		rows = rows[:10]
	}
	formatted := make([]string, 0, len(rows))
	for _, row := range rows {
		color := "green"
		switch row.Class {
		case metrics.ClassFailed:
			color = "red"
		case metrics.ClassOther:
			color = "yellow"
		}
		formatted = append(formatted, fmt.Sprintf("[HTTP %d](fg:%s) %d", row.Code, color, row.Count))
	}
	return formatted
}

func formatErrorRows(stats metrics.LiveStats) []string {
	kinds := stats.TopErrorKinds()
	if len(kinds) == 0 {
		return []string{"[No errors](fg:green)"}
	}
	if len(kinds) > 10 {
		kinds = kinds[:10]
	}
	rows := make([]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, fmt.Sprintf("[%s](fg:red) %d", k, stats.ErrorKinds[k]))
	}
	return rows
}

// formatRunParams formats the batch parameters for display.
func formatRunParams(cfg RunConfig) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Hosts: %d", cfg.Hosts))
	parts = append(parts, fmt.Sprintf("Count: %d", cfg.Count))

	if cfg.Parallel {
		parts = append(parts, fmt.Sprintf("Mode: parallel (%d workers)", cfg.Workers))
	} else {
		parts = append(parts, "Mode: sequential")
	}

	if cfg.Rate > 0 {
		parts = append(parts, fmt.Sprintf("Rate: %g/s", cfg.Rate))
	} else {
		parts = append(parts, "Rate: unlimited")
	}

	if cfg.Timeout > 0 {
		parts = append(parts, fmt.Sprintf("Timeout: %s", cfg.Timeout))
	}

	if cfg.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", cfg.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
