package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/AnshRaj112/serenify-journal/internal/analytics"
	"github.com/AnshRaj112/serenify-journal/internal/config"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/internal/monitor"
)

func TestNew_Subcommands(t *testing.T) {
	root := New()
	for _, name := range []string{"serve", "migrate", "export", "report"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("missing subcommand %q", name)
		}
	}
	if root.RunE == nil {
		t.Error("root should default to serve")
	}
}

func TestMigrate_Args(t *testing.T) {
	cmd, _, err := New().Find([]string{"migrate"})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{nil, false},
		{[]string{"up"}, false},
		{[]string{"down"}, false},
		{[]string{"version"}, false},
		{[]string{"sideways"}, true},
		{[]string{"up", "down"}, true},
	}
	for _, tt := range tests {
		if err := cmd.Args(cmd, tt.args); (err != nil) != tt.wantErr {
			t.Errorf("Args(%v) = %v, wantErr %v", tt.args, err, tt.wantErr)
		}
	}
}

func TestExportOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    exportOptions
		wantErr string
	}{
		{"month", exportOptions{User: "u", Month: "2024-01"}, ""},
		{"entry", exportOptions{User: "u", Entry: "abc"}, ""},
		{"no user", exportOptions{Month: "2024-01"}, "--user"},
		{"nothing selected", exportOptions{User: "u"}, "one of --month or --entry"},
		{"both selected", exportOptions{User: "u", Month: "2024-01", Entry: "abc"}, "mutually exclusive"},
		{"bad month", exportOptions{User: "u", Month: "January"}, "--month must look like"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestExportOptions_Location(t *testing.T) {
	o := exportOptions{}
	if loc, err := o.location(time.UTC); err != nil || loc != time.UTC {
		t.Errorf("default = %v, %v", loc, err)
	}
	o.TZ = "Asia/Tokyo"
	if loc, err := o.location(time.UTC); err != nil || loc.String() != "Asia/Tokyo" {
		t.Errorf("tz = %v, %v", loc, err)
	}
	o.TZ = "Nowhere/Special"
	if _, err := o.location(time.UTC); err == nil {
		t.Error("expected error for unknown zone")
	}
}

func TestRenderReport(t *testing.T) {
	color.NoColor = true
	entries := []models.JournalEntry{
		{Title: "a", Mood: "happy", CreatedAt: time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)},
		{Title: "b", Mood: "happy", CreatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)},
		{Title: "c", Mood: "anxious", CreatedAt: time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)},
	}
	report := analytics.Analyze(entries, analytics.Options{Month: "2024-01", Location: time.UTC})

	var buf bytes.Buffer
	renderReport(&buf, report)
	out := buf.String()

	for _, want := range []string{"January 2024 · 3 entries", "Happy", "67%", "Emotional Balance", "Positive", "Weeks", "Insights"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReport_Empty(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	renderReport(&buf, analytics.Analyze(nil, analytics.Options{Month: "2024-02"}))
	if !strings.Contains(buf.String(), "0 entries") || !strings.Contains(buf.String(), "No entries this month.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestNewMonitor(t *testing.T) {
	cfg := &config.Config{MonitorEnabled: false}
	if _, ok := newMonitor(cfg, zap.NewNop(), prometheus.NewRegistry()).(*monitor.Noop); !ok {
		t.Error("disabled monitor should be a no-op")
	}

	cfg = &config.Config{MonitorEnabled: true, MonitorInterval: time.Minute, MonitorThresholdMB: 100}
	m, ok := newMonitor(cfg, zap.NewNop(), prometheus.NewRegistry()).(*monitor.Runtime)
	if !ok {
		t.Fatal("enabled monitor should sample the runtime")
	}
	m.Shutdown("test")
}
