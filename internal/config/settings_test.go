package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l2slices"
	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/body/space"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestEmptySettingsDefaults(t *testing.T) {
	cfg := EmptySettings()

	if got := cfg.GetTickInterval(); got != 33*time.Millisecond {
		t.Errorf("GetTickInterval() = %v, want 33ms", got)
	}
	if got := cfg.GetLengthUnits(); got != "cm" {
		t.Errorf("GetLengthUnits() = %q, want cm", got)
	}
	if got := cfg.GetHistorySize(); got != 600 {
		t.Errorf("GetHistorySize() = %d, want 600", got)
	}
	if cfg.GetOverlay() {
		t.Error("GetOverlay() = true, want false")
	}
	if got := cfg.GetOverlayLineWidth(); got != 2 {
		t.Errorf("GetOverlayLineWidth() = %v, want 2", got)
	}
	if cfg.GetDBPath() != "" || cfg.GetPlotDir() != "" || cfg.GetListen() != "" {
		t.Error("expected outputs disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on empty settings: %v", err)
	}

	est := cfg.EstimatorConfig()
	if len(est.Kinds) != 0 {
		t.Errorf("Kinds = %v, want empty (all enabled)", est.Kinds)
	}
	if est.Slices != l3measure.DefaultSliceSpecs() {
		t.Errorf("Slices = %+v, want defaults", est.Slices)
	}
	if got := cfg.PinholeConfig(); got != space.DefaultPinholeConfig() {
		t.Errorf("PinholeConfig() = %+v, want defaults", got)
	}
}

func TestLoadSettingsJSON(t *testing.T) {
	path := writeConfig(t, "run.json", `{
  "measurements": ["height", "torso_2"],
  "torso_slices": [{"kind": "torso_2", "from": "spine_base", "max_extent_px": 40}],
  "tick_interval": "50ms",
  "length_units": "mm",
  "overlay": true,
  "db_path": "/tmp/body.db",
  "depth_fx": 400,
  "color_width": 1280,
  "color_offset_mm": [25, 0, 10]
}`)

	cfg, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetTickInterval(); got != 50*time.Millisecond {
		t.Errorf("GetTickInterval() = %v, want 50ms", got)
	}
	if got := cfg.GetLengthUnits(); got != "mm" {
		t.Errorf("GetLengthUnits() = %q, want mm", got)
	}
	if !cfg.GetOverlay() {
		t.Error("GetOverlay() = false, want true")
	}
	if got := cfg.GetDBPath(); got != "/tmp/body.db" {
		t.Errorf("GetDBPath() = %q", got)
	}

	est := cfg.EstimatorConfig()
	if len(est.Kinds) != 2 || est.Kinds[0] != l3measure.KindHeight || est.Kinds[1] != l3measure.KindTorso2 {
		t.Errorf("Kinds = %v, want [height torso_2]", est.Kinds)
	}
	waist := est.Slices[1]
	if waist.From != l1frames.JointSpineBase || waist.To != l1frames.JointSpineBase {
		t.Errorf("waist joints = %v->%v, want spine_base->spine_base", waist.From, waist.To)
	}
	if waist.MaxExtent != 40 || waist.Axis != l2slices.Horizontal {
		t.Errorf("waist = %+v", waist)
	}
	if est.Slices[0] != l3measure.DefaultSliceSpecs()[0] {
		t.Errorf("chest changed: %+v", est.Slices[0])
	}

	pin := cfg.PinholeConfig()
	if pin.Depth.FX != 400 || pin.Depth.FY != 365.5 {
		t.Errorf("depth intrinsics = %+v", pin.Depth)
	}
	if pin.Color.Width != 1280 {
		t.Errorf("color width = %d, want 1280", pin.Color.Width)
	}
	if pin.DepthToColor != space.Translation(0.025, 0, 0.01) {
		t.Errorf("DepthToColor = %v", pin.DepthToColor)
	}

	data, err := cfg.JSON()
	if err != nil {
		t.Fatalf("JSON(): %v", err)
	}
	snap := string(data)
	if !strings.Contains(snap, `"tick_interval":"50ms"`) || strings.Contains(snap, "plot_dir") {
		t.Errorf("JSON() = %s", snap)
	}
}

func TestLoadSettingsYAML(t *testing.T) {
	for _, name := range []string{"run.yaml", "run.yml"} {
		t.Run(name, func(t *testing.T) {
			path := writeConfig(t, name, `
measurements: [width]
torso_slices:
  - kind: torso_1
    fraction: 0.25
    axis: vertical
length_units: in
listen: ":8080"
color_offset_mm: [52, 0, 0]
`)
			cfg, err := LoadSettings(path)
			if err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}
			if got := cfg.GetLengthUnits(); got != "in" {
				t.Errorf("GetLengthUnits() = %q, want in", got)
			}
			if got := cfg.GetListen(); got != ":8080" {
				t.Errorf("GetListen() = %q", got)
			}
			est := cfg.EstimatorConfig()
			chest := est.Slices[0]
			if chest.Fraction != 0.25 || chest.Axis != l2slices.Vertical {
				t.Errorf("chest = %+v", chest)
			}
			if chest.From != l1frames.JointSpineShoulder || chest.To != l1frames.JointSpineMid {
				t.Errorf("chest joints changed: %v->%v", chest.From, chest.To)
			}
		})
	}
}

func TestLoadSettingsEmptyYAML(t *testing.T) {
	path := writeConfig(t, "empty.yaml", "# nothing set\n")
	cfg, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if cfg.GetTickInterval() != 33*time.Millisecond {
		t.Errorf("GetTickInterval() = %v", cfg.GetTickInterval())
	}
}

func TestLoadExampleSettings(t *testing.T) {
	cfg, err := LoadSettings(filepath.Join("..", "..", DefaultConfigPath))
	if err != nil {
		t.Fatalf("example settings: %v", err)
	}
	if got := cfg.PinholeConfig(); got != space.DefaultPinholeConfig() {
		t.Errorf("example calibration drifted from defaults: %+v", got)
	}
	if got := cfg.EstimatorConfig().Slices[3].MaxExtent; got != 120 {
		t.Errorf("hips max extent = %d, want 120", got)
	}
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"extension", "run.txt", `{}`, "extension"},
		{"bad json", "run.json", `{"tick_interval":`, "parse config JSON"},
		{"unknown json field", "run.json", `{"noise_relative": 0.1}`, "parse config JSON"},
		{"unknown yaml field", "run.yaml", "noise_relative: 0.1\n", "parse config YAML"},
		{"bad kind", "run.json", `{"measurements":["neck"]}`, "unknown measurement kind"},
		{"non-torso slice", "run.json", `{"torso_slices":[{"kind":"height"}]}`, "not a torso kind"},
		{"bad joint", "run.json", `{"torso_slices":[{"kind":"torso_1","from":"tail"}]}`, "unknown joint"},
		{"bad axis", "run.json", `{"torso_slices":[{"kind":"torso_1","axis":"diagonal"}]}`, "unknown axis"},
		{"bad fraction", "run.json", `{"torso_slices":[{"kind":"torso_3","fraction":1.5}]}`, "fraction"},
		{"bad interval", "run.json", `{"tick_interval":"soon"}`, "tick_interval"},
		{"negative interval", "run.json", `{"tick_interval":"-1s"}`, "tick_interval"},
		{"bad units", "run.json", `{"length_units":"ft"}`, "length_units"},
		{"bad history", "run.json", `{"history_size":0}`, "history_size"},
		{"bad width", "run.json", `{"color_width":0}`, "color_width"},
		{"bad focal", "run.json", `{"depth_fx":-1}`, "depth_fx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadSettings(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSettingsMissingAndLarge(t *testing.T) {
	if _, err := LoadSettings(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected error for missing file")
	}

	big := strings.Repeat(" ", maxFileSize+1)
	path := writeConfig(t, "big.json", big)
	_, err := LoadSettings(path)
	if err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected size error, got %v", err)
	}
}

func TestGettersIgnoreInvalidValues(t *testing.T) {
	cfg := &Settings{
		TickInterval:     ptrString("fast"),
		LengthUnits:      ptrString("furlong"),
		HistorySize:      ptrInt(-3),
		OverlayLineWidth: ptrFloat64(0),
		Overlay:          ptrBool(true),
	}
	if cfg.GetTickInterval() != 33*time.Millisecond {
		t.Errorf("GetTickInterval() = %v", cfg.GetTickInterval())
	}
	if cfg.GetLengthUnits() != "cm" {
		t.Errorf("GetLengthUnits() = %q", cfg.GetLengthUnits())
	}
	if cfg.GetHistorySize() != 600 {
		t.Errorf("GetHistorySize() = %d", cfg.GetHistorySize())
	}
	if cfg.GetOverlayLineWidth() != 2 {
		t.Errorf("GetOverlayLineWidth() = %v", cfg.GetOverlayLineWidth())
	}
	if !cfg.GetOverlay() {
		t.Error("GetOverlay() = false")
	}
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
