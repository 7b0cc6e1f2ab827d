// Package config loads run settings for the measurement engine.
//
// Every field is optional. Omitted fields keep the defaults returned by the
// Get* accessors, so a partial file is always safe.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/bodyslice/internal/body/l1frames"
	"github.com/banshee-data/bodyslice/internal/body/l2slices"
	"github.com/banshee-data/bodyslice/internal/body/l3measure"
	"github.com/banshee-data/bodyslice/internal/body/space"
	"github.com/banshee-data/bodyslice/internal/units"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is the example settings file shipped with the repo.
const DefaultConfigPath = "config/settings.example.yaml"

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Settings is the root configuration of a measurement run. The same schema
// is accepted as JSON or YAML.
type Settings struct {
	// Measurements lists enabled kinds by name. Empty enables all.
	Measurements []string `json:"measurements,omitempty" yaml:"measurements,omitempty"`
	// TorsoSlices overrides individual torso slices.
	TorsoSlices []TorsoSlice `json:"torso_slices,omitempty" yaml:"torso_slices,omitempty"`

	TickInterval *string `json:"tick_interval,omitempty" yaml:"tick_interval,omitempty"` // duration string like "33ms"
	LengthUnits  *string `json:"length_units,omitempty" yaml:"length_units,omitempty"`
	HistorySize  *int    `json:"history_size,omitempty" yaml:"history_size,omitempty"`

	// Overlay params
	Overlay          *bool    `json:"overlay,omitempty" yaml:"overlay,omitempty"`
	OverlayLineWidth *float64 `json:"overlay_line_width,omitempty" yaml:"overlay_line_width,omitempty"`

	// Outputs
	DBPath  *string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	PlotDir *string `json:"plot_dir,omitempty" yaml:"plot_dir,omitempty"`
	Listen  *string `json:"listen,omitempty" yaml:"listen,omitempty"`

	// Camera calibration
	DepthWidth    *int        `json:"depth_width,omitempty" yaml:"depth_width,omitempty"`
	DepthHeight   *int        `json:"depth_height,omitempty" yaml:"depth_height,omitempty"`
	DepthFX       *float64    `json:"depth_fx,omitempty" yaml:"depth_fx,omitempty"`
	DepthFY       *float64    `json:"depth_fy,omitempty" yaml:"depth_fy,omitempty"`
	DepthCX       *float64    `json:"depth_cx,omitempty" yaml:"depth_cx,omitempty"`
	DepthCY       *float64    `json:"depth_cy,omitempty" yaml:"depth_cy,omitempty"`
	DepthScale    *float64    `json:"depth_scale,omitempty" yaml:"depth_scale,omitempty"`
	ColorWidth    *int        `json:"color_width,omitempty" yaml:"color_width,omitempty"`
	ColorHeight   *int        `json:"color_height,omitempty" yaml:"color_height,omitempty"`
	ColorFX       *float64    `json:"color_fx,omitempty" yaml:"color_fx,omitempty"`
	ColorFY       *float64    `json:"color_fy,omitempty" yaml:"color_fy,omitempty"`
	ColorCX       *float64    `json:"color_cx,omitempty" yaml:"color_cx,omitempty"`
	ColorCY       *float64    `json:"color_cy,omitempty" yaml:"color_cy,omitempty"`
	ColorOffsetMM *[3]float64 `json:"color_offset_mm,omitempty" yaml:"color_offset_mm,omitempty"`
}

// TorsoSlice overrides the seeding of one torso slice. Unset fields keep
// the default for that slice.
type TorsoSlice struct {
	Kind        string   `json:"kind" yaml:"kind"`
	From        *string  `json:"from,omitempty" yaml:"from,omitempty"`
	To          *string  `json:"to,omitempty" yaml:"to,omitempty"`
	Fraction    *float64 `json:"fraction,omitempty" yaml:"fraction,omitempty"`
	Axis        *string  `json:"axis,omitempty" yaml:"axis,omitempty"`
	MaxExtentPx *int     `json:"max_extent_px,omitempty" yaml:"max_extent_px,omitempty"`
}

// EmptySettings returns Settings with every field unset.
func EmptySettings() *Settings {
	return &Settings{}
}

// LoadSettings loads Settings from a .json, .yaml or .yml file of at most
// 1MB and validates it.
func LoadSettings(path string) (*Settings, error) {
	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	switch ext {
	case ".json", ".yaml", ".yml":
	default:
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySettings()
	if ext == ".json" {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF and means all defaults.
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// JSON returns c encoded as JSON, as stored alongside each session.
func (c *Settings) JSON() ([]byte, error) {
	return json.Marshal(c)
}

// Validate checks that the configured values are usable.
func (c *Settings) Validate() error {
	if _, err := c.measurementKinds(); err != nil {
		return err
	}
	if _, err := c.sliceSpecs(); err != nil {
		return err
	}

	if c.TickInterval != nil && *c.TickInterval != "" {
		d, err := time.ParseDuration(*c.TickInterval)
		if err != nil {
			return fmt.Errorf("invalid tick_interval '%s': %w", *c.TickInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("tick_interval must be positive, got %s", d)
		}
	}

	if c.LengthUnits != nil && !units.IsValid(*c.LengthUnits) {
		return fmt.Errorf("length_units must be one of %s, got %q", units.GetValidUnitsString(), *c.LengthUnits)
	}
	if c.HistorySize != nil && *c.HistorySize <= 0 {
		return fmt.Errorf("history_size must be positive, got %d", *c.HistorySize)
	}
	if c.OverlayLineWidth != nil && *c.OverlayLineWidth <= 0 {
		return fmt.Errorf("overlay_line_width must be positive, got %f", *c.OverlayLineWidth)
	}

	for name, v := range map[string]*int{
		"depth_width": c.DepthWidth, "depth_height": c.DepthHeight,
		"color_width": c.ColorWidth, "color_height": c.ColorHeight,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, *v)
		}
	}
	for name, v := range map[string]*float64{
		"depth_fx": c.DepthFX, "depth_fy": c.DepthFY,
		"color_fx": c.ColorFX, "color_fy": c.ColorFY,
		"depth_scale": c.DepthScale,
	} {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %f", name, *v)
		}
	}
	return nil
}

func (c *Settings) measurementKinds() ([]l3measure.Kind, error) {
	kinds := make([]l3measure.Kind, 0, len(c.Measurements))
	for _, name := range c.Measurements {
		k, err := l3measure.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("measurements: %w", err)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func (c *Settings) sliceSpecs() ([l3measure.TorsoCount]l3measure.SliceSpec, error) {
	specs := l3measure.DefaultSliceSpecs()
	for _, ts := range c.TorsoSlices {
		k, err := l3measure.ParseKind(ts.Kind)
		if err != nil || !k.IsTorso() {
			return specs, fmt.Errorf("torso_slices: %q is not a torso kind", ts.Kind)
		}
		i := int(k - l3measure.KindTorso1)
		spec := specs[i]
		if ts.From != nil {
			if spec.From, err = l1frames.ParseJointType(*ts.From); err != nil {
				return specs, fmt.Errorf("torso_slices %s: %w", ts.Kind, err)
			}
		}
		if ts.To != nil {
			if spec.To, err = l1frames.ParseJointType(*ts.To); err != nil {
				return specs, fmt.Errorf("torso_slices %s: %w", ts.Kind, err)
			}
		} else if ts.From != nil {
			spec.To = spec.From
		}
		if ts.Fraction != nil {
			spec.Fraction = *ts.Fraction
		}
		if ts.Axis != nil {
			if spec.Axis, err = parseAxis(*ts.Axis); err != nil {
				return specs, fmt.Errorf("torso_slices %s: %w", ts.Kind, err)
			}
		}
		if ts.MaxExtentPx != nil {
			spec.MaxExtent = *ts.MaxExtentPx
		}
		if err := spec.Validate(); err != nil {
			return specs, fmt.Errorf("torso_slices %s: %w", ts.Kind, err)
		}
		specs[i] = spec
	}
	return specs, nil
}

func parseAxis(s string) (l2slices.Axis, error) {
	switch s {
	case l2slices.Horizontal.String():
		return l2slices.Horizontal, nil
	case l2slices.Vertical.String():
		return l2slices.Vertical, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// EstimatorConfig returns the estimator configuration described by c.
// It assumes c has been validated; invalid entries fall back to defaults.
func (c *Settings) EstimatorConfig() l3measure.Config {
	cfg := l3measure.DefaultConfig()
	if kinds, err := c.measurementKinds(); err == nil {
		cfg.Kinds = kinds
	}
	if specs, err := c.sliceSpecs(); err == nil {
		cfg.Slices = specs
	}
	return cfg
}

// PinholeConfig returns the camera calibration described by c, starting
// from space.DefaultPinholeConfig.
func (c *Settings) PinholeConfig() space.PinholeConfig {
	cfg := space.DefaultPinholeConfig()
	setInt(&cfg.Depth.Width, c.DepthWidth)
	setInt(&cfg.Depth.Height, c.DepthHeight)
	setFloat(&cfg.Depth.FX, c.DepthFX)
	setFloat(&cfg.Depth.FY, c.DepthFY)
	setFloat(&cfg.Depth.CX, c.DepthCX)
	setFloat(&cfg.Depth.CY, c.DepthCY)
	setFloat(&cfg.DepthScale, c.DepthScale)
	setInt(&cfg.Color.Width, c.ColorWidth)
	setInt(&cfg.Color.Height, c.ColorHeight)
	setFloat(&cfg.Color.FX, c.ColorFX)
	setFloat(&cfg.Color.FY, c.ColorFY)
	setFloat(&cfg.Color.CX, c.ColorCX)
	setFloat(&cfg.Color.CY, c.ColorCY)
	if c.ColorOffsetMM != nil {
		o := *c.ColorOffsetMM
		cfg.DepthToColor = space.Translation(o[0]/1000, o[1]/1000, o[2]/1000)
	}
	return cfg
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// GetTickInterval parses and returns the TickInterval as a time.Duration.
func (c *Settings) GetTickInterval() time.Duration {
	if c.TickInterval == nil || *c.TickInterval == "" {
		return 33 * time.Millisecond // default
	}
	d, err := time.ParseDuration(*c.TickInterval)
	if err != nil || d <= 0 {
		return 33 * time.Millisecond // default on parse error
	}
	return d
}

// GetLengthUnits returns the length_units value or the default.
func (c *Settings) GetLengthUnits() string {
	if c.LengthUnits == nil || !units.IsValid(*c.LengthUnits) {
		return units.Centimetres
	}
	return *c.LengthUnits
}

// GetHistorySize returns the history_size value or the default.
func (c *Settings) GetHistorySize() int {
	if c.HistorySize == nil || *c.HistorySize <= 0 {
		return 600
	}
	return *c.HistorySize
}

// GetOverlay returns the overlay value or the default.
func (c *Settings) GetOverlay() bool {
	if c.Overlay == nil {
		return false // default: no overlay buffer
	}
	return *c.Overlay
}

// GetOverlayLineWidth returns the overlay_line_width value or the default.
func (c *Settings) GetOverlayLineWidth() float32 {
	if c.OverlayLineWidth == nil || *c.OverlayLineWidth <= 0 {
		return 2
	}
	return float32(*c.OverlayLineWidth)
}

// GetDBPath returns the db_path value; empty disables persistence.
func (c *Settings) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

// GetPlotDir returns the plot_dir value; empty disables plots.
func (c *Settings) GetPlotDir() string {
	if c.PlotDir == nil {
		return ""
	}
	return *c.PlotDir
}

// GetListen returns the listen address; empty disables the web server.
func (c *Settings) GetListen() string {
	if c.Listen == nil {
		return ""
	}
	return *c.Listen
}
