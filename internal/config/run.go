// Package config loads exploration run configuration from JSON files. The
// schema uses pointer-typed optional fields so partial configs are safe:
// omitted fields keep their defaults, present fields are validated loudly.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RunConfig is the root configuration for an exploration run.
type RunConfig struct {
	Cave   CaveConfig   `json:"cave"`
	Drones DroneConfig  `json:"drones"`
	Run    DriverConfig `json:"run"`
}

// CaveConfig selects or generates the ground-truth cave.
type CaveConfig struct {
	Width       *int     `json:"width,omitempty"`
	Height      *int     `json:"height,omitempty"`
	FillPercent *int     `json:"fill_percent,omitempty"`
	NoiseScale  *float64 `json:"noise_scale,omitempty"`
	Border      *int     `json:"border,omitempty"`
	SmoothIters *int     `json:"smooth_iters,omitempty"`
	Seed        *int64   `json:"seed,omitempty"`

	// File points at a raw cave file (row-major bytes, 0=free 1=occupied)
	// to load instead of generating.
	File *string `json:"file,omitempty"`
}

// DroneConfig sets the fleet parameters.
type DroneConfig struct {
	Count        *int     `json:"count,omitempty"`
	SenseRadius  *float64 `json:"sense_radius,omitempty"`
	CommRadius   *float64 `json:"comm_radius,omitempty"`
	CommCooldown *int     `json:"comm_cooldown,omitempty"`
}

// DriverConfig bounds the simulation itself.
type DriverConfig struct {
	MaxTicks *int `json:"max_ticks,omitempty"`
}

// Defaults mirror the stock exploration parameters.
const (
	DefaultCaveWidth    = 250
	DefaultCaveHeight   = 180
	DefaultDroneCount   = 4
	DefaultSenseRadius  = 10.0
	DefaultCommRadius   = 10.0
	DefaultCommCooldown = 25
	DefaultMaxTicks     = 20000
)

func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }
func ptrFloat64(v float64) *float64 { return &v }

// Default returns a fully-populated RunConfig with stock values.
func Default() *RunConfig {
	return &RunConfig{
		Cave: CaveConfig{
			Width:  ptrInt(DefaultCaveWidth),
			Height: ptrInt(DefaultCaveHeight),
			Seed:   ptrInt64(1),
		},
		Drones: DroneConfig{
			Count:        ptrInt(DefaultDroneCount),
			SenseRadius:  ptrFloat64(DefaultSenseRadius),
			CommRadius:   ptrFloat64(DefaultCommRadius),
			CommCooldown: ptrInt(DefaultCommCooldown),
		},
		Run: DriverConfig{
			MaxTicks: ptrInt(DefaultMaxTicks),
		},
	}
}

// Load reads a RunConfig from a JSON file and merges it over the defaults.
// The file must have a .json extension and parse strictly; unknown fields
// are rejected so typos fail loudly rather than silently using defaults.
func Load(path string) (*RunConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}
	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var loaded RunConfig
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&loaded); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", cleanPath, err)
	}

	cfg := Default()
	cfg.merge(&loaded)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// merge overlays every non-nil field of src onto cfg.
func (cfg *RunConfig) merge(src *RunConfig) {
	if src.Cave.Width != nil {
		cfg.Cave.Width = src.Cave.Width
	}
	if src.Cave.Height != nil {
		cfg.Cave.Height = src.Cave.Height
	}
	if src.Cave.FillPercent != nil {
		cfg.Cave.FillPercent = src.Cave.FillPercent
	}
	if src.Cave.NoiseScale != nil {
		cfg.Cave.NoiseScale = src.Cave.NoiseScale
	}
	if src.Cave.Border != nil {
		cfg.Cave.Border = src.Cave.Border
	}
	if src.Cave.SmoothIters != nil {
		cfg.Cave.SmoothIters = src.Cave.SmoothIters
	}
	if src.Cave.Seed != nil {
		cfg.Cave.Seed = src.Cave.Seed
	}
	if src.Cave.File != nil {
		cfg.Cave.File = src.Cave.File
	}
	if src.Drones.Count != nil {
		cfg.Drones.Count = src.Drones.Count
	}
	if src.Drones.SenseRadius != nil {
		cfg.Drones.SenseRadius = src.Drones.SenseRadius
	}
	if src.Drones.CommRadius != nil {
		cfg.Drones.CommRadius = src.Drones.CommRadius
	}
	if src.Drones.CommCooldown != nil {
		cfg.Drones.CommCooldown = src.Drones.CommCooldown
	}
	if src.Run.MaxTicks != nil {
		cfg.Run.MaxTicks = src.Run.MaxTicks
	}
}

// Validate rejects out-of-range values. Nothing is clamped.
func (cfg *RunConfig) Validate() error {
	if w := *cfg.Cave.Width; w <= 0 {
		return fmt.Errorf("cave width must be positive, got %d", w)
	}
	if h := *cfg.Cave.Height; h <= 0 {
		return fmt.Errorf("cave height must be positive, got %d", h)
	}
	if cfg.Cave.FillPercent != nil {
		if f := *cfg.Cave.FillPercent; f < 0 || f > 100 {
			return fmt.Errorf("fill percent must be in [0,100], got %d", f)
		}
	}
	if n := *cfg.Drones.Count; n <= 0 {
		return fmt.Errorf("drone count must be positive, got %d", n)
	}
	if r := *cfg.Drones.SenseRadius; r <= 0 {
		return fmt.Errorf("sense radius must be positive, got %v", r)
	}
	if r := *cfg.Drones.CommRadius; r <= 0 {
		return fmt.Errorf("comm radius must be positive, got %v", r)
	}
	if c := *cfg.Drones.CommCooldown; c < 0 {
		return fmt.Errorf("comm cooldown must be non-negative, got %d", c)
	}
	if t := *cfg.Run.MaxTicks; t <= 0 {
		return fmt.Errorf("max ticks must be positive, got %d", t)
	}
	return nil
}
