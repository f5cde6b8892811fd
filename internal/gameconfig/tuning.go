package gameconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// TuningPath is the default tuning file, relative to the process working directory.
const TuningPath = "config/game.yaml"

// Tuning holds gameplay constants. Persisted as YAML so level designers can adjust
// thresholds without a rebuild.
type Tuning struct {
	CatalogPath string `yaml:"catalog_path"`

	Pickup    Pickup    `yaml:"pickup"`
	Obstacles Obstacles `yaml:"obstacles"`
	Signage   Signage   `yaml:"signage"`

	CollectiblePrefix string `yaml:"collectible_prefix"`
	// BodyEuler is the fixed orientation (radians, XYZ) given to every placed block.
	BodyEuler [3]float32 `yaml:"body_euler"`
}

// Pickup controls the gate, proximity detection and scoring.
type Pickup struct {
	GateDelay      time.Duration `yaml:"gate_delay"`
	Radius         float32       `yaml:"radius"`
	SpeedThreshold float32       `yaml:"speed_threshold"`
	SpinRate       float32       `yaml:"spin_rate"`
	WinPoints      int           `yaml:"win_points"`
}

// Obstacles controls the difficulty adjustment applied on each pickup and the periodic waves.
type Obstacles struct {
	ReductionMin float64       `yaml:"reduction_min"`
	ReductionMax float64       `yaml:"reduction_max"`
	WaveInterval time.Duration `yaml:"wave_interval"`
	WaveSize     int           `yaml:"wave_size"`
	WaveExtent   float32       `yaml:"wave_extent"`
}

// Signage describes the decal applied to display surfaces.
type Signage struct {
	Surface     string  `yaml:"surface"`
	Texture     string  `yaml:"texture"`
	Anisotropy  int     `yaml:"anisotropy"`
	RotationDeg float64 `yaml:"rotation_deg"`
	FlipY       bool    `yaml:"flip_y"`
}

// Default returns the tuning the game ships with.
func Default() Tuning {
	return Tuning{
		CatalogPath: "assets/catalog.yaml",
		Pickup: Pickup{
			GateDelay:      2 * time.Second,
			Radius:         1.2,
			SpeedThreshold: 0.5,
			SpinRate:       1.5,
			WinPoints:      14,
		},
		Obstacles: Obstacles{
			ReductionMin: 0.2,
			ReductionMax: 0.3,
			WaveInterval: 20 * time.Second,
			WaveSize:     6,
			WaveExtent:   20,
		},
		Signage: Signage{
			Surface:     "Cube",
			Texture:     "textures/signage/decal.png",
			Anisotropy:  16,
			RotationDeg: 0,
			FlipY:       false,
		},
		CollectiblePrefix: "coin",
	}
}

// Load reads tuning from path (TuningPath when empty). A missing file yields Default()
// without creating one; a malformed file is an error. Zero fields keep their defaults.
func Load(path string) (Tuning, error) {
	if path == "" {
		path = TuningPath
	}
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return t, fmt.Errorf("gameconfig: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return Default(), fmt.Errorf("gameconfig: %s: %w", filepath.Base(path), err)
	}
	if err := t.Validate(); err != nil {
		return Default(), err
	}
	return t, nil
}

// Save writes tuning to path, creating the directory if needed.
func Save(path string, t Tuning) error {
	if path == "" {
		path = TuningPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(t)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects values the progress loop cannot work with.
func (t Tuning) Validate() error {
	switch {
	case t.Pickup.Radius <= 0:
		return fmt.Errorf("gameconfig: pickup.radius must be positive")
	case t.Pickup.WinPoints <= 0:
		return fmt.Errorf("gameconfig: pickup.win_points must be positive")
	case t.Pickup.GateDelay < 0:
		return fmt.Errorf("gameconfig: pickup.gate_delay must not be negative")
	case t.Obstacles.ReductionMin < 0 || t.Obstacles.ReductionMax > 1 || t.Obstacles.ReductionMin > t.Obstacles.ReductionMax:
		return fmt.Errorf("gameconfig: obstacles reduction range [%v, %v] is invalid", t.Obstacles.ReductionMin, t.Obstacles.ReductionMax)
	case t.CollectiblePrefix == "":
		return fmt.Errorf("gameconfig: collectible_prefix is empty")
	}
	return nil
}
