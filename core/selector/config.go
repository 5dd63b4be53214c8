package selector

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines the point budgets used when scoring ambulances. The default
// values keep the historical 30/35/20/15 split.
type Config struct {
	DistanceMax  float64 `json:"distance_max" yaml:"distance_max"`
	EquipmentMax float64 `json:"equipment_max" yaml:"equipment_max"`
	SpecialtyMax float64 `json:"specialty_max" yaml:"specialty_max"`
	ReadinessMax float64 `json:"readiness_max" yaml:"readiness_max"`

	// CriticalBonus is added when severity is critical and the unit is within
	// CriticalBonusRadiusKM of the caller.
	CriticalBonus         float64 `json:"critical_bonus" yaml:"critical_bonus"`
	CriticalBonusRadiusKM float64 `json:"critical_bonus_radius_km" yaml:"critical_bonus_radius_km"`

	// Distance band edges in km. Units closer than NearKM get the full
	// distance budget, then MidKM and FarKM mark the lower bands.
	NearKM float64 `json:"near_km" yaml:"near_km"`
	MidKM  float64 `json:"mid_km" yaml:"mid_km"`
	FarKM  float64 `json:"far_km" yaml:"far_km"`
}

// SetDefaults applies the historical scoring budgets.
func (c *Config) SetDefaults() {
	if c.DistanceMax == 0 {
		c.DistanceMax = 30
	}
	if c.EquipmentMax == 0 {
		c.EquipmentMax = 35
	}
	if c.SpecialtyMax == 0 {
		c.SpecialtyMax = 20
	}
	if c.ReadinessMax == 0 {
		c.ReadinessMax = 15
	}
	if c.CriticalBonus == 0 {
		c.CriticalBonus = 10
	}
	if c.CriticalBonusRadiusKM == 0 {
		c.CriticalBonusRadiusKM = 3
	}
	if c.NearKM == 0 {
		c.NearKM = 2
	}
	if c.MidKM == 0 {
		c.MidKM = 5
	}
	if c.FarKM == 0 {
		c.FarKM = 10
	}
}

// Validate checks band ordering.
func (c Config) Validate() error {
	if c.NearKM >= c.MidKM || c.MidKM >= c.FarKM {
		return fmt.Errorf("distance bands must be increasing: %v/%v/%v", c.NearKM, c.MidKM, c.FarKM)
	}
	return nil
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err != nil {
		return Config{}, err
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

// DecodeConfig reads from r to decode a Config.
func DecodeConfig(r io.Reader, format string) (Config, error) {
	var cfg Config
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported format: %s", format)
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}
