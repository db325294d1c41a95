package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"rayforce/internal/engine"
)

var ErrInvalidConfig = errors.New("invalid world config")

// Config is the JSON world configuration. Fields missing from a file keep
// their DefaultConfig values; "groundHeight": null removes the ground plane.
type Config struct {
	Gravity      [3]float32        `json:"gravity"`
	GroundHeight *float32          `json:"groundHeight"`
	MaxFrameStep float32           `json:"maxFrameStep"` // longest simulated step per frame, seconds
	Body         engine.BodyTuning `json:"body"`
}

func DefaultConfig() Config {
	ground := float32(0)
	return Config{
		Gravity:      [3]float32{0, -9.81, 0},
		GroundHeight: &ground,
		MaxFrameStep: 1.0 / 20,
		Body:         engine.DefaultBodyTuning(),
	}
}

// LoadConfig reads path and overlays it on DefaultConfig.
func LoadConfig(path string) (Config, error) {
	return loadConfig(os.ReadFile, path)
}

func loadConfig(readFile func(string) ([]byte, error), path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := readFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case !finite(c.Gravity[0]) || !finite(c.Gravity[1]) || !finite(c.Gravity[2]):
		return fmt.Errorf("%w: gravity %v is not finite", ErrInvalidConfig, c.Gravity)
	case c.GroundHeight != nil && !finite(*c.GroundHeight):
		return fmt.Errorf("%w: ground height is not finite", ErrInvalidConfig)
	case !(c.MaxFrameStep > 0):
		return fmt.Errorf("%w: maxFrameStep must be positive, got %v", ErrInvalidConfig, c.MaxFrameStep)
	case !(c.Body.DefaultMass > 0) || !finite(c.Body.DefaultMass):
		return fmt.Errorf("%w: body.defaultMass must be positive, got %v", ErrInvalidConfig, c.Body.DefaultMass)
	case c.Body.ContactOffset < 0 || c.Body.RestOffset < 0:
		return fmt.Errorf("%w: body offsets must not be negative", ErrInvalidConfig)
	case c.Body.RestOffset >= c.Body.ContactOffset:
		return fmt.Errorf("%w: body.restOffset %v must be below body.contactOffset %v", ErrInvalidConfig, c.Body.RestOffset, c.Body.ContactOffset)
	case c.Body.SleepThreshold < 0:
		return fmt.Errorf("%w: body.sleepThreshold must not be negative", ErrInvalidConfig)
	}
	return nil
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
