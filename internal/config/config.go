package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/plotline/plotline/internal/engine"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data/plots"`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Plot geometry handed to every new plot.
	DomainBegin  float64 `envconfig:"DOMAIN_BEGIN" default:"-100"`
	DomainEnd    float64 `envconfig:"DOMAIN_END" default:"100"`
	DomainStep   float64 `envconfig:"DOMAIN_STEP" default:"0.1"`
	InitialScale float64 `envconfig:"INITIAL_SCALE" default:"20"`
	PaneWidth    float64 `envconfig:"PANE_WIDTH" default:"400"`
	PaneHeight   float64 `envconfig:"PANE_HEIGHT" default:"400"`
	MaxGraphs    int     `envconfig:"MAX_GRAPHS" default:"6"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the plot geometry.
func (c *Config) Validate() error {
	switch {
	case !(c.DomainStep > 0):
		return fmt.Errorf("DOMAIN_STEP must be positive, got %g", c.DomainStep)
	case !(c.DomainBegin < c.DomainEnd):
		return fmt.Errorf("DOMAIN_BEGIN (%g) must be below DOMAIN_END (%g)", c.DomainBegin, c.DomainEnd)
	case !(c.InitialScale > 0):
		return fmt.Errorf("INITIAL_SCALE must be positive, got %g", c.InitialScale)
	case !(c.PaneWidth > 0) || !(c.PaneHeight > 0):
		return fmt.Errorf("pane must be positive, got %gx%g", c.PaneWidth, c.PaneHeight)
	case c.MaxGraphs < 1:
		return fmt.Errorf("MAX_GRAPHS must be at least 1, got %d", c.MaxGraphs)
	case engine.SampleCount(c.DomainBegin, c.DomainEnd, c.DomainStep) > engine.MaxSamples:
		return fmt.Errorf("DOMAIN_* spans more than %d samples", engine.MaxSamples)
	}
	return nil
}

// PlotOptions returns the values injected into engine.NewPlot. The origin
// starts at the centre of the pane.
func (c *Config) PlotOptions() engine.PlotOptions {
	return engine.PlotOptions{
		Domain: engine.Domain{
			Begin: c.DomainBegin,
			End:   c.DomainEnd,
			Step:  c.DomainStep,
		},
		Viewport: engine.Viewport{
			Scale:   c.InitialScale,
			CenterX: c.PaneWidth / 2,
			CenterY: c.PaneHeight / 2,
			Width:   c.PaneWidth,
			Height:  c.PaneHeight,
		},
		MaxGraphs: c.MaxGraphs,
	}
}

// Origins splits ALLOWED_ORIGINS.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
