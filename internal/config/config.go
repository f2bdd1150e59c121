package config

import (
	"errors"
	"fmt"
)

// BasicEndpoint maps a fixed endpoint name to its CSV path relative to CSVRoot.
type BasicEndpoint struct {
	Name string
	Path string
}

type Config struct {
	CSVRoot             string
	InteroperabilityDir string
	GraphsRoot          string
	BasicEndpoints      []BasicEndpoint

	// Figure size in inches; the PNG is FigureWidth*DPI by FigureHeight*DPI pixels.
	FigureWidth  float64
	FigureHeight float64
	DPI          float64

	SkipEmptyCharts bool
	LogLevel        string
	LogFile         string
}

var (
	ErrEmptyPath   = errors.New("csv and graphs roots must not be empty")
	ErrFigureSize  = errors.New("figure width, height and dpi must be positive")
	ErrNoEndpoints = errors.New("basic endpoint entries need a name and a path")
)

func Default() Config {
	return Config{
		CSVRoot:             "csv_files",
		InteroperabilityDir: "interoperability_csv",
		GraphsRoot:          "graphs",
		BasicEndpoints: []BasicEndpoint{
			{Name: "category", Path: "CategoryTests/category_metrics.csv"},
			{Name: "project", Path: "ProjectTests/project_metrics.csv"},
			{Name: "todo", Path: "TodoTests/todo_metrics.csv"},
		},
		FigureWidth:  12,
		FigureHeight: 6,
		DPI:          300,
		LogLevel:     "info",
	}
}

func (c Config) Validate() error {
	if c.CSVRoot == "" || c.GraphsRoot == "" {
		return ErrEmptyPath
	}
	if c.FigureWidth <= 0 || c.FigureHeight <= 0 || c.DPI <= 0 {
		return fmt.Errorf("%w: %gx%g at %g dpi", ErrFigureSize, c.FigureWidth, c.FigureHeight, c.DPI)
	}
	for _, e := range c.BasicEndpoints {
		if e.Name == "" || e.Path == "" {
			return ErrNoEndpoints
		}
	}
	return nil
}

// PixelSize returns the rendered image size.
func (c Config) PixelSize() (int, int) {
	return int(c.FigureWidth*c.DPI + 0.5), int(c.FigureHeight*c.DPI + 0.5)
}
