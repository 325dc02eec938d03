// Package config loads and layers the extractor's settings: CLI flags over
// a key=value config file.
package config

import (
	"github.com/joho/godotenv"

	"github.com/viant/somix-extract/internal/xerrors"
)

// Settings is the resolved configuration driving one extraction run.
type Settings struct {
	BasePath      string
	OutputPath    string
	LogJSON       bool
	MaxIterations int
}

// DefaultMaxIterations mirrors fixpoint.MaxIterations; kept here too so
// config has no dependency on the fixpoint package just to default a flag.
const DefaultMaxIterations = 5

// LoadFile reads a key=value config file recognizing "base_path" and
// "output_path". An empty path is not an error: config files are optional,
// flags and the interactive prompt can still supply base_path.
func LoadFile(path string) (*Settings, error) {
	if path == "" {
		return &Settings{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, xerrors.IO(path, err)
	}
	return &Settings{
		BasePath:   values["base_path"],
		OutputPath: values["output_path"],
	}, nil
}

// Merge overlays override onto s, treating override's non-zero fields as
// higher priority: flags win over config file values.
func (s Settings) Merge(override Settings) Settings {
	if override.BasePath != "" {
		s.BasePath = override.BasePath
	}
	if override.OutputPath != "" {
		s.OutputPath = override.OutputPath
	}
	if override.LogJSON {
		s.LogJSON = override.LogJSON
	}
	if override.MaxIterations != 0 {
		s.MaxIterations = override.MaxIterations
	}
	if s.MaxIterations == 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	return s
}
