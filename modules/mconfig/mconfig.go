// Package mconfig loads threadpool configuration from TOML or YAML files.
package mconfig

import (
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	"github.com/cruldra/threadpool"
	"github.com/cruldra/threadpool/modules/mtoml"
	"github.com/cruldra/threadpool/modules/myaml"
)

// LoadFile reads a configuration file into a new Config. The format is picked
// by extension: `.toml`, `.yaml` or `.yml`.
//
// Values not present in the file are left at their zero value so that
// threadpool.Run fills in its defaults.
func LoadFile(log threadpool.LoggerInterface, path string) (*threadpool.Config, error) {
	config := &threadpool.Config{}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = mtoml.ParseFile(log, path, config)
	case ".yaml", ".yml":
		err = myaml.ParseFile(log, path, config)
	default:
		return nil, xerrors.Errorf("unsupported config format: '%s'", ext)
	}
	if err != nil {
		return nil, xerrors.Errorf("error loading config '%s': %w", path, err)
	}

	if config.Size < 0 {
		return nil, xerrors.Errorf("error loading config '%s': size must not be negative", path)
	}

	if _, err := threadpool.ParseLevel(config.LogLevel); err != nil {
		return nil, xerrors.Errorf("error loading config '%s': %w", path, err)
	}

	return config, nil
}
