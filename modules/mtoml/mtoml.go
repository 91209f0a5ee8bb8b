package mtoml

import (
	"bytes"
	"os"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/xerrors"

	"github.com/cruldra/threadpool"
)

// ParseFile is a shortcut from parsing a source file as TOML. Keys that don't
// map to a field of v are an error.
func ParseFile(log threadpool.LoggerInterface, source string, v interface{}) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return xerrors.Errorf("error reading file: %w", err)
	}

	err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(v)
	if err != nil {
		return xerrors.Errorf("error unmarshaling TOML: %w", err)
	}

	log.Debugf("mtoml: Parsed file: %s", source)
	return nil
}
