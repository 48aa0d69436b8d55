// internal/config/load.go
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

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file.
// .json / .jsonc files are accepted too (the field agent's original
// config.json): comments and trailing commas are stripped before decoding.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return Parse(raw, filepath.Ext(path))
}

// Parse decodes config bytes. ext selects JSONC pre-processing (".json", ".jsonc").
func Parse(raw []byte, ext string) (*Config, error) {
	var cfg Config

	switch strings.ToLower(ext) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(raw), &cfg); err != nil {
			return nil, fmt.Errorf("config: decode json: %w", err)
		}
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	// empty document => zero config; Validate reports what is missing
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	return &cfg, nil
}
