package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

// LoadRequest reads a request file and decodes it into v.
func LoadRequest(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return ParseRequest(data, path, v)
}

// ParseRequest decodes data as JSON for .json files and as YAML otherwise.
// YAML is a superset of JSON, so unknown extensions need no second attempt.
func ParseRequest(data []byte, filename string, v any) error {
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parse %s: %w", filepath.Base(filename), err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(filename), err)
	}
	return nil
}
