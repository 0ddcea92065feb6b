package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Catalog is the loaded, read-only set of definitions for a session.
type Catalog struct {
	Aircraft []AircraftDef
	Upgrades []UpgradeDef
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func entryValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Load reads both catalog sources. The returned catalog is never nil: a
// missing or malformed source leaves its collection empty and is reported
// through the returned error, which callers treat as a warning.
func Load(aircraftPath, upgradesPath string) (*Catalog, error) {
	c := &Catalog{}
	var errs []error
	if aircraftPath != "" {
		defs, err := loadFile(aircraftPath, ParseAircraft)
		c.Aircraft = defs
		if err != nil {
			errs = append(errs, err)
		}
	}
	if upgradesPath != "" {
		defs, err := loadFile(upgradesPath, ParseUpgrades)
		c.Upgrades = defs
		if err != nil {
			errs = append(errs, err)
		}
	}
	return c, errors.Join(errs...)
}

func loadFile[T any](path string, parse func([]byte, string) ([]T, error)) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	defs, err := parse(data, formatOf(path))
	if err != nil {
		return defs, fmt.Errorf("catalog %s: %w", path, err)
	}
	return defs, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

// ParseAircraft decodes an aircraft collection. Entries that fail to decode
// or validate are dropped and reported in the returned error.
func ParseAircraft(data []byte, format string) ([]AircraftDef, error) {
	return parseEntries(data, format, func(a *AircraftDef) {})
}

// ParseUpgrades decodes an upgrade collection. A zero maxPurchases is read
// as a single purchase.
func ParseUpgrades(data []byte, format string) ([]UpgradeDef, error) {
	return parseEntries(data, format, func(u *UpgradeDef) {
		if u.MaxPurchases == 0 {
			u.MaxPurchases = 1
		}
	})
}

func parseEntries[T any](data []byte, format string, fix func(*T)) ([]T, error) {
	decoders, err := splitEntries(data, format)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(decoders))
	var errs []error
	for i, decode := range decoders {
		var def T
		if err := decode(&def); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		fix(&def)
		if err := entryValidator().Struct(def); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		out = append(out, def)
	}
	return out, errors.Join(errs...)
}

// splitEntries returns one decoder per array element so a single bad entry
// does not poison the whole collection.
func splitEntries(data []byte, format string) ([]func(any) error, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("empty source")
	}
	if format == "yaml" {
		var nodes []yaml.Node
		if err := yaml.Unmarshal(data, &nodes); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		out := make([]func(any) error, len(nodes))
		for i := range nodes {
			n := &nodes[i]
			out[i] = func(v any) error { return n.Decode(v) }
		}
		return out, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	out := make([]func(any) error, len(raws))
	for i := range raws {
		raw := raws[i]
		out[i] = func(v any) error { return json.Unmarshal(raw, v) }
	}
	return out, nil
}

// AircraftByID looks up an aircraft definition.
func (c *Catalog) AircraftByID(id string) (AircraftDef, bool) {
	for _, a := range c.Aircraft {
		if a.ID == id {
			return a, true
		}
	}
	return AircraftDef{}, false
}

// UpgradeByID looks up an upgrade definition.
func (c *Catalog) UpgradeByID(id string) (UpgradeDef, bool) {
	for _, u := range c.Upgrades {
		if u.ID == id {
			return u, true
		}
	}
	return UpgradeDef{}, false
}
