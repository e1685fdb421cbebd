package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/signalsfoundry/orrery/kb"
	"github.com/signalsfoundry/orrery/model"
)

var (
	// ErrEmptyTable is returned for a scene table without rows.
	ErrEmptyTable = errors.New("scene table has no rows")
	// ErrInvalidRow is returned for a row with no variant, a missing name
	// or out-of-range orbit parameters.
	ErrInvalidRow = errors.New("invalid scene table row")
	// ErrUnknownHost marks a host name that no earlier row registered. It
	// also matches kb.ErrDanglingHostReference.
	ErrUnknownHost = fmt.Errorf("unknown host: %w", kb.ErrDanglingHostReference)
)

// LoadSceneTable decodes a JSON scene table from r and validates it.
func LoadSceneTable(r io.Reader) (*model.SceneTable, error) {
	var table model.SceneTable
	dec := json.NewDecoder(r)
	if err := dec.Decode(&table); err != nil {
		return nil, fmt.Errorf("LoadSceneTable: decode failed: %w", err)
	}
	if err := ValidateTable(table); err != nil {
		return nil, fmt.Errorf("LoadSceneTable: %w", err)
	}
	return &table, nil
}

// LoadSceneFile opens path and calls LoadSceneTable.
func LoadSceneFile(path string) (*model.SceneTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("LoadSceneFile: %w", err)
	}
	defer f.Close()
	return LoadSceneTable(f)
}

// ValidateTable checks a table without building it: every row carries one
// variant and a unique name, orbits are non-negative, and every host was
// declared by an earlier row of the right kind.
func ValidateTable(t model.SceneTable) error {
	if len(t.Rows) == 0 {
		return ErrEmptyTable
	}

	stars := map[string]bool{}
	planets := map[string]bool{}
	seen := map[string]bool{}

	for i, row := range t.Rows {
		name := row.Name()
		if row.Kind() == model.KindUnknown || name == "" {
			return fmt.Errorf("row %d: %w", i, ErrInvalidRow)
		}
		if seen[name] {
			return fmt.Errorf("row %d: %q: %w", i, name, kb.ErrBodyExists)
		}
		seen[name] = true

		switch {
		case row.Star != nil:
			if err := checkOrbit(row.Star.Dist, row.Star.F1, row.Star.F2); err != nil {
				return fmt.Errorf("row %d: star %q: %w", i, name, err)
			}
			stars[name] = true
		case row.Planet != nil:
			if err := checkOrbit(row.Planet.Dist, row.Planet.F1, row.Planet.F2); err != nil {
				return fmt.Errorf("row %d: planet %q: %w", i, name, err)
			}
			if h := row.Planet.Host; h != "" && !stars[h] {
				return fmt.Errorf("row %d: planet %q: star %q: %w", i, name, h, ErrUnknownHost)
			}
			planets[name] = true
		case row.Moon != nil:
			if err := checkOrbit(row.Moon.Dist, row.Moon.F1, row.Moon.F2); err != nil {
				return fmt.Errorf("row %d: moon %q: %w", i, name, err)
			}
			if !planets[row.Moon.Host] {
				return fmt.Errorf("row %d: moon %q: planet %q: %w", i, name, row.Moon.Host, ErrUnknownHost)
			}
		}
	}

	if b := t.Belt; b != nil {
		if !planets[b.Host] {
			return fmt.Errorf("belt: planet %q: %w", b.Host, ErrUnknownHost)
		}
		if b.Count < 0 || b.InnerRadius < 0 || b.OuterRadius < b.InnerRadius {
			return fmt.Errorf("belt: %w", ErrInvalidRow)
		}
	}
	return nil
}

func checkOrbit(dist, f1, f2 float64) error {
	if dist < 0 || f1 < 0 || f2 < 0 {
		return ErrInvalidRow
	}
	return nil
}
