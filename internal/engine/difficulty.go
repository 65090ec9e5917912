package engine

import (
	"fmt"
	"strings"
)

// Difficulty names one of the fixed board presets.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Expert       Difficulty = "expert"
	Custom       Difficulty = "custom"
)

// Preset is the geometry a difficulty maps to.
type Preset struct {
	Rows  int
	Cols  int
	Mines int
}

var presets = map[Difficulty]Preset{
	Beginner:     {Rows: 9, Cols: 9, Mines: 10},
	Intermediate: {Rows: 16, Cols: 16, Mines: 40},
	Expert:       {Rows: 16, Cols: 30, Mines: 99},
}

// Difficulties returns the selectable presets, easiest first.
func Difficulties() []Difficulty {
	return []Difficulty{Beginner, Intermediate, Expert}
}

// PresetFor returns the geometry for d.
func PresetFor(d Difficulty) (Preset, error) {
	p, ok := presets[d]
	if !ok {
		return Preset{}, fmt.Errorf("%w: unknown difficulty %q", ErrConfiguration, d)
	}
	return p, nil
}

// ParseDifficulty accepts a preset name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if _, err := PresetFor(d); err != nil {
		return "", err
	}
	return d, nil
}

func (p Preset) validate() error {
	if p.Rows < 1 || p.Cols < 1 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrConfiguration, p.Rows, p.Cols)
	}
	if p.Mines < 0 {
		return fmt.Errorf("%w: negative mine count %d", ErrConfiguration, p.Mines)
	}
	if p.Mines >= p.Rows*p.Cols {
		return fmt.Errorf("%w: %d mines do not fit a %dx%d board", ErrConfiguration, p.Mines, p.Rows, p.Cols)
	}
	return nil
}
