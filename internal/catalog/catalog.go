// Package catalog holds the read-only workout programs and downloadable
// guides served by the bot.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrNotFound is returned for unknown program or asset keys.
	ErrNotFound = errors.New("catalog: not found")
	// ErrAssetUnavailable means the asset is known but its file is missing.
	ErrAssetUnavailable = errors.New("catalog: asset unavailable")
)

// Exercise is one line of a workout day.
type Exercise struct {
	Name string `yaml:"name"`
	Sets int    `yaml:"sets"`
	Reps string `yaml:"reps"`
	Note string `yaml:"note,omitempty"`
}

// WorkoutDay is an ordered, non-empty list of exercises.
type WorkoutDay struct {
	Title     string     `yaml:"title"`
	Exercises []Exercise `yaml:"exercises"`
}

// Program is a named multi-day routine. WeeklyDays is descriptive only and
// is not checked against len(Days).
type Program struct {
	Key         string       `yaml:"key"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	WeeklyDays  int          `yaml:"weekly_days"`
	Days        []WorkoutDay `yaml:"days"`
}

// AssetKind selects how a file is uploaded.
type AssetKind string

const (
	KindDocument AssetKind = "document"
	KindVideo    AssetKind = "video"
)

// Asset is a guide file resolved on disk at delivery time.
type Asset struct {
	Key     string    `yaml:"key"`
	Label   string    `yaml:"label"`
	Kind    AssetKind `yaml:"kind"`
	Path    string    `yaml:"path"`
	Caption string    `yaml:"caption,omitempty"`
}

// Delivery tells the transport to upload Path as Kind.
type Delivery struct {
	Kind    AssetKind
	Path    string
	Caption string
}

// Catalog indexes programs and assets by key. It is immutable after New.
type Catalog struct {
	programs []Program
	byKey    map[string]int
	assets   []Asset
	byAsset  map[string]int
}

// New validates the definitions and builds a Catalog. Order is preserved.
func New(programs []Program, assets []Asset) (*Catalog, error) {
	c := &Catalog{
		byKey:   make(map[string]int, len(programs)),
		byAsset: make(map[string]int, len(assets)),
	}
	for _, p := range programs {
		if err := validateProgram(p); err != nil {
			return nil, err
		}
		if _, dup := c.byKey[p.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate program key %q", p.Key)
		}
		c.byKey[p.Key] = len(c.programs)
		c.programs = append(c.programs, p)
	}
	for _, a := range assets {
		if err := validateAsset(a); err != nil {
			return nil, err
		}
		if _, dup := c.byAsset[a.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate asset key %q", a.Key)
		}
		c.byAsset[a.Key] = len(c.assets)
		c.assets = append(c.assets, a)
	}
	return c, nil
}

// tokenSafe keys must not break the ':'-separated callback grammar.
func tokenSafe(key string) bool {
	return key != "" && !strings.ContainsAny(key, ": \t\n")
}

func validateProgram(p Program) error {
	switch {
	case !tokenSafe(p.Key):
		return fmt.Errorf("catalog: invalid program key %q", p.Key)
	case p.Title == "":
		return fmt.Errorf("catalog: program %q has no title", p.Key)
	case p.WeeklyDays <= 0:
		return fmt.Errorf("catalog: program %q: weekly_days must be > 0", p.Key)
	case len(p.Days) == 0:
		return fmt.Errorf("catalog: program %q has no days", p.Key)
	}
	for i, d := range p.Days {
		if len(d.Exercises) == 0 {
			return fmt.Errorf("catalog: program %q day %d has no exercises", p.Key, i)
		}
		for _, e := range d.Exercises {
			if e.Name == "" || e.Sets <= 0 {
				return fmt.Errorf("catalog: program %q day %d: exercise %q needs a name and sets > 0", p.Key, i, e.Name)
			}
		}
	}
	return nil
}

func validateAsset(a Asset) error {
	switch {
	case !tokenSafe(a.Key):
		return fmt.Errorf("catalog: invalid asset key %q", a.Key)
	case a.Kind != KindDocument && a.Kind != KindVideo:
		return fmt.Errorf("catalog: asset %q: unknown kind %q", a.Key, a.Kind)
	case a.Path == "":
		return fmt.Errorf("catalog: asset %q has no path", a.Key)
	}
	return nil
}

// GetProgram returns the program registered under key.
func (c *Catalog) GetProgram(key string) (Program, error) {
	i, ok := c.byKey[key]
	if !ok {
		return Program{}, fmt.Errorf("program %q: %w", key, ErrNotFound)
	}
	return c.programs[i], nil
}

// ListPrograms returns programs in registration order.
func (c *Catalog) ListPrograms() []Program {
	return append([]Program(nil), c.programs...)
}

// GetAsset returns the asset registered under key.
func (c *Catalog) GetAsset(key string) (Asset, error) {
	i, ok := c.byAsset[key]
	if !ok {
		return Asset{}, fmt.Errorf("asset %q: %w", key, ErrNotFound)
	}
	return c.assets[i], nil
}

// ListAssets returns assets in registration order.
func (c *Catalog) ListAssets() []Asset {
	return append([]Asset(nil), c.assets...)
}

// Deliver checks the asset file at call time.
func Deliver(a Asset) (Delivery, error) {
	info, err := os.Stat(a.Path)
	if err != nil || !info.Mode().IsRegular() {
		return Delivery{}, fmt.Errorf("asset %q at %s: %w", a.Key, a.Path, ErrAssetUnavailable)
	}
	return Delivery{Kind: a.Kind, Path: a.Path, Caption: a.Caption}, nil
}
