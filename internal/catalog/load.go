package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a content override file. Empty sections keep
// the built-in definitions.
type File struct {
	Programs []Program `yaml:"programs"`
	Guides   []Asset   `yaml:"guides"`
}

// Load builds the catalog from built-in content, replacing sections present
// in programsFile when it is set. Relative guide paths resolve against assetsDir.
func Load(programsFile, assetsDir string) (*Catalog, error) {
	programs := DefaultPrograms()
	assets := DefaultAssets(assetsDir)

	if programsFile != "" {
		data, err := os.ReadFile(programsFile)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", programsFile, err)
		}
		var f File
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("catalog: parse %s: %w", programsFile, err)
		}
		if len(f.Programs) > 0 {
			programs = f.Programs
		}
		if len(f.Guides) > 0 {
			assets = f.Guides
			for i := range assets {
				if assets[i].Kind == "" {
					assets[i].Kind = KindDocument
				}
				if !filepath.IsAbs(assets[i].Path) {
					assets[i].Path = filepath.Join(assetsDir, assets[i].Path)
				}
			}
		}
	}
	return New(programs, assets)
}
