package datagen

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile describes one generation run.
type Profile struct {
	Samples       int    `yaml:"samples" json:"samples"`
	Seed          int64  `yaml:"seed" json:"seed"`
	Scale         int    `yaml:"scale" json:"scale"`
	SkipExpansion bool   `yaml:"skip_expansion" json:"skip_expansion"`
	OutputDir     string `yaml:"output_dir" json:"output_dir"`
	OriginalFile  string `yaml:"original_file" json:"original_file"`
	SyntheticFile string `yaml:"synthetic_file" json:"synthetic_file"`
}

func DefaultProfile() Profile {
	return Profile{
		Samples:       1000,
		Seed:          42,
		Scale:         10,
		OutputDir:     ".",
		OriginalFile:  "original_healthcare_data.csv",
		SyntheticFile: "synthetic_healthcare_data.csv",
	}
}

// LoadProfile overlays the YAML file at path on DefaultProfile. An empty
// path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	profile := DefaultProfile()
	if path == "" {
		return profile, nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return profile, err
	}
	if err := yaml.Unmarshal(content, &profile); err != nil {
		return Profile{}, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return profile, profile.Validate()
}

func (p Profile) Validate() error {
	if p.Samples <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleCount, p.Samples)
	}
	if !p.SkipExpansion && p.Scale <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidScale, p.Scale)
	}
	if p.OriginalFile == "" || p.SyntheticFile == "" {
		return errors.New("output file names are required")
	}
	return nil
}

func (p Profile) OriginalPath() string {
	return filepath.Join(p.OutputDir, p.OriginalFile)
}

func (p Profile) SyntheticPath() string {
	return filepath.Join(p.OutputDir, p.SyntheticFile)
}
