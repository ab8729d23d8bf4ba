package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eliassondavid/paragrafen-ai/helper"
)

// ExcludedArea is one legally out-of-scope area. Queries matching its
// keywords, and chunks from its statutes, are refused with the referral
// message instead of being answered.
type ExcludedArea struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Keywords    []string `yaml:"keywords"`
	SfsPatterns []string `yaml:"sfs_patterns"`
	Message     string   `yaml:"message"`
}

type excludedAreasFile struct {
	ExcludedAreas []ExcludedArea `yaml:"excluded_areas"`
}

// LoadExcludedAreas reads the excluded-areas list from a YAML file.
func LoadExcludedAreas(path string) ([]ExcludedArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("reading excluded areas config", err)
	}

	var file excludedAreasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, helper.NewError("parsing excluded areas config", err)
	}
	if len(file.ExcludedAreas) == 0 {
		return nil, helper.NewError("validating excluded areas config", fmt.Errorf("no excluded areas defined in %v", path))
	}
	return file.ExcludedAreas, nil
}

// MustLoadExcludedAreas loads the configured list and falls back to the
// built-in defaults on any failure. Exclusion is safety-critical: a broken
// config must neither bypass blocking nor take the service down.
func MustLoadExcludedAreas(path string, logger *slog.Logger) []ExcludedArea {
	if logger == nil {
		logger = slog.Default()
	}
	areas, err := LoadExcludedAreas(path)
	if err != nil {
		logger.Warn("Falling back to built-in excluded areas", "path", path, "error", err)
		return DefaultExcludedAreas()
	}
	return areas
}

// DefaultExcludedAreas is the built-in fallback exclusion list.
func DefaultExcludedAreas() []ExcludedArea {
	return []ExcludedArea{
		{
			ID:          "straffrätt",
			Label:       "Straffrätt",
			Keywords:    []string{"brott", "straff", "åtal", "stöld", "misshandel", "rån", "narkotika", "häktad", "fängelse"},
			SfsPatterns: []string{"1962:700", "2010:1408"},
			Message:     "Denna tjänst täcker inte straffrättsliga frågor. Kontakta en advokat eller rättshjälpen.",
		},
		{
			ID:          "asyl",
			Label:       "Asylrätt och migration",
			Keywords:    []string{"asyl", "asylansökan", "uppehållstillstånd", "utvisning", "flykting", "migrationsverket"},
			SfsPatterns: []string{"2005:716", "2016:752"},
			Message:     "Asylrättsliga frågor kräver juridiskt ombud. Kontakta Advokatjouren eller Rådgivningsbyrån för asylsökande.",
		},
		{
			ID:          "skatterätt",
			Label:       "Skatterätt",
			Keywords:    []string{"skatt", "moms", "deklaration", "skatteavdrag", "inkomstskatt", "skatteverket"},
			SfsPatterns: []string{"1999:1229"},
			Message:     "För skattefrågor, kontakta Skatteverket eller en skatterådgivare.",
		},
		{
			ID:          "vbu",
			Label:       "Vårdnad, boende och umgänge",
			Keywords:    []string{"vårdnad", "vårdnadstvist", "umgänge", "umgängesrätt"},
			SfsPatterns: []string{"1949:381_kap6"},
			Message:     "Tvister om vårdnad, boende och umgänge kräver juridiskt ombud. Kontakta familjerätten i din kommun.",
		},
	}
}
