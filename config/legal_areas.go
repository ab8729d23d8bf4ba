package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eliassondavid/paragrafen-ai/helper"
)

// LegalArea is one entry of the legal-area taxonomy chunks are tagged with.
type LegalArea struct {
	ID       string   `yaml:"id"`
	Aliases  []string `yaml:"aliases"`
	Excluded bool     `yaml:"excluded"`
}

type legalAreasFile struct {
	Areas []LegalArea `yaml:"areas"`
}

// LoadLegalAreas reads the legal-area taxonomy from a YAML file. Unlike the
// exclusion list this is not safety-critical, so a broken file is a startup
// error rather than a silent fallback.
func LoadLegalAreas(path string) ([]LegalArea, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("reading legal areas config", err)
	}

	var file legalAreasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, helper.NewError("parsing legal areas config", err)
	}
	if len(file.Areas) == 0 {
		return nil, helper.NewError("validating legal areas config", fmt.Errorf("no areas defined in %v", path))
	}
	return file.Areas, nil
}

// DefaultLegalAreas is the taxonomy used when no config file is given.
func DefaultLegalAreas() []LegalArea {
	return []LegalArea{
		{ID: "offentlig rätt", Aliases: []string{"förvaltningsrätt", "offentlighet"}},
		{ID: "civilrätt", Aliases: []string{"förmögenhetsrätt", "avtalsrätt"}},
		{ID: "arbetsrätt", Aliases: []string{"anställningsskydd"}},
		{ID: "hyresrätt", Aliases: []string{"bostadsrätt", "boenderätt"}},
		{ID: "konsumenträtt", Aliases: []string{"konsumentskydd"}},
		{ID: "socialrätt", Aliases: []string{"socialförsäkring"}},
		{ID: "miljörätt", Aliases: []string{"miljöskydd"}},
		{ID: "straffrätt", Aliases: []string{"kriminalrätt"}, Excluded: true},
		{ID: "skatterätt", Aliases: []string{"beskattning"}, Excluded: true},
		{ID: "okänt", Aliases: nil},
	}
}
