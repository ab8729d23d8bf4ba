package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eliassondavid/paragrafen-ai/helper"
)

// PriorityEntry is the manually curated metadata for one statute. Manual
// entries outrank anything derived from the Riksdagen API.
type PriorityEntry struct {
	Kortnamn              string   `yaml:"kortnamn"`
	LegalArea             []string `yaml:"legal_area"`
	NumberingType         string   `yaml:"numbering_type"`
	NumberingTypeVerified bool     `yaml:"numbering_type_verified"`
}

type priorityMappingFile struct {
	Laws map[string]PriorityEntry `yaml:"laws"`
}

// LoadPriorityMapping reads the per-statute priority mapping, keyed by SFS
// number. An empty mapping is valid.
func LoadPriorityMapping(path string) (map[string]PriorityEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("reading priority mapping config", err)
	}

	var file priorityMappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, helper.NewError("parsing priority mapping config", err)
	}
	if file.Laws == nil {
		file.Laws = map[string]PriorityEntry{}
	}
	return file.Laws, nil
}

// DefaultPriorityMapping covers the most cited statutes.
func DefaultPriorityMapping() map[string]PriorityEntry {
	return map[string]PriorityEntry{
		"1915:218": {Kortnamn: "AvtL", LegalArea: []string{"civilrätt"}, NumberingType: "sequential", NumberingTypeVerified: true},
		"1970:994": {Kortnamn: "JB", LegalArea: []string{"civilrätt", "hyresrätt"}, NumberingType: "relative", NumberingTypeVerified: true},
		"1982:80":  {Kortnamn: "LAS", LegalArea: []string{"arbetsrätt"}, NumberingType: "sequential", NumberingTypeVerified: true},
		"1990:932": {Kortnamn: "KköpL", LegalArea: []string{"konsumenträtt"}},
		"2009:400": {Kortnamn: "OSL", LegalArea: []string{"offentlig rätt"}, NumberingType: "relative", NumberingTypeVerified: true},
		"2017:900": {Kortnamn: "FL", LegalArea: []string{"offentlig rätt"}, NumberingType: "sequential", NumberingTypeVerified: true},
	}
}
