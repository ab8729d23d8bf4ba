package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eliassondavid/paragrafen-ai/helper"
)

type departmentMappingFile struct {
	Mappings map[string][]string `yaml:"mappings"`
}

// LoadDepartmentAreaMapping reads the mapping from issuing department to
// legal areas, used when no manual mapping covers a statute.
func LoadDepartmentAreaMapping(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("reading department mapping config", err)
	}

	var file departmentMappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, helper.NewError("parsing department mapping config", err)
	}
	if file.Mappings == nil {
		file.Mappings = map[string][]string{}
	}
	return file.Mappings, nil
}

// DefaultDepartmentAreaMapping maps department name fragments to areas.
// Matching is substring-based on the department field.
func DefaultDepartmentAreaMapping() map[string][]string {
	return map[string][]string{
		"Justitiedepartementet":                {"civilrätt", "offentlig rätt"},
		"Arbetsmarknadsdepartementet":          {"arbetsrätt"},
		"Finansdepartementet":                  {"offentlig rätt"},
		"Socialdepartementet":                  {"socialrätt"},
		"Miljödepartementet":                   {"miljörätt"},
		"Klimat- och näringslivsdepartementet": {"miljörätt"},
	}
}
