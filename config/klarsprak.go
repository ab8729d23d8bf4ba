package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eliassondavid/paragrafen-ai/helper"
)

// PassivePattern is one passive-voice phrase and its active rewrite.
type PassivePattern struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`
}

// KlarsprakConfig holds the plain-language post-processing rules: legal
// terms that get an inline explanation on first use, and passive phrases
// rewritten to active voice.
type KlarsprakConfig struct {
	LegalTerms      map[string]string `yaml:"legal_terms"`
	PassivePatterns []PassivePattern  `yaml:"passive_patterns"`
}

// LoadKlarsprakConfig reads the plain-language rules from a YAML file.
// Empty sections are allowed; a missing file is an error.
func LoadKlarsprakConfig(path string) (*KlarsprakConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, helper.NewError("reading klarspråk config", err)
	}

	var cfg KlarsprakConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, helper.NewError("parsing klarspråk config", err)
	}
	return &cfg, nil
}

// DefaultKlarsprakConfig is the built-in rule set used when no config
// file is given.
func DefaultKlarsprakConfig() *KlarsprakConfig {
	return &KlarsprakConfig{
		LegalTerms: map[string]string{
			"laga kraft":        "domen kan inte längre överklagas",
			"rättskraft":        "frågan är slutligt avgjord",
			"dispositiv":        "regeln kan avtalas bort",
			"tvingande":         "regeln kan inte avtalas bort",
			"prejudikat":        "vägledande domstolsavgörande",
			"remissinstans":     "myndighet eller organisation som lämnar synpunkter på ett lagförslag",
			"proposition":       "regeringens lagförslag till riksdagen",
			"kungörelse":        "offentligt tillkännagivande",
			"besvärshänvisning": "information om hur ett beslut överklagas",
		},
		PassivePatterns: []PassivePattern{
			{Pattern: "det åligger dig att", Replacement: "du måste"},
			{Pattern: "det ankommer på dig att", Replacement: "du ska"},
			{Pattern: "erfordras", Replacement: "krävs"},
			{Pattern: "erlägga", Replacement: "betala"},
			{Pattern: "tillse att", Replacement: "se till att"},
			{Pattern: "införskaffa", Replacement: "skaffa"},
		},
	}
}
