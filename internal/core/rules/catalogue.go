// Package rules holds the CFOP/CST/state-rate tables used by the audit engine.
// The tables are data: an embedded default catalogue that a YAML file can replace.
package rules

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"audit-service/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// Catalogue is the full rule configuration of one run. It is read-only once loaded.
type Catalogue struct {
	Tolerances              Tolerances      `yaml:"tolerances" json:"tolerances"`
	SubstituteTaxpayerCFOPs []string        `yaml:"substitute_taxpayer_cfops" json:"substitute_taxpayer_cfops"`
	IndustrialSaleCFOPs     []string        `yaml:"industrial_sale_cfops" json:"industrial_sale_cfops"`
	IPICreditCFOPs          []string        `yaml:"ipi_credit_cfops" json:"ipi_credit_cfops"`
	FullCreditCFOPs         []string        `yaml:"full_credit_cfops" json:"full_credit_cfops"`
	FullCreditCSTs          []string        `yaml:"full_credit_csts" json:"full_credit_csts"`
	ConsumptionCFOPs        []string        `yaml:"consumption_cfops" json:"consumption_cfops"`
	ST                      STRules         `yaml:"st" json:"st"`
	Returns                 ReturnRules     `yaml:"returns" json:"returns"`
	Interstate              InterstateRules `yaml:"interstate" json:"interstate"`
	Summary                 SummaryRules    `yaml:"summary" json:"summary"`
}

// Tolerances are the absolute money tolerances of the arithmetic checks.
type Tolerances struct {
	ICMSCalculation    float64 `yaml:"icms_calculation" json:"icms_calculation"`
	BaseUnderstatement float64 `yaml:"base_understatement" json:"base_understatement"`
}

// STRules configures the ICMS-ST family.
type STRules struct {
	MandatoryCSTs   []string `yaml:"mandatory_csts" json:"mandatory_csts"`
	OptionalCST     string   `yaml:"optional_cst" json:"optional_cst"`
	GeneratingCFOPs []string `yaml:"generating_cfops" json:"generating_cfops"`
	ToleratedCSTs   []string `yaml:"tolerated_csts" json:"tolerated_csts"`
}

// ReturnRules configures the return-without-reversal check.
type ReturnRules struct {
	CFOPs      []string `yaml:"cfops" json:"cfops"`
	ExemptCSTs []string `yaml:"exempt_csts" json:"exempt_csts"`
}

// InterstateRules configures the interstate rate check.
type InterstateRules struct {
	CFOPPrefix string      `yaml:"cfop_prefix" json:"cfop_prefix"`
	Groups     []RateGroup `yaml:"groups" json:"groups"`
}

// RateGroup is a set of destination states sharing the same interstate rate.
type RateGroup struct {
	Name         string    `yaml:"name" json:"name"`
	NominalRate  float64   `yaml:"nominal_rate" json:"nominal_rate"`
	AllowedRates []float64 `yaml:"allowed_rates" json:"allowed_rates"`
	States       []string  `yaml:"states" json:"states"`
}

// SummaryRules configures the CFOP summary classification.
type SummaryRules struct {
	ExemptCSTs []string `yaml:"exempt_csts" json:"exempt_csts"`
}

// Default returns the embedded catalogue.
func Default() (*Catalogue, error) {
	return Parse(defaultRules)
}

// MustDefault is Default for tests and package-level wiring.
func MustDefault() *Catalogue {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load reads a catalogue from path, or the embedded default when path is empty.
func Load(path string) (*Catalogue, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo de regras %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalogue.
func Parse(data []byte) (*Catalogue, error) {
	var c Catalogue
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRegrasInvalidas, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the parts of the catalogue the engine relies on.
func (c *Catalogue) Validate() error {
	if c.Tolerances.ICMSCalculation < 0 || c.Tolerances.BaseUnderstatement < 0 {
		return fmt.Errorf("%w: tolerâncias não podem ser negativas", domain.ErrRegrasInvalidas)
	}
	for _, g := range c.Interstate.Groups {
		if len(g.States) == 0 || len(g.AllowedRates) == 0 {
			return fmt.Errorf("%w: grupo interestadual %q sem UFs ou alíquotas", domain.ErrRegrasInvalidas, g.Name)
		}
	}
	return nil
}

// Marshal encodes the catalogue back to YAML.
func (c *Catalogue) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// RateGroupFor returns the interstate group of a destination state.
func (c *Catalogue) RateGroupFor(uf string) (RateGroup, bool) {
	for _, g := range c.Interstate.Groups {
		if contains(g.States, uf) {
			return g, true
		}
	}
	return RateGroup{}, false
}

// Allows reports whether rate is one of the group's accepted rates.
func (g RateGroup) Allows(rate float64) bool {
	for _, r := range g.AllowedRates {
		if math.Abs(r-rate) < 1e-9 {
			return true
		}
	}
	return false
}

// In reports whether code is listed in set.
func In(set []string, code string) bool {
	return contains(set, code)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
