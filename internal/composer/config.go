package composer

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/cityscope/cityscope-cli/internal/model"
)

// Config carries the tunable parts of index composition: per-index target
// overrides and the well-being blend weights. Zero value means "use the
// definition table and an equal-weight blend".
type Config struct {
	// Targets overrides the definition-table target per index id.
	Targets map[model.IndexID]float64 `yaml:"targets"`

	// WellBeingWeights sets the hwi blend weight per contributing index.
	// The weighting formula is a deliberately open parameter; absent ids
	// get weight 1.
	WellBeingWeights map[model.IndexID]float64 `yaml:"well_being_weights"`
}

// LoadConfig reads composition overrides from a YAML file. A missing path
// returns the zero config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, eris.Wrap(err, "composer: read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrap(err, "composer: parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects overrides that reference identifiers outside the closed
// index set, non-positive targets, and targets for ceiling-style indices,
// whose band thresholds are fixed by the inversion formulas.
func (c Config) Validate() error {
	for id, target := range c.Targets {
		def, ok := model.LookupIndex(id)
		if !ok {
			return eris.Errorf("composer: target override for unknown index %q", id)
		}
		if def.Directionality == model.LowerIsBetter {
			return eris.Errorf("composer: index %q has a fixed ceiling target, override not supported", id)
		}
		if target <= 0 {
			return eris.Errorf("composer: target override for %q must be positive, got %v", id, target)
		}
	}
	for id, w := range c.WellBeingWeights {
		if _, ok := model.LookupIndex(id); !ok {
			return eris.Errorf("composer: well-being weight for unknown index %q", id)
		}
		if id == model.IndexHWI {
			return eris.New("composer: hwi cannot weight itself")
		}
		if w < 0 {
			return eris.Errorf("composer: well-being weight for %q must be non-negative, got %v", id, w)
		}
	}
	return nil
}

func (c Config) targetFor(def model.IndexDefinition) float64 {
	if t, ok := c.Targets[def.ID]; ok {
		return t
	}
	return def.Target
}

func (c Config) wellBeingWeight(id model.IndexID) float64 {
	if w, ok := c.WellBeingWeights[id]; ok {
		return w
	}
	return 1
}
