package service

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Vocabulary is the reference data shipped with the service.
type Vocabulary struct {
	ConstraintTypes []string `yaml:"constraint_types"`
	Flavors         []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"flavors"`
	DefaultFlavorProfile map[string]int `yaml:"default_flavor_profile"`
}

var defaultVocabulary = mustLoadVocabulary(defaultsYAML)

func mustLoadVocabulary(raw []byte) Vocabulary {
	var v Vocabulary
	if err := yaml.Unmarshal(raw, &v); err != nil {
		panic(fmt.Sprintf("invalid embedded vocabulary: %v", err))
	}
	return v
}

// DefaultVocabulary returns a copy of the embedded vocabulary.
func DefaultVocabulary() Vocabulary {
	v := defaultVocabulary
	v.ConstraintTypes = append([]string(nil), v.ConstraintTypes...)
	v.Flavors = append(v.Flavors[:0:0], v.Flavors...)
	v.DefaultFlavorProfile = DefaultFlavorProfile()
	return v
}

// DefaultFlavorProfile is used for classification when no ratings are known.
func DefaultFlavorProfile() map[string]int {
	out := make(map[string]int, len(defaultVocabulary.DefaultFlavorProfile))
	for k, v := range defaultVocabulary.DefaultFlavorProfile {
		out[k] = v
	}
	return out
}
