package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/tendril/internal/component"
	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/internal/runtime"
	"github.com/aretw0/tendril/pkg/adapters/sim"
	"github.com/aretw0/tendril/pkg/domain"
	"gopkg.in/yaml.v3"
)

// LoadDefinitionFile reads a definition document. Files ending in .yaml or
// .yml are read as YAML, anything else as JSON.
func LoadDefinitionFile(path string) (*domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
		return dto.DecodeDefinition(raw)
	default:
		return dto.DecodeDefinitionJSON(data)
	}
}

// ValidateDefinition resolves def against simulated drivers, so every
// component kind can be built without hardware. The returned error joins
// every problem found.
func ValidateDefinition(def *domain.Definition) error {
	factory := component.NewFactory(component.Deps{
		GPIO:  sim.NewGPIO(),
		ADC:   sim.NewADC(),
		Video: component.NewPlayer(sim.NewMedia(), component.VideoCooldown),
		Audio: component.NewPlayer(sim.NewMedia(), component.AudioCooldown),
	})
	_, _, err := runtime.NewResolver(factory).Resolve(def)
	return err
}

// Validate loads and validates the file at path, printing a summary.
func Validate(path string) error {
	def, err := LoadDefinitionFile(path)
	if err != nil {
		return err
	}
	if err := ValidateDefinition(def); err != nil {
		return err
	}
	printSystemMessage("%d components, %d events resolved.", def.Components.Len(), len(def.Events))
	return nil
}
