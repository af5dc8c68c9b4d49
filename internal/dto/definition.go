// Package dto decodes loosely typed documents into domain definitions.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// DecodeDefinition turns a nested key/value document (a client update, an
// HTTP body, a redis payload) into a Definition. Absent COMPONENTS or EVENTS
// keys stay nil so callers can tell "not sent" from "sent empty". Unknown
// keys are ignored. Text is checked with Sanitize.
func DecodeDefinition(raw map[string]any) (*domain.Definition, error) {
	var def domain.Definition
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &def,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	if err := Sanitize(&def); err != nil {
		return nil, err
	}
	return &def, nil
}

// DecodeDefinitionJSON decodes a JSON document. Numbers are kept as
// json.Number so integer literals are not widened to floats.
func DecodeDefinitionJSON(data []byte) (*domain.Definition, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse definition json: %w", err)
	}
	return DecodeDefinition(raw)
}
