package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Scenario pins the initial placement of every agent for a reproducible run.
// Without a scenario file the driver scatters agents from the seed instead.
type Scenario struct {
	Spacecraft Point   `json:"spacecraft"`
	Rovers     []Point `json:"rovers"`
	Aliens     []Point `json:"aliens,omitempty"`
	Rocks      []Point `json:"rocks,omitempty"`
}

type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Schema is the contract a scenario file must satisfy. Validation happens
// before decoding so a malformed file fails with a schema path, not a
// half-built world.
const Schema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["spacecraft", "rovers"],
  "additionalProperties": false,
  "properties": {
    "spacecraft": {"$ref": "#/$defs/point"},
    "rovers": {"type": "array", "minItems": 1, "items": {"$ref": "#/$defs/point"}},
    "aliens": {"type": "array", "items": {"$ref": "#/$defs/point"}},
    "rocks": {"type": "array", "items": {"$ref": "#/$defs/point"}}
  },
  "$defs": {
    "point": {
      "type": "object",
      "required": ["x", "y"],
      "additionalProperties": false,
      "properties": {
        "x": {"type": "integer", "minimum": 0},
        "y": {"type": "integer", "minimum": 0}
      }
    }
  }
}`

var compiled = jsonschema.MustCompileString("scenario.schema.json", Schema)

// Load reads, validates, and decodes a scenario file.
func Load(path string) (Scenario, error) {
	var sc Scenario
	raw, err := os.ReadFile(path)
	if err != nil {
		return sc, err
	}
	return Parse(raw)
}

// Parse validates and decodes scenario JSON.
func Parse(raw []byte) (Scenario, error) {
	var sc Scenario

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return sc, fmt.Errorf("scenario: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return sc, fmt.Errorf("scenario: %w", err)
	}
	if err := json.Unmarshal(raw, &sc); err != nil {
		return sc, fmt.Errorf("scenario: %w", err)
	}
	return sc, nil
}
