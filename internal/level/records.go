package level

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"toycar/internal/vec"
)

// Record is one placement entry of the level API. Name is nil when the field is
// missing or null.
type Record struct {
	Name *string `json:"name"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	Z    float32 `json:"z"`
}

// Position returns the placement point.
func (r Record) Position() vec.Vec3 { return vec.New(r.X, r.Y, r.Z) }

// NameOrEmpty returns the name, or "" for nameless records.
func (r Record) NameOrEmpty() string {
	if r.Name == nil {
		return ""
	}
	return *r.Name
}

const placementSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "name": {"type": ["string", "null"]},
      "x": {"type": "number"},
      "y": {"type": "number"},
      "z": {"type": "number"}
    }
  }
}`

const exclusionSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {"type": "string"}
}`

var (
	placements = jsonschema.MustCompileString("placements.json", placementSchema)
	exclusions = jsonschema.MustCompileString("exclusions.json", exclusionSchema)
)

func validate(schema *jsonschema.Schema, data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("level: decode: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	return nil
}

// ValidatePlacements checks a placement payload (array of records) without decoding it.
func ValidatePlacements(data []byte) error { return validate(placements, data) }

// ValidateExclusions checks an exclusion payload (array of names).
func ValidateExclusions(data []byte) error { return validate(exclusions, data) }

// DecodePlacements validates and decodes a placement payload.
func DecodePlacements(data []byte) ([]Record, error) {
	if err := ValidatePlacements(data); err != nil {
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("level: decode: %w", err)
	}
	return recs, nil
}

// DecodeExclusions validates and decodes an exclusion payload into a set.
func DecodeExclusions(data []byte) (map[string]bool, error) {
	if err := ValidateExclusions(data); err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("level: decode: %w", err)
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}
