package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terrainstream/internal/heightfield"
)

//go:embed schema.json
var schemaSource string

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("terrain-config.schema.json", schemaSource)
	})
	return schema, schemaErr
}

// Validate checks the config against the embedded JSON schema, then the
// cross-field rules the schema cannot express.
func (c *Config) Validate() error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	doc, err := c.document()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	ts, err := c.TerrainSettings()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := ts.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// document renders the config the way it appears on disk, decoded into
// plain JSON values for the schema validator.
func (c *Config) document() (any, error) {
	b, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	j, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(j, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Warnings lists settings that are valid but probably unintended.
func (c *Config) Warnings() []string {
	var out []string
	levels := c.Terrain.DetailLevels
	idx := c.Terrain.ColliderLODIndex
	if idx >= 0 && idx < len(levels) && c.Terrain.ColliderGenerationDistance > levels[idx].VisibleDistanceThreshold {
		out = append(out, fmt.Sprintf(
			"collider generation distance %v exceeds the collider level's visible distance %v; colliders appear late",
			c.Terrain.ColliderGenerationDistance, levels[idx].VisibleDistanceThreshold))
	}
	if c.Terrain.Height.Noise.NormalizeMode == heightfield.Local {
		out = append(out, "local normalization produces visible seams between chunks")
	}
	return out
}
