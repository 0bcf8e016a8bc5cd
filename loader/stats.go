package loader

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nathoo/runecore/types"
)

//go:embed stats.schema.json
var statsSchemaJSON string

var statsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.CompileString("stats.schema.json", statsSchemaJSON)
})

// LoadStats reads a JSON stat template file: an object mapping being
// template IDs to their base attributes. The file is checked against the
// embedded schema before it is decoded.
func LoadStats(path string) (map[string]types.Attributes, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseStats(raw, path)
}

// ParseStats validates and decodes stat templates. name labels errors.
func ParseStats(raw []byte, name string) (map[string]types.Attributes, error) {
	schema, err := statsSchema()
	if err != nil {
		return nil, fmt.Errorf("stats schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Errors: statsErrors(name, verr)}
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	stats := map[string]types.Attributes{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&stats); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return stats, nil
}

// statsErrors flattens a schema validation tree into one line per leaf.
func statsErrors(name string, verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := verr.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return []string{fmt.Sprintf("%s: %s: %s", name, loc, verr.Message)}
	}
	var out []string
	for _, c := range verr.Causes {
		out = append(out, statsErrors(name, c)...)
	}
	return out
}
