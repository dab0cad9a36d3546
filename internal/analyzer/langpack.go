package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// packSchemaJSON constrains language-pack files: a pack may override the
// stopword set and name the language it applies to.
const packSchemaJSON = `{
	"type": "object",
	"properties": {
		"language": {"type": "string", "minLength": 1},
		"stopwords": {
			"type": "array",
			"items": {"type": "string", "minLength": 1}
		}
	},
	"required": ["stopwords"],
	"additionalProperties": false
}`

// LanguagePack is an optional operator-supplied override of the built-in
// stopword set, loaded from a JSON file and hot-reloaded on change.
type LanguagePack struct {
	Language  string   `json:"language"`
	Stopwords []string `json:"stopwords"`
}

// LoadPack reads, validates and parses the language pack at path.
func LoadPack(path string) (LanguagePack, error) {
	var pack LanguagePack

	data, err := os.ReadFile(path)
	if err != nil {
		return pack, fmt.Errorf("read language pack: %w", err)
	}

	// jsonschema.UnmarshalJSON for correct number handling (json.Number).
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(data)))
	if err != nil {
		return pack, fmt.Errorf("unmarshal language pack: %w", err)
	}
	schema, err := compilePackSchema()
	if err != nil {
		return pack, err
	}
	if err := schema.Validate(doc); err != nil {
		return pack, fmt.Errorf("validate language pack: %w", err)
	}

	if err := json.Unmarshal(data, &pack); err != nil {
		return pack, fmt.Errorf("parse language pack: %w", err)
	}
	return pack, nil
}

func compilePackSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(packSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal pack schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("langpack.json", doc); err != nil {
		return nil, fmt.Errorf("add pack schema resource: %w", err)
	}
	schema, err := c.Compile("langpack.json")
	if err != nil {
		return nil, fmt.Errorf("compile pack schema: %w", err)
	}
	return schema, nil
}
