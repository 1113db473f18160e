package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const fileSchema = `{
  "type": "object",
  "required": ["tenants"],
  "additionalProperties": false,
  "properties": {
    "tenants": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "cal_api_key", "appointment_types"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "display_name": {"type": "string"},
          "cal_api_key": {"type": "string", "minLength": 1},
          "timezone": {"type": "string"},
          "services_summary": {"type": "string"},
          "appointment_types": {
            "type": "object",
            "minProperties": 1,
            "additionalProperties": {"type": ["string", "integer"]}
          }
        }
      }
    }
  }
}`

type directoryFile struct {
	Tenants []Record `json:"tenants"`
}

// LoadFile reads a JSON or YAML tenant directory and builds a Static directory.
func LoadFile(path, defaultTimezone string) (*Static, error) {
	records, err := ReadRecords(path)
	if err != nil {
		return nil, err
	}
	return NewStatic(records, defaultTimezone)
}

// ReadRecords reads and schema-validates a directory file without building
// tenants, so tools can seed other stores from it.
func ReadRecords(path string) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw, err = yamlToJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("directory: parse %s: %w", path, err)
		}
	}
	return ParseRecords(raw)
}

// ParseRecords validates a JSON directory document and decodes its tenants.
func ParseRecords(doc []byte) ([]Record, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(fileSchema),
		gojsonschema.NewBytesLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("directory: validate: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return nil, fmt.Errorf("directory: invalid document: %s", strings.Join(problems, "; "))
	}

	var file directoryFile
	if err := json.Unmarshal(doc, &file); err != nil {
		return nil, fmt.Errorf("directory: decode: %w", err)
	}
	return file.Tenants, nil
}

func yamlToJSON(raw []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}
