// pkg/catalog/schema.go
package catalog

// Mode controls how strictly records are validated.
type Mode int

const (
	// Lenient skips invalid records. Used when serving.
	Lenient Mode = iota
	// Strict fails on the first invalid record and requires patterns. Used when training.
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "lenient"
}

func stringArray() map[string]interface{} {
	return map[string]interface{}{
		"type":  "array",
		"items": map[string]interface{}{"type": "string"},
	}
}

// recordSchema is the JSON Schema every catalog record is checked against.
func recordSchema(mode Mode) map[string]interface{} {
	required := []interface{}{"tag", "responses"}
	if mode == Strict {
		required = append(required, "patterns")
	}
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"tag": map[string]interface{}{
				"type":      "string",
				"minLength": 1,
			},
			"patterns":  stringArray(),
			"responses": stringArray(),
		},
		"required": required,
	}
}

// Issue describes one rejected record.
type Issue struct {
	Index  int      `json:"index"`
	Tag    string   `json:"tag,omitempty"`
	Errors []string `json:"errors"`
}
