// pkg/catalog/catalog.go
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	apperrors "careerbot/internal/common/errors"
	"careerbot/internal/common/logger"
	"careerbot/internal/models"

	"github.com/xeipuuv/gojsonschema"
)

// maxStringDecode bounds how many layers of string-encoded JSON are unwrapped.
const maxStringDecode = 2

// Catalog is the validated, read-only set of intent records.
type Catalog struct {
	intents []models.Intent
	byTag   map[string]int
	issues  []Issue
}

// Load reads and validates the catalog at path.
func Load(path string, mode Mode, log logger.Logger) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(path, err)
	}
	c, err := Parse(data, mode, log)
	if err != nil {
		if std := apperrors.Normalize(err); std.Code == apperrors.ErrCodeCatalogLoadFailed {
			return nil, apperrors.NewCatalogLoadFailedError(path, err)
		}
		return nil, err
	}
	return c, nil
}

// Parse accepts a bare array of records, an object with an "intents" array,
// or a JSON string that itself encodes either form.
func Parse(data []byte, mode Mode, log logger.Logger) (*Catalog, error) {
	log = logger.Component(log, "catalog")

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, apperrors.NewCatalogLoadFailedError("<input>", fmt.Errorf("empty document"))
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.NewCatalogLoadFailedError("<input>", err)
	}

	for i := 0; i < maxStringDecode; i++ {
		s, ok := doc.(string)
		if !ok {
			break
		}
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, apperrors.NewCatalogLoadFailedError("<input>", fmt.Errorf("string-encoded catalog: %w", err))
		}
	}

	records, err := extractRecords(doc)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError("<input>", err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(recordSchema(mode)))
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError("<schema>", err)
	}

	c := &Catalog{byTag: make(map[string]int)}
	for i, rec := range records {
		if issue := validateRecord(schema, i, rec); issue != nil {
			if mode == Strict {
				return nil, apperrors.NewCatalogValidationFailedError(i, joinErrors(issue.Errors))
			}
			log.Warn("skipping invalid intent record", map[string]interface{}{
				"index":  i,
				"tag":    issue.Tag,
				"errors": issue.Errors,
			})
			c.issues = append(c.issues, *issue)
			continue
		}

		intent, err := toIntent(rec)
		if err != nil {
			return nil, apperrors.NewCatalogLoadFailedError("<input>", err)
		}
		if _, dup := c.byTag[intent.Tag]; !dup {
			c.byTag[intent.Tag] = len(c.intents)
		}
		c.intents = append(c.intents, intent)
	}

	if len(c.intents) == 0 {
		return nil, apperrors.NewCatalogLoadFailedError("<input>", fmt.Errorf("no valid intent records"))
	}

	log.Debug("catalog loaded", map[string]interface{}{
		"records": len(c.intents),
		"skipped": len(c.issues),
		"mode":    mode.String(),
	})

	return c, nil
}

func extractRecords(doc interface{}) ([]interface{}, error) {
	switch v := doc.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		raw, ok := v["intents"]
		if !ok {
			return nil, fmt.Errorf("object catalog has no \"intents\" key")
		}
		list, ok := raw.([]interface{})
		if !ok {
			return nil, fmt.Errorf("\"intents\" must be an array, got %T", raw)
		}
		return list, nil
	default:
		return nil, fmt.Errorf("catalog must be an array or an object, got %T", doc)
	}
}

func validateRecord(schema *gojsonschema.Schema, index int, rec interface{}) *Issue {
	result, err := schema.Validate(gojsonschema.NewGoLoader(rec))
	if err != nil {
		return &Issue{Index: index, Errors: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}

	issue := &Issue{Index: index}
	if m, ok := rec.(map[string]interface{}); ok {
		issue.Tag, _ = m["tag"].(string)
	}
	for _, e := range result.Errors() {
		issue.Errors = append(issue.Errors, e.String())
	}
	return issue
}

func toIntent(rec interface{}) (models.Intent, error) {
	var intent models.Intent
	raw, err := json.Marshal(rec)
	if err != nil {
		return intent, err
	}
	err = json.Unmarshal(raw, &intent)
	return intent, err
}

func joinErrors(errs []string) string {
	var buf bytes.Buffer
	for i, e := range errs {
		if i > 0 {
			buf.WriteString("; ")
		}
		buf.WriteString(e)
	}
	return buf.String()
}

// Lookup returns the first record carrying tag.
func (c *Catalog) Lookup(tag string) (models.Intent, bool) {
	idx, ok := c.byTag[tag]
	if !ok {
		return models.Intent{}, false
	}
	return c.intents[idx], true
}

// Intents returns the records in file order.
func (c *Catalog) Intents() []models.Intent {
	return c.intents
}

// Tags returns the sorted unique tags.
func (c *Catalog) Tags() []string {
	tags := make([]string, 0, len(c.byTag))
	for tag := range c.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func (c *Catalog) Len() int {
	return len(c.intents)
}

// Issues returns the records skipped in lenient mode.
func (c *Catalog) Issues() []Issue {
	return c.issues
}
