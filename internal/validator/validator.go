// Package validator checks that a written JSON or YAML scan result, or a
// cache envelope holding one, keeps the result's structural invariants.
package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/codoc/internal/tags"
)

// ValidateFile validates the result stored in filename and reports progress
// to w.
func ValidateFile(filename string, w io.Writer) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	// Check if it's YAML or JSON
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("failed to parse file as YAML or JSON: %w", err)
		}
	}

	result, err := unwrapEnvelope(doc)
	if err != nil {
		return fmt.Errorf("basic validation failed: %w", err)
	}
	if result == nil {
		result = doc
	} else {
		fmt.Fprintln(w, "✓ Cache envelope is valid")
	}

	fmt.Fprintf(w, "✓ Found %d requirements\n", len(result))

	items := 0
	for reqID, sections := range result {
		n, err := validateRequirement(w, sections)
		if err != nil {
			return fmt.Errorf("requirement %s validation failed: %w", reqID, err)
		}
		items += n
	}
	fmt.Fprintf(w, "✓ Found %d items\n", items)

	fmt.Fprintln(w, "\n✅ Scan result validation passed!")
	return nil
}

// unwrapEnvelope returns the result of a {timestamp, result} envelope, or
// nil when doc is a bare result.
func unwrapEnvelope(doc map[string]interface{}) (map[string]interface{}, error) {
	raw, hasResult := doc["result"]
	_, hasTimestamp := doc["timestamp"]
	if !hasResult && !hasTimestamp {
		return nil, nil
	}

	if ts, ok := doc["timestamp"].(string); !ok || ts == "" {
		return nil, fmt.Errorf("missing or invalid 'timestamp' field")
	}
	result, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'result' field")
	}
	return result, nil
}

func validateRequirement(w io.Writer, sections interface{}) (int, error) {
	secs, ok := sections.(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("invalid requirement")
	}
	if len(secs) == 0 {
		return 0, fmt.Errorf("requirement has no sections")
	}

	count := 0
	for blockType, items := range secs {
		if _, known := tags.Lookup(blockType); !known {
			// Warn but don't error
			fmt.Fprintf(w, "  ⚠️  Block type '%s' is not registered\n", blockType)
		}

		list, ok := items.([]interface{})
		if !ok {
			return 0, fmt.Errorf("section %s: invalid item list", blockType)
		}
		if len(list) == 0 {
			return 0, fmt.Errorf("section %s: empty item list", blockType)
		}
		for i, item := range list {
			if err := validateItem(item); err != nil {
				return 0, fmt.Errorf("section %s item %d: %w", blockType, i, err)
			}
		}
		count += len(list)
	}
	return count, nil
}

func validateItem(item interface{}) error {
	it, ok := item.(map[string]interface{})
	if !ok {
		return fmt.Errorf("invalid item")
	}

	if file, ok := it["file"].(string); !ok || file == "" {
		return fmt.Errorf("missing or invalid 'file' field")
	}

	line, ok := toInt(it["line"])
	if !ok || line < 1 {
		return fmt.Errorf("missing or invalid 'line' field")
	}

	for _, key := range []string{"title", "content"} {
		if v, exists := it[key]; exists {
			if _, ok := v.(string); !ok {
				return fmt.Errorf("invalid '%s' field", key)
			}
		}
	}

	for _, key := range []string{"req", "domain"} {
		if err := validateIDList(key, it[key]); err != nil {
			return err
		}
	}
	return nil
}

// validateIDList accepts a missing value, a string or a list of strings.
func validateIDList(key string, v interface{}) error {
	switch val := v.(type) {
	case nil, string:
		return nil
	case []interface{}:
		for _, id := range val {
			if _, ok := id.(string); !ok {
				return fmt.Errorf("invalid '%s' entry: %v", key, id)
			}
		}
		return nil
	default:
		return fmt.Errorf("invalid '%s' field", key)
	}
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}
