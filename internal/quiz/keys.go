package quiz

import (
	"encoding/json"
	"strings"
)

// objectKeys lists the top-level keys of a JSON object in payload order.
// Anything that is not an object yields no keys.
func objectKeys(text string) []string {
	dec := json.NewDecoder(strings.NewReader(text))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil
	}
	var keys []string
	seen := make(map[string]struct{})
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return keys
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// firstList returns the first list value of m, visiting keys in order.
func firstList(m map[string]interface{}, order []string) ([]interface{}, bool) {
	for _, k := range order {
		if list, ok := m[k].([]interface{}); ok {
			return list, true
		}
	}
	return nil, false
}
