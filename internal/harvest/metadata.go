package harvest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	keyStrip      = regexp.MustCompile(`[^a-z0-9_]`)
)

// NormalizeKey turns a field label into a stable metadata key: lowercased,
// whitespace runs collapsed to underscores, everything outside [a-z0-9_]
// stripped. "Job Title:" becomes "job_title".
func NormalizeKey(label string) string {
	key := strings.ToLower(strings.TrimSpace(label))
	key = whitespaceRun.ReplaceAllString(key, "_")
	return keyStrip.ReplaceAllString(key, "")
}

// CollapseWhitespace normalizes runs of whitespace to single spaces and trims.
func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// Metadata is a string-to-string mapping that remembers the order keys were
// first set. Detail pages surface fields in a meaningful order, and the
// location/date lookups are defined as "first matching key wins", so the
// order must survive the trip through extraction and storage.
type Metadata struct {
	keys   []string
	values map[string]string
}

// NewMetadata returns an empty mapping.
func NewMetadata() *Metadata {
	return &Metadata{values: make(map[string]string)}
}

// Set stores value under key, appending the key on first sight.
func (m *Metadata) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it was present.
func (m *Metadata) Get(key string) (string, bool) {
	if m == nil || m.values == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Len reports the number of keys.
func (m *Metadata) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Metadata) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// FindSubstring scans for the first key containing any of the needles.
// Needles are tried in priority order; within one needle, keys are scanned
// in insertion order. Returns "" when nothing matches.
func (m *Metadata) FindSubstring(needles ...string) string {
	if m == nil {
		return ""
	}
	for _, needle := range needles {
		for _, key := range m.keys {
			if strings.Contains(key, needle) {
				return m.values[key]
			}
		}
	}
	return ""
}

// MarshalJSON emits a JSON object with keys in insertion order.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.keys) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON restores the mapping, preserving the document's key order.
// A JSON null leaves the mapping empty.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metadata: expected JSON object, got %v", tok)
	}
	m.keys = nil
	m.values = make(map[string]string)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("metadata: non-string key %v", keyTok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("metadata: value for %q: %w", key, err)
		}
		m.Set(key, value)
	}
	_, err = dec.Token() // closing brace
	return err
}
