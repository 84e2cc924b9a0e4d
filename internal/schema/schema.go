// Package schema declares the shape of a daily report: an ordered list of
// named fields, each either a non-negative counter or a free-text note.
// The field set is fixed at process start; storage columns, keyboard layout
// and CSV column order are all derived from it.
package schema

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed fields.yaml
var fieldsYAML []byte

// Kind describes how a field's value is entered and stored.
type Kind string

const (
	// Numeric fields hold a non-negative integer, 0 when skipped.
	Numeric Kind = "numeric"
	// Text fields hold a free-form string, empty when skipped.
	Text Kind = "text"
)

// FieldDefinition describes a single reportable quantity or note.
type FieldDefinition struct {
	Key       string `yaml:"key"`
	Kind      Kind   `yaml:"kind"`
	Label     string `yaml:"label"`      // short label shown on keyboard buttons
	FullLabel string `yaml:"full_label"` // long label for prompts, /help and CSV headers
}

// Schema is the ordered, immutable field set.
type Schema struct {
	fields []FieldDefinition
	byKey  map[string]FieldDefinition
}

var keyRx = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Load parses and validates a YAML field definition document.
func Load(data []byte) (*Schema, error) {
	var doc struct {
		Fields []FieldDefinition `yaml:"fields"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse field schema: %w", err)
	}
	if len(doc.Fields) == 0 {
		return nil, fmt.Errorf("field schema declares no fields")
	}

	s := &Schema{
		fields: doc.Fields,
		byKey:  make(map[string]FieldDefinition, len(doc.Fields)),
	}
	for _, f := range doc.Fields {
		if !keyRx.MatchString(f.Key) {
			return nil, fmt.Errorf("invalid field key %q", f.Key)
		}
		if f.Kind != Numeric && f.Kind != Text {
			return nil, fmt.Errorf("field %q has unknown kind %q", f.Key, f.Kind)
		}
		if f.Label == "" || f.FullLabel == "" {
			return nil, fmt.Errorf("field %q is missing a label", f.Key)
		}
		if _, dup := s.byKey[f.Key]; dup {
			return nil, fmt.Errorf("duplicate field key %q", f.Key)
		}
		s.byKey[f.Key] = f
	}
	return s, nil
}

// Default returns the schema embedded in the binary.
func Default() *Schema {
	s, err := Load(fieldsYAML)
	if err != nil {
		// The embedded schema is part of the build; failing to load it is
		// a programming error, not a runtime condition.
		panic(fmt.Sprintf("embedded field schema is invalid: %v", err))
	}
	return s
}

// Fields returns all fields in declaration order.
func (s *Schema) Fields() []FieldDefinition {
	return s.fields
}

// Numeric returns the numeric fields in declaration order.
func (s *Schema) Numeric() []FieldDefinition {
	return s.filter(Numeric)
}

// Text returns the text fields in declaration order.
func (s *Schema) Text() []FieldDefinition {
	return s.filter(Text)
}

func (s *Schema) filter(kind Kind) []FieldDefinition {
	out := make([]FieldDefinition, 0, len(s.fields))
	for _, f := range s.fields {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Lookup returns the definition for key.
func (s *Schema) Lookup(key string) (FieldDefinition, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

// MustLookup returns the definition for key, panicking on an unknown key.
// The schema is closed: asking for an undeclared field is a bug in the caller.
func (s *Schema) MustLookup(key string) FieldDefinition {
	f, ok := s.byKey[key]
	if !ok {
		panic(fmt.Sprintf("unknown report field %q", key))
	}
	return f
}

// Keys returns all field keys in declaration order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Key
	}
	return keys
}
