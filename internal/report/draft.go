// Package report implements the daily-report conversation: the in-memory
// draft a user fills field by field, the per-user session state, and the
// engine that drives the fill/submit dialog over an inline keyboard.
package report

import (
	"fmt"
	"strconv"

	"github.com/user/report-bot/internal/schema"
)

// Value holds one field entry. The zero Value is "unset", which is distinct
// from an explicit 0 or empty string so the menu can show placeholders.
type Value struct {
	set  bool
	num  int
	text string
}

// NumericValue returns an explicitly set numeric value.
func NumericValue(n int) Value {
	return Value{set: true, num: n}
}

// TextValue returns an explicitly set text value.
func TextValue(s string) Value {
	return Value{set: true, text: s}
}

// IsSet reports whether the value was explicitly entered.
func (v Value) IsSet() bool { return v.set }

// Int returns the numeric value (0 when unset).
func (v Value) Int() int { return v.num }

// Text returns the text value (empty when unset).
func (v Value) Text() string { return v.text }

// Draft is a user's in-progress report. It is never persisted: a crash
// discards it without touching stored data.
type Draft struct {
	schema *schema.Schema
	values map[string]Value

	// AwaitingField is the key currently being prompted for, empty outside
	// the value-entry step.
	AwaitingField string

	// MenuMessageID is the live keyboard message, edited in place on every
	// value change.
	MenuMessageID int

	// PromptMessageID is the live value prompt, deleted after capture.
	PromptMessageID int
}

// NewDraft creates a draft with every field unset.
func NewDraft(s *schema.Schema) *Draft {
	return &Draft{
		schema: s,
		values: make(map[string]Value, len(s.Fields())),
	}
}

// DraftFrom seeds a draft with previously stored values, used by the
// edit-today flow. Numeric columns arrive as int64 from the store.
func DraftFrom(s *schema.Schema, stored map[string]any) *Draft {
	d := NewDraft(s)
	for _, f := range s.Fields() {
		raw, ok := stored[f.Key]
		if !ok || raw == nil {
			continue
		}
		switch f.Kind {
		case schema.Numeric:
			switch n := raw.(type) {
			case int:
				d.values[f.Key] = NumericValue(n)
			case int64:
				d.values[f.Key] = NumericValue(int(n))
			}
		case schema.Text:
			if s, ok := raw.(string); ok {
				d.values[f.Key] = TextValue(s)
			}
		}
	}
	return d
}

// SetValue overwrites the value for key unconditionally.
func (d *Draft) SetValue(key string, v Value) {
	d.schema.MustLookup(key)
	d.values[key] = v
}

// SetDefault stores the explicit kind default for key (0 or ""), used by
// the skip action.
func (d *Draft) SetDefault(key string) {
	f := d.schema.MustLookup(key)
	if f.Kind == schema.Numeric {
		d.values[key] = NumericValue(0)
	} else {
		d.values[key] = TextValue("")
	}
}

// Value returns the current entry for key.
func (d *Draft) Value(key string) Value {
	d.schema.MustLookup(key)
	return d.values[key]
}

// ClearAll resets every field to unset.
func (d *Draft) ClearAll() {
	d.values = make(map[string]Value, len(d.schema.Fields()))
}

// Materialize produces the complete value map for submission: every unset
// numeric field becomes 0 and every unset text field becomes "". This is
// the only place defaults are injected.
func (d *Draft) Materialize() map[string]any {
	out := make(map[string]any, len(d.schema.Fields()))
	for _, f := range d.schema.Fields() {
		v := d.values[f.Key]
		if f.Kind == schema.Numeric {
			out[f.Key] = v.Int()
		} else {
			out[f.Key] = v.Text()
		}
	}
	return out
}

// maxButtonText bounds how much of a text value fits on a keyboard button.
const maxButtonText = 20

// DisplayValue renders the current entry for a menu button: the value, or a
// kind placeholder when unset. Long text is truncated with an ellipsis.
func (d *Draft) DisplayValue(f schema.FieldDefinition) string {
	v := d.values[f.Key]
	if f.Kind == schema.Numeric {
		if !v.IsSet() {
			return "(0)"
		}
		return "(" + strconv.Itoa(v.Int()) + ")"
	}
	if !v.IsSet() || v.Text() == "" {
		return "(пусто)"
	}
	text := []rune(v.Text())
	if len(text) > maxButtonText {
		return fmt.Sprintf("(%s...)", string(text[:maxButtonText-3]))
	}
	return "(" + string(text) + ")"
}
