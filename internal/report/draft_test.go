package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/report-bot/internal/schema"
)

func TestDraft_MaterializeAppliesDefaults(t *testing.T) {
	s := schema.Default()
	d := NewDraft(s)

	d.SetValue("prinyato_zayavok", NumericValue(5))
	d.SetValue("problemy", TextValue("none"))

	values := d.Materialize()

	// Exactly the schema's fields, nothing more.
	require.Len(t, values, len(s.Fields()))

	assert.Equal(t, 5, values["prinyato_zayavok"])
	assert.Equal(t, "none", values["problemy"])

	// Every untouched field carries its kind default.
	for _, f := range s.Fields() {
		if f.Key == "prinyato_zayavok" || f.Key == "problemy" {
			continue
		}
		if f.Kind == schema.Numeric {
			assert.Equal(t, 0, values[f.Key], f.Key)
		} else {
			assert.Equal(t, "", values[f.Key], f.Key)
		}
	}
}

func TestDraft_UnsetIsDistinctFromExplicitZero(t *testing.T) {
	s := schema.Default()
	d := NewDraft(s)

	assert.False(t, d.Value("prinyato_zayavok").IsSet())

	d.SetDefault("prinyato_zayavok")
	v := d.Value("prinyato_zayavok")
	assert.True(t, v.IsSet())
	assert.Equal(t, 0, v.Int())
}

func TestDraft_SetValueOverwrites(t *testing.T) {
	d := NewDraft(schema.Default())

	d.SetValue("polucheno_tkp", NumericValue(3))
	d.SetValue("polucheno_tkp", NumericValue(7))

	assert.Equal(t, 7, d.Value("polucheno_tkp").Int())
}

func TestDraft_ClearAllResetsEverything(t *testing.T) {
	s := schema.Default()
	d := NewDraft(s)
	d.SetValue("prinyato_zayavok", NumericValue(9))
	d.SetValue("problemy", TextValue("сломался сканер"))

	d.ClearAll()

	for _, f := range s.Fields() {
		assert.False(t, d.Value(f.Key).IsSet(), f.Key)
	}

	values := d.Materialize()
	assert.Equal(t, 0, values["prinyato_zayavok"])
	assert.Equal(t, "", values["problemy"])
}

func TestDraftFrom_RoundTripsStoredValues(t *testing.T) {
	s := schema.Default()

	stored := make(map[string]any)
	for i, f := range s.Numeric() {
		stored[f.Key] = int64(i + 1)
	}
	stored["provedeny_peregovory"] = "поставка кабеля"
	stored["problemy"] = ""

	d := DraftFrom(s, stored)
	values := d.Materialize()

	for i, f := range s.Numeric() {
		assert.Equal(t, i+1, values[f.Key], f.Key)
	}
	assert.Equal(t, "поставка кабеля", values["provedeny_peregovory"])
	assert.Equal(t, "", values["problemy"])
}

func TestDraft_UnknownKeyPanics(t *testing.T) {
	d := NewDraft(schema.Default())

	assert.Panics(t, func() { d.SetValue("bogus", NumericValue(1)) })
	assert.Panics(t, func() { d.Value("bogus") })
}

func TestDraft_DisplayValue(t *testing.T) {
	s := schema.Default()
	d := NewDraft(s)

	numeric := s.MustLookup("prinyato_zayavok")
	text := s.MustLookup("problemy")

	assert.Equal(t, "(0)", d.DisplayValue(numeric))
	assert.Equal(t, "(пусто)", d.DisplayValue(text))

	d.SetValue(numeric.Key, NumericValue(12))
	assert.Equal(t, "(12)", d.DisplayValue(numeric))

	d.SetValue(text.Key, TextValue("ok"))
	assert.Equal(t, "(ok)", d.DisplayValue(text))

	// Explicit empty text still shows the placeholder.
	d.SetValue(text.Key, TextValue(""))
	assert.Equal(t, "(пусто)", d.DisplayValue(text))

	d.SetValue(text.Key, TextValue(strings.Repeat("долго ", 10)))
	display := d.DisplayValue(text)
	assert.True(t, strings.HasSuffix(display, "...)"), display)
	assert.LessOrEqual(t, len([]rune(display)), maxButtonText+2)
}
