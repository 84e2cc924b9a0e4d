package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/report-bot/internal/schema"
)

func TestParseEvent_FieldSelection(t *testing.T) {
	s := schema.Default()

	ev, err := ParseEvent(s, EncodeSelectField("prinyato_zayavok"))
	require.NoError(t, err)
	assert.Equal(t, SelectField{Key: "prinyato_zayavok"}, ev)
}

func TestParseEvent_Actions(t *testing.T) {
	s := schema.Default()

	cases := []struct {
		data string
		want Event
	}{
		{EncodeAction(Submit{}), Submit{}},
		{EncodeAction(Cancel{}), Cancel{}},
		{EncodeAction(Reset{}), Reset{}},
		{EncodeAction(EditToday{}), EditToday{}},
	}
	for _, tc := range cases {
		ev, err := ParseEvent(s, tc.data)
		require.NoError(t, err, tc.data)
		assert.Equal(t, tc.want, ev, tc.data)
	}
}

func TestParseEvent_Rejections(t *testing.T) {
	s := schema.Default()

	for _, data := range []string{
		"",
		"field",
		"field|no_such_field",
		"action|explode",
		"task|42",
		"prinyato_zayavok",
	} {
		_, err := ParseEvent(s, data)
		assert.Error(t, err, data)
	}
}

func TestEncodeAction_PanicsOnUnencodableEvent(t *testing.T) {
	assert.Panics(t, func() { EncodeAction(SelectField{Key: "problemy"}) })
}
